package pipeline

import "context"

// Source should be implemented by types that feed payloads into a Pipeline.
type Source interface {
	// Next advances to the next payload and reports whether one is
	// available. It returns false when the source is exhausted or failed.
	Next(context.Context) bool

	// Payload returns the payload loaded by the last call to Next.
	Payload() Payload

	// Error returns the last error encountered by the source.
	Error() error
}

// Payload should be implemented by the values that travel through a pipeline.
type Payload interface {
	// MarkAsProcessed is called once the payload has been consumed by the
	// sink or dropped by a stage. Implementations may recycle the payload.
	MarkAsProcessed()
}

// Processor should be implemented by types that process payloads for a
// pipeline stage. Returning a nil payload with a nil error drops the payload.
// Returning an error aborts the whole pipeline.
type Processor interface {
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner should be implemented by types that can be chained together to
// form a multi-stage pipeline. Calls to Run block until the input channel is
// closed, the context expires or processing fails.
type StageRunner interface {
	Run(context.Context, StageParams)
}

// StageParams carries the channels and position of a running stage.
type StageParams interface {
	// StageIndex returns the position of the stage in the pipeline.
	StageIndex() int

	// Input returns the channel the stage reads payloads from.
	Input() <-chan Payload

	// Output returns the channel the stage writes processed payloads to.
	Output() chan<- Payload

	// Error returns the channel the stage reports failures on.
	Error() chan<- error
}

// Sink should be implemented by types that receive the payloads emitted by the
// last stage of a pipeline.
type Sink interface {
	Consume(context.Context, Payload) error
}
