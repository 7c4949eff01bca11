package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// fifo hands payloads to its processor strictly one at a time, so a stage
// built on it emits payloads in the order they were received.
type fifo struct {
	proc Processor
}

// NewFIFO returns a StageRunner that processes payloads one at a time in the
// order they arrive.
func NewFIFO(proc Processor) StageRunner {
	return fifo{proc}
}

// Run reads payloads from params.Input(), passes each one to the processor and
// writes the result to params.Output(). A processor error is wrapped with the
// stage index, reported on params.Error() and stops the stage. Run returns
// when the input channel is closed, the context is cancelled or the processor
// fails.
func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		select {
		case <-ctx.Done():
			return // cancelled, either by the caller or by a failing component.
		case payloadIn, ok := <-params.Input():
			if !ok {
				return // the previous stage has exited.
			}

			payloadOut, err := r.proc.Process(ctx, payloadIn)
			if err != nil {
				mayEmitError(
					fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err),
					params.Error(),
				)

				return
			}

			// A nil payload means the processor filtered it out. It will
			// never reach the sink, so it is released here instead.
			if payloadOut == nil {
				payloadIn.MarkAsProcessed()

				continue
			}

			// The send blocks until the next stage is ready, which is what
			// applies backpressure all the way up to the source.
			select {
			case <-ctx.Done():
				return
			case params.Output() <- payloadOut:
			}
		}
	}
}

// fixedWorkerPool spreads payloads over a constant number of fifo runners that
// share one input and one output channel.
type fixedWorkerPool struct {
	fifos []StageRunner
}

// NewFixedWorkerPool returns a StageRunner that runs numOfWorkers FIFO
// runners over a shared input and output channel. It panics if numOfWorkers
// is not positive.
func NewFixedWorkerPool(proc Processor, numOfWorkers int) StageRunner {
	if numOfWorkers <= 0 {
		panic("FixedWorkerPool: numOfWorkers must be > 0")
	}

	fifos := make([]StageRunner, numOfWorkers)
	for i := range fifos {
		fifos[i] = NewFIFO(proc)
	}

	return fixedWorkerPool{fifos}
}

// Run starts every worker and waits for all of them to exit. Whichever worker
// is idle picks up the next payload, so the output order depends on how long
// each payload takes and is not preserved. The shared processor must be safe
// for concurrent use.
func (r fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

	// All workers read from the same input channel. Once it is closed every
	// worker returns and the pool exits, letting Execute close the output.
	for i := range r.fifos {
		wg.Add(1)

		go func(index int) {
			defer wg.Done()

			r.fifos[index].Run(ctx, params)
		}(i)
	}

	wg.Wait()
}
