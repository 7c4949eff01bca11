/*
	pipeline package wires a Source, a chain of stage runners and a Sink
	together with channels and runs every part in its own goroutine, while
	exposing a single blocking Execute call to the caller.

	Stages are built from a Processor and one of the runners of this package:
		- NewFIFO processes payloads one at a time, preserving their order.
		- NewFixedWorkerPool spreads payloads across a fixed number of FIFO
		  workers; output order is not preserved.
*/

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Pipeline is an ordered list of stage runners.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline built from the given stages.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages}
}

// Execute reads payloads from src, pushes them through every stage and hands
// the results to sink. It blocks until the source is drained, a component
// fails or ctx is cancelled, and returns all collected errors.
//
// Execute may be called concurrently with different sources and sinks.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	var wg sync.WaitGroup
	execCtx, cancel := context.WithCancel(ctx)

	// stageChans[i] feeds stage i and stageChans[i+1] receives its output.
	// The extra channel lets a pipeline without stages pass payloads
	// straight from the source to the sink.
	stageChans := make([]chan Payload, len(p.stages)+1)
	for i := range stageChans {
		stageChans[i] = make(chan Payload)
	}

	// One slot per stage plus the source and the sink.
	errChan := make(chan error, len(p.stages)+2)

	for i := range p.stages {
		wg.Add(1)

		go func(index int) {
			defer wg.Done()

			p.stages[index].Run(execCtx, &stageParams{
				stage:   index,
				inChan:  stageChans[index],
				outChan: stageChans[index+1],
				errChan: errChan,
			})

			// Closing the output tells the next stage that no more payloads
			// will arrive, which unwinds the rest of the chain.
			close(stageChans[index+1])
		}(i)
	}

	wg.Add(2)

	go func() {
		defer wg.Done()

		sourceWorker(execCtx, src, stageChans[0], errChan)
		close(stageChans[0])
	}()

	go func() {
		defer wg.Done()

		sinkWorker(execCtx, sink, stageChans[len(stageChans)-1], errChan)
	}()

	go func() {
		wg.Wait()

		close(errChan)
		cancel()
	}()

	var err error
	for stageErr := range errChan {
		err = multierror.Append(err, stageErr)

		// The first failure shuts the whole pipeline down.
		cancel()
	}

	return err
}

func sourceWorker(
	ctx context.Context, src Source,
	outChan chan<- Payload, errChan chan<- error,
) {

	for src.Next(ctx) {
		select {
		case <-ctx.Done():
			return
		case outChan <- src.Payload():
		}
	}

	if err := src.Error(); err != nil {
		mayEmitError(fmt.Errorf("pipeline source: %w", err), errChan)
	}
}

func sinkWorker(
	ctx context.Context, sink Sink,
	inChan <-chan Payload, errChan chan<- error,
) {

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-inChan:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				mayEmitError(fmt.Errorf("pipeline sink: %w", err), errChan)

				return
			}

			payload.MarkAsProcessed()
		}
	}
}

// mayEmitError writes err to errChan unless the channel is already full, in
// which case the pipeline is shutting down and err is dropped.
func mayEmitError(err error, errChan chan<- error) {
	select {
	case errChan <- err:
	default:
	}
}
