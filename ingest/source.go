package ingest

import (
	"context"

	"github.com/mycok/rfcFreq/pipeline"
	"github.com/mycok/rfcFreq/rfcindex"
)

var _ pipeline.Source = (*blockSource)(nil)

// blockSource emits one payload per index block, tagged with the block's
// position so that the sink can restore index order.
//
// The counters are only written by the pipeline's source goroutine and must
// be read after Execute has returned.
type blockSource struct {
	it *rfcindex.BlockIterator

	emitted int  // payloads handed out by Payload.
	drained bool // set once the iterator has no blocks left.
}

func (s *blockSource) Next(context.Context) bool {
	if !s.it.Next() {
		s.drained = true

		return false
	}

	return true
}

func (s *blockSource) Payload() pipeline.Payload {
	s.emitted++

	payload := payloadPool.Get().(*entryPayload)
	payload.Position = s.it.Position()
	payload.Block = s.it.Block()

	return payload
}

func (s *blockSource) Error() error {
	return nil
}
