package ingest

import (
	"context"
	"sort"

	"github.com/mycok/rfcFreq/metrics"
	"github.com/mycok/rfcFreq/pipeline"
)

var _ pipeline.Sink = (*collectingSink)(nil)

type positionedEntry struct {
	position int
	entry    Entry
}

// collectingSink copies every entry out of its payload before the payload is
// recycled. Execute calls Consume from a single goroutine, so no locking is
// needed.
type collectingSink struct {
	metrics *metrics.Metrics

	seen    int // payloads consumed, skipped ones included.
	entries []positionedEntry
}

func (s *collectingSink) Consume(_ context.Context, p pipeline.Payload) error {
	ePayload, ok := p.(*entryPayload)
	if !ok {
		return nil
	}

	s.seen++
	if ePayload.Skip {
		return nil
	}

	// The payload goes back to the pool as soon as Consume returns; the
	// entry is copied by value and its content string is immutable.
	s.metrics.ObserveEntry()
	s.entries = append(s.entries, positionedEntry{
		position: ePayload.Position,
		entry:    ePayload.Entry,
	})

	return nil
}

// sortedEntries returns the collected entries in index order. The fetch stage
// completes payloads in whatever order its workers finish, so positions are
// sorted here rather than relied on.
func (s *collectingSink) sortedEntries() []Entry {
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].position < s.entries[j].position
	})

	entries := make([]Entry, len(s.entries))
	for i, pe := range s.entries {
		entries[i] = pe.entry
	}

	return entries
}
