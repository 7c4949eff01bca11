/*
	ingest package turns the raw text of the RFC index into a list of entries,
	each carrying its number, canonical URL, normalized title and, when it
	could be retrieved, the text of the document itself.

	Index blocks flow through a two stage pipeline: a FIFO header parser that
	drops malformed blocks, followed by a fixed pool of content fetchers.
	Entries are returned in index order regardless of how fetches interleave.
*/

package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mycok/rfcFreq/pipeline"
	"github.com/mycok/rfcFreq/rfcindex"
)

// errRunInterrupted is returned when a run stopped early without any
// component or the context reporting why.
var errRunInterrupted = errors.New("ingest: run stopped before the index was drained")

// Ingester builds entry lists out of index documents.
type Ingester struct {
	cfg Config
	p   *pipeline.Pipeline
}

// New returns an Ingester configured with cfg.
func New(cfg Config) (*Ingester, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ingest: config validation failed: %w", err)
	}

	return &Ingester{
		cfg: cfg,
		p:   assemblePipeline(cfg),
	}, nil
}

func assemblePipeline(cfg Config) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.NewFIFO(newHeaderParser(cfg.Host, cfg.Metrics, cfg.Logger)),
		pipeline.NewFixedWorkerPool(newContentFetcher(cfg), cfg.NumOfFetchWorkers),
	)
}

// Ingest parses indexContent and fetches the document of every well-formed
// entry. A fetch failure only leaves the content of that entry nil. Ingest
// fails when the index has no start marker or when ctx is cancelled before
// the run completes.
func (i *Ingester) Ingest(ctx context.Context, indexContent string) ([]Entry, error) {
	start, err := rfcindex.LocateStart(indexContent)
	if err != nil {
		return nil, err
	}

	logger := i.cfg.Logger.WithField("run_id", uuid.New().String())
	startedAt := i.cfg.Clock.Now()
	logger.Info("starting ingestion run")

	sink := &collectingSink{metrics: i.cfg.Metrics}
	src := &blockSource{it: rfcindex.SplitEntries(indexContent[start:])}

	if err = i.p.Execute(ctx, src, sink); err != nil {
		logger.WithField("err", err).Error("ingestion run failed")

		return nil, fmt.Errorf("ingest: %w", err)
	}

	entries, err := runResult(ctx, src, sink)
	if err != nil {
		logger.WithField("err", err).Error("ingestion run interrupted")

		return nil, err
	}

	var missing int
	for _, e := range entries {
		if e.Content == nil {
			missing++
		}
	}

	logger.WithFields(logrus.Fields{
		"entries":         len(entries),
		"missing_content": missing,
		"elapsed":         i.cfg.Clock.Now().Sub(startedAt).String(),
	}).Info("completed ingestion run")

	return entries, nil
}

// runResult returns the entries of a run that has returned from Execute
// without error. Cancellation can stop the source or the sink silently, so a
// run only counts as complete when the whole index was read and every payload
// reached the sink. A complete run keeps its entries even if ctx was
// cancelled after the last payload was consumed.
func runResult(ctx context.Context, src *blockSource, sink *collectingSink) ([]Entry, error) {
	if src.drained && sink.seen == src.emitted {
		return sink.sortedEntries(), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return nil, errRunInterrupted
}
