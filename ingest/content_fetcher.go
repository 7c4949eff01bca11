package ingest

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/rfcFreq/metrics"
	"github.com/mycok/rfcFreq/pipeline"
)

var _ pipeline.Processor = (*contentFetcher)(nil)

// contentFetcher attaches the fetched document to an entry. A failed fetch
// leaves the content nil and never drops the entry.
type contentFetcher struct {
	fetcher    Fetcher
	retries    int
	retryDelay time.Duration
	clock      clock.Clock
	metrics    *metrics.Metrics
	logger     *logrus.Entry
}

func newContentFetcher(cfg Config) *contentFetcher {
	return &contentFetcher{
		fetcher:    cfg.Fetcher,
		retries:    cfg.FetchRetries,
		retryDelay: cfg.RetryDelay,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Process fetches the document of the payload's entry. It runs in a worker
// pool, so it must not keep per-call state on the receiver.
func (p *contentFetcher) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	ePayload, ok := payload.(*entryPayload)
	if !ok {
		return nil, nil
	}

	// Skipped blocks have no URL; pass them through to the sink untouched.
	if ePayload.Skip {
		return ePayload, nil
	}

	content, err := p.fetch(ctx, ePayload.Entry.URL)

	// A cancelled run is the only failure that stops the pipeline. The
	// error is returned so that Execute reports it instead of the run
	// looking complete with nil contents.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		p.metrics.ObserveFetch(metrics.FetchFailed)
		p.logger.WithFields(logrus.Fields{
			"number": ePayload.Entry.Number,
			"url":    ePayload.Entry.URL,
			"err":    err,
		}).Warn("unable to fetch entry content")

		ePayload.Entry.Content = nil

		return ePayload, nil
	}

	p.metrics.ObserveFetch(metrics.FetchSucceeded)
	ePayload.Entry.Content = &content

	return ePayload, nil
}

// fetch makes up to 1+retries attempts. Every attempt after the first waits
// for retryDelay on the injected clock, or returns early if ctx is cancelled.
// The error of the last attempt is returned.
func (p *contentFetcher) fetch(ctx context.Context, url string) (string, error) {
	var err error

	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			p.metrics.ObserveFetch(metrics.FetchRetried)

			if p.retryDelay > 0 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-p.clock.After(p.retryDelay):
				}
			}
		}

		var content string
		if content, err = p.fetcher.Fetch(ctx, url); err == nil {
			return content, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", err
}
