package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/rfcFreq/metrics"
)

// DefaultHost serves the canonical RFC text documents.
const DefaultHost = "www.rfc-editor.org"

// Fetcher should be implemented by objects that retrieve the text of a
// document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config defines configurations for an ingestion run.
type Config struct {
	// An API for retrieving entry contents.
	Fetcher Fetcher

	// The host used to build canonical entry URLs. If not specified,
	// DefaultHost will be used instead.
	Host string

	// The number of concurrent workers used for fetching entries.
	NumOfFetchWorkers int

	// The number of additional attempts for a failed fetch. Zero disables
	// retries.
	FetchRetries int

	// The pause between two attempts of the same fetch.
	RetryDelay time.Duration

	// A clock instance for retry delays and run timings. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// Optional collectors for fetch outcomes and ingested entries.
	Metrics *metrics.Metrics

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Fetcher == nil {
		err = multierror.Append(err, fmt.Errorf("fetcher not provided"))
	}

	if config.Host == "" {
		config.Host = DefaultHost
	}

	if config.NumOfFetchWorkers <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for fetch workers, must be > 0"))
	}

	if config.FetchRetries < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for fetch retries, must be >= 0"))
	}

	if config.RetryDelay < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for retry delay, must be >= 0"))
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
