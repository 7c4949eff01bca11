// Command rfcfreq ingests the RFC index, computes the term frequencies of every
// fetched document and reports the frequencies of the queried terms.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mycok/rfcFreq/boundary"
	"github.com/mycok/rfcFreq/fetcher"
	"github.com/mycok/rfcFreq/fetcher/privnet"
	"github.com/mycok/rfcFreq/ingest"
	"github.com/mycok/rfcFreq/metrics"
	"github.com/mycok/rfcFreq/termfreq"
	"github.com/mycok/rfcFreq/tfstore"
)

const (
	appName = "rfcfreq"
	appSHA  = "compiled-and-deployed-at"

	defaultIndexURL = "https://www.rfc-editor.org/rfc-index.txt"
)

type options struct {
	indexFile        string
	indexURL         string
	query            string
	save             bool
	savePath         string
	metricsAddr      string
	fetchTimeout     time.Duration
	maxContentBytes  int64
	allowPrivateHost bool
	ingestConfig     ingest.Config

	// Replaces the default HTTP client when set.
	urlGetter fetcher.URLGetter
}

func main() {
	host, _ := os.Hostname()
	// Instantiate a root logger that will be passed to all components.
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"SHA":  appSHA,
		"host": host,
	})

	opts := parseFlags()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Listen for os signals and cancel the run on the first one.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, opts, logger, os.Stdout); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.indexFile, "index-file", "", "Path to a local copy of the RFC index. Takes precedence over -index-url")
	flag.StringVar(&opts.indexURL, "index-url", defaultIndexURL, "URL of the RFC index")
	flag.StringVar(
		&opts.query, "query", "",
		"Comma separated list of terms whose frequencies are reported for every document",
	)
	flag.BoolVar(&opts.save, "save", false, "Write store bookkeeping as JSON once all documents are processed")
	flag.StringVar(
		&opts.savePath, "save-path", "",
		"Target file for -save. [defaults to $"+boundary.SavePathEnv+" or "+boundary.DefaultSavePath+"]",
	)
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Address to expose prometheus metrics on. Disabled if empty")
	flag.DurationVar(&opts.fetchTimeout, "fetch-timeout", 30*time.Second, "Timeout for a single document fetch")
	flag.Int64Var(&opts.maxContentBytes, "max-content-bytes", 16<<20, "Maximum accepted document size in bytes")
	flag.BoolVar(&opts.allowPrivateHost, "allow-private-hosts", false, "Allow fetching documents from private networks")

	flag.StringVar(&opts.ingestConfig.Host, "host", ingest.DefaultHost, "Host serving the RFC text documents")
	flag.IntVar(
		&opts.ingestConfig.NumOfFetchWorkers, "fetch-workers",
		runtime.NumCPU(),
		"Number of workers for fetching documents.[defaults to number of CPU's]",
	)
	flag.IntVar(&opts.ingestConfig.FetchRetries, "fetch-retries", 2, "Number of retries for a failed document fetch")
	flag.DurationVar(&opts.ingestConfig.RetryDelay, "retry-delay", time.Second, "Time between two attempts of the same fetch")

	flag.Parse()

	return opts
}

func run(ctx context.Context, opts options, logger *logrus.Entry, out io.Writer) error {
	m := metrics.New()
	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: metricsMux(m)}
		go func() {
			logger.WithField("addr", opts.metricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithField("err", err).Error("metrics server stopped")
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	docFetcher, err := newFetcher(opts)
	if err != nil {
		return err
	}

	indexContent, err := loadIndex(ctx, opts, docFetcher)
	if err != nil {
		return err
	}

	ingestConfig := opts.ingestConfig
	ingestConfig.Fetcher = docFetcher
	ingestConfig.Metrics = m
	ingestConfig.Logger = logger.WithField("component", "ingest")

	ing, err := ingest.New(ingestConfig)
	if err != nil {
		return err
	}

	entries, err := ing.Ingest(ctx, indexContent)
	if err != nil {
		return err
	}

	extractor, err := termfreq.NewExtractor()
	if err != nil {
		return err
	}

	layer := boundary.NewLayer(boundary.Config{
		SavePath: opts.savePath,
		Metrics:  m,
		Logger:   logger.WithField("component", "tfstore"),
	})

	handles := populateStores(layer, extractor, entries)
	defer func() {
		for _, h := range handles {
			if h != tfstore.NullHandle {
				layer.DestroyTermFreqs(h)
			}
		}
	}()

	logger.WithField("stores", layer.Registry().Stats().LiveHandles).Info("term frequencies computed")

	if terms := queryTerms(opts.query); len(terms) > 0 {
		if err = report(out, layer, entries, handles, terms); err != nil {
			return err
		}
	}

	if opts.save && layer.SaveJSON().Error {
		return fmt.Errorf("unable to save store bookkeeping")
	}

	return nil
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	return mux
}

func newFetcher(opts options) (*fetcher.Fetcher, error) {
	cfg := fetcher.Config{
		URLGetter:       opts.urlGetter,
		MaxContentBytes: opts.maxContentBytes,
	}
	if cfg.URLGetter == nil {
		cfg.URLGetter = &http.Client{Timeout: opts.fetchTimeout}
	}

	if !opts.allowPrivateHost {
		detector, err := privnet.NewDetector()
		if err != nil {
			return nil, err
		}
		cfg.PrivateNetworkDetector = detector
	}

	return fetcher.New(cfg), nil
}

func loadIndex(ctx context.Context, opts options, f *fetcher.Fetcher) (string, error) {
	if opts.indexFile != "" {
		data, err := os.ReadFile(opts.indexFile)
		if err != nil {
			return "", fmt.Errorf("reading index file: %w", err)
		}

		return string(data), nil
	}

	return f.Fetch(ctx, opts.indexURL)
}

// populateStores creates one store per entry with content. handles[i] belongs
// to entries[i] and is the null handle for entries without content.
func populateStores(
	layer *boundary.Layer, extractor *termfreq.Extractor, entries []ingest.Entry,
) []tfstore.Handle {

	handles := make([]tfstore.Handle, len(entries))
	for i, e := range entries {
		if e.Content == nil {
			continue
		}

		h := layer.CreateTermFreqs()

		// Terms produced by the analyzer are valid UTF-8, so the store is
		// filled in bulk instead of key by key through the boundary.
		store, err := layer.Registry().Store(h)
		if err != nil {
			continue
		}
		store.InsertAll(extractor.Frequencies(*e.Content))

		handles[i] = h
	}

	return handles
}

func queryTerms(query string) []string {
	var terms []string
	for _, t := range strings.Split(query, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}

	return terms
}

func report(
	out io.Writer, layer *boundary.Layer, entries []ingest.Entry,
	handles []tfstore.Handle, terms []string,
) error {

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RFC\tTERM\tFREQUENCY\tTITLE\n")

	for i, e := range entries {
		h := handles[i]
		if h == tfstore.NullHandle {
			continue
		}

		for _, term := range terms {
			if freq := layer.GetTermFreqs(h, []byte(term)); freq != nil {
				fmt.Fprintf(w, "%d\t%s\t%.6f\t%s\n", e.Number, term, *freq, e.Title)
			}
		}
	}

	return w.Flush()
}
