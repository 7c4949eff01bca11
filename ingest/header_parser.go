package ingest

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/rfcFreq/metrics"
	"github.com/mycok/rfcFreq/pipeline"
	"github.com/mycok/rfcFreq/rfcindex"
)

var _ pipeline.Processor = (*headerParser)(nil)

// progressInterval controls how often the header parser reports progress.
const progressInterval = 1000

// headerParser fills in the number, URL and title of an entry. Blocks with a
// malformed header are marked as skipped; they are a property of the input,
// not a pipeline failure.
type headerParser struct {
	host    string
	metrics *metrics.Metrics
	logger  *logrus.Entry
}

func newHeaderParser(host string, m *metrics.Metrics, logger *logrus.Entry) *headerParser {
	return &headerParser{host: host, metrics: m, logger: logger}
}

// Process parses the header of the payload's block. It runs in a FIFO stage,
// so progress lines come out in index order.
func (p *headerParser) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	ePayload, ok := payload.(*entryPayload)
	if !ok {
		return nil, nil
	}

	// A well-formed index ends with a delimiter, leaving an empty block.
	// It is not an entry and is not counted as skipped.
	if strings.TrimSpace(ePayload.Block) == "" {
		ePayload.Skip = true

		return ePayload, nil
	}

	num, title, err := rfcindex.ParseEntryHeader(ePayload.Block)
	if err != nil {
		p.metrics.ObserveSkip()
		p.logger.WithFields(logrus.Fields{
			"position": ePayload.Position,
			"err":      err,
		}).Debug("skipping malformed index entry")

		ePayload.Skip = true

		return ePayload, nil
	}

	if num%progressInterval == 0 {
		p.logger.WithField("number", num).Info("fetching RFC")
	}

	ePayload.Entry = Entry{
		Number: num,
		URL:    EntryURL(p.host, num),
		Title:  rfcindex.NormalizeTitle(title),
	}

	return ePayload, nil
}
