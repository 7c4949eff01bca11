package ingest

import (
	"fmt"
	"sync"

	"github.com/mycok/rfcFreq/pipeline"
)

var (
	_ pipeline.Payload = (*entryPayload)(nil)

	// Payloads are recycled once the sink has copied their entry out, which
	// keeps allocations flat across the thousands of blocks of an index.
	payloadPool = sync.Pool{
		New: func() interface{} {
			return new(entryPayload)
		},
	}
)

// Entry is an index entry together with its fetched content.
type Entry struct {
	Number int
	URL    string
	Title  string

	// Content is nil when the document could not be fetched.
	Content *string
}

// EntryURL returns the canonical URL of the text document for an entry.
func EntryURL(host string, number int) string {
	return fmt.Sprintf("https://%s/rfc/rfc%d.txt", host, number)
}

type entryPayload struct {
	Position int    // populated by the block source.
	Block    string // populated by the block source.
	Entry    Entry  // Number, URL and Title by the header parser, Content by the content fetcher.

	// Skip marks a block without a valid header. Skipped payloads still
	// travel to the sink so that it can tell a drained index from an
	// interrupted run, but they never become entries.
	Skip bool
}

// MarkAsProcessed resets the payload and returns it to the pool.
func (p *entryPayload) MarkAsProcessed() {
	p.Position = 0
	p.Block = ""
	p.Entry = Entry{}
	p.Skip = false

	payloadPool.Put(p)
}
