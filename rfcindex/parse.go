package rfcindex

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// StartMarker identifies the first real entry of the index.
	StartMarker = "0001"

	// EntryDelimiter separates two consecutive entries.
	EntryDelimiter = "\n\n"

	// TitleContinuation prefixes every continuation line of a title.
	TitleContinuation = "\n     "
)

// Header holds the identifier and the normalized title of an index entry.
type Header struct {
	Number int
	Title  string
}

// LocateStart returns the offset of the first entry in content.
func LocateStart(content string) (int, error) {
	idx := strings.Index(content, StartMarker)
	if idx < 0 {
		return 0, ErrIndexMarkerNotFound
	}

	return idx, nil
}

// ParseEntryHeader splits an entry block on its first space and returns the
// numeric identifier and the raw title. The title still contains any
// continuation markers; use NormalizeTitle to collapse them.
func ParseEntryHeader(block string) (int, string, error) {
	numStr, title, found := strings.Cut(block, " ")
	if !found {
		return 0, "", fmt.Errorf("%w: no separator in %q", ErrMalformedEntry, block)
	}

	num, err := strconv.ParseInt(numStr, 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid number %q", ErrMalformedEntry, numStr)
	}

	return int(num), title, nil
}

// NormalizeTitle replaces every title continuation marker with a single space.
func NormalizeTitle(raw string) string {
	return strings.ReplaceAll(raw, TitleContinuation, " ")
}

// ParseIndex returns the raw entry blocks of the index, starting at the first
// entry. The trailing block is kept even when it is empty.
func ParseIndex(content string) ([]string, error) {
	start, err := LocateStart(content)
	if err != nil {
		return nil, err
	}

	var blocks []string
	it := SplitEntries(content[start:])
	for it.Next() {
		blocks = append(blocks, it.Block())
	}

	return blocks, nil
}

// ParseHeaders parses every entry of the index and fails on the first block
// whose header is malformed. The empty block that terminates the index is not
// an entry and is not reported.
func ParseHeaders(content string) ([]Header, error) {
	blocks, err := ParseIndex(content)
	if err != nil {
		return nil, err
	}

	headers := make([]Header, 0, len(blocks))
	for i, block := range blocks {
		if block == "" && i == len(blocks)-1 {
			break
		}

		num, title, err := ParseEntryHeader(block)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		headers = append(headers, Header{Number: num, Title: NormalizeTitle(title)})
	}

	return headers, nil
}
