package rfcindex

import "errors"

var (
	// ErrIndexMarkerNotFound is returned when the index document does not
	// contain the marker of its first entry.
	ErrIndexMarkerNotFound = errors.New("index start marker not found")

	// ErrMalformedEntry is returned when an entry block does not start with
	// a numeric identifier followed by a space.
	ErrMalformedEntry = errors.New("malformed index entry")
)
