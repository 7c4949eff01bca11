package main

import (
	"unsafe"

	"github.com/mycok/rfcFreq/boundary"
	"github.com/mycok/rfcFreq/tfstore"
)

// copyBytes copies n bytes starting at p into Go memory. A nil p stands for a
// NULL pointer and maps to a nil slice; any other pointer yields a non-nil
// slice, even for n == 0, so an empty key stays distinct from a missing one.
func copyBytes(p unsafe.Pointer, n int) []byte {
	if p == nil {
		return nil
	}

	b := make([]byte, n)
	if n > 0 {
		copy(b, unsafe.Slice((*byte)(p), n))
	}

	return b
}

// lookupInto writes the frequency of key into *out and reports whether it was
// found. out may be nil, and it is left untouched on a miss.
func lookupInto(layer *boundary.Layer, h tfstore.Handle, key []byte, out *float64) bool {
	v := layer.GetTermFreqs(h, key)
	if v == nil {
		return false
	}

	if out != nil {
		*out = *v
	}

	return true
}
