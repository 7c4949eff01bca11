// Command libtfstore builds the term-frequency store as a C shared library:
//
//	go build -buildmode=c-shared -o libtfstore.so ./cmd/libtfstore
//
// Handles are opaque integers; 0 is the null handle. Keys and paths are
// NUL-terminated UTF-8 strings and a NULL pointer is accepted everywhere.
// Nothing returned to C points into Go memory.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <string.h>

typedef struct {
	bool error;
} SaveResult;
*/
import "C"

import (
	"unsafe"

	"github.com/mycok/rfcFreq/boundary"
	"github.com/mycok/rfcFreq/tfstore"
)

//export create_term_freqs
func create_term_freqs() C.uint64_t {
	return C.uint64_t(boundary.Default().CreateTermFreqs())
}

//export insert_term_freqs
func insert_term_freqs(h C.uint64_t, key *C.char, value C.double) {
	boundary.Default().InsertTermFreqs(tfstore.Handle(h), cBytes(key), float64(value))
}

// get_term_freqs copies the frequency of key into *out and reports whether
// it was found. out is left untouched on a miss.
//
//export get_term_freqs
func get_term_freqs(h C.uint64_t, key *C.char, out *C.double) C.bool {
	found := lookupInto(
		boundary.Default(), tfstore.Handle(h), cBytes(key), (*float64)(unsafe.Pointer(out)),
	)

	return C.bool(found)
}

//export destroy_term_freqs
func destroy_term_freqs(h C.uint64_t) {
	boundary.Default().DestroyTermFreqs(tfstore.Handle(h))
}

//export save_json
func save_json() C.SaveResult {
	return cSaveResult(boundary.Default().SaveJSON())
}

//export save_input_number_as_json
func save_input_number_as_json(value C.int32_t) C.SaveResult {
	return cSaveResult(boundary.Default().SaveInputNumberAsJSON(int32(value)))
}

//export save_input_number_as_json_to_custom_path
func save_input_number_as_json_to_custom_path(value C.int32_t, path *C.char) C.SaveResult {
	return cSaveResult(
		boundary.Default().SaveInputNumberAsJSONToCustomPath(int32(value), cBytes(path)),
	)
}

// cBytes copies a NUL-terminated C string into Go memory. A NULL pointer maps
// to a nil slice.
func cBytes(p *C.char) []byte {
	if p == nil {
		return nil
	}

	return copyBytes(unsafe.Pointer(p), int(C.strlen(p)))
}

func cSaveResult(res boundary.SaveResult) C.SaveResult {
	var out C.SaveResult
	out.error = C.bool(res.Error)

	return out
}

func main() {}
