/*
Package tfstore holds term-frequency maps and the registry that hands them out
as opaque handles.

A Store is a plain map with no locking: one writer or one reader at a time is
the caller's responsibility. The Registry only guards its handle table, so
independent handles may be used from independent goroutines.
*/
package tfstore

// Store maps terms to frequencies. Keys are unique and the last insert for a
// key wins.
type Store struct {
	terms map[string]float64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{terms: make(map[string]float64)}
}

// Insert sets the frequency of term, overwriting any previous value.
func (s *Store) Insert(term string, freq float64) {
	s.terms[term] = freq
}

// InsertAll inserts every term of freqs.
func (s *Store) InsertAll(freqs map[string]float64) {
	for term, freq := range freqs {
		s.terms[term] = freq
	}
}

// Lookup returns the frequency of term and whether it is present.
func (s *Store) Lookup(term string) (float64, bool) {
	freq, found := s.terms[term]

	return freq, found
}

// Len returns the number of terms in the store.
func (s *Store) Len() int {
	return len(s.terms)
}
