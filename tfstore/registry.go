package tfstore

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNullHandle is returned when the null handle is passed in.
	ErrNullHandle = errors.New("null handle")

	// ErrUnknownHandle is returned for handles that were never created by
	// the registry or have already been destroyed.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrNullKey is returned when a nil key is passed in.
	ErrNullKey = errors.New("null key")

	// ErrInvalidUTF8 is returned when a key is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("key is not valid UTF-8")
)

// Handle is an opaque reference to a Store owned by a Registry.
type Handle uint64

// NullHandle is never returned by Create.
const NullHandle Handle = 0

// Stats summarizes the contents of a registry.
type Stats struct {
	LiveHandles int
	Terms       int
}

// Registry hands out stores through handles. Handles are never reused, so a
// destroyed handle cannot alias a newer store.
type Registry struct {
	mu     sync.RWMutex
	last   Handle
	stores map[Handle]*Store
	logger *logrus.Entry
}

// NewRegistry returns an empty registry that reports rejected writes to
// logger. A nil logger discards the reports.
func NewRegistry(logger *logrus.Entry) *Registry {
	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return &Registry{
		stores: make(map[Handle]*Store),
		logger: logger,
	}
}

// Create allocates an empty store and returns its handle. The caller owns the
// store until it calls Destroy.
func (r *Registry) Create() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last++
	r.stores[r.last] = NewStore()

	return r.last
}

// Destroy releases the store behind h.
func (r *Registry) Destroy(h Handle) error {
	if h == NullHandle {
		return ErrNullHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.stores[h]; !found {
		return fmt.Errorf("destroy %d: %w", h, ErrUnknownHandle)
	}

	delete(r.stores, h)

	return nil
}

// Store returns the store behind h.
func (r *Registry) Store(h Handle) (*Store, error) {
	if h == NullHandle {
		return nil, ErrNullHandle
	}

	r.mu.RLock()
	s, found := r.stores[h]
	r.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}

	return s, nil
}

// Insert sets the frequency of key in the store behind h. Keys that are not
// valid UTF-8 are logged and discarded without touching the store.
func (r *Registry) Insert(h Handle, key []byte, freq float64) error {
	s, err := r.Store(h)
	if err != nil {
		return err
	}

	if key == nil {
		return ErrNullKey
	}

	if !utf8.Valid(key) {
		r.logger.WithField("handle", uint64(h)).Error("unable to convert key to UTF-8")

		return ErrInvalidUTF8
	}

	s.Insert(string(key), freq)

	return nil
}

// Lookup returns the frequency of key in the store behind h, or nil when the
// key is absent. The returned value is a copy and stays valid after later
// inserts.
func (r *Registry) Lookup(h Handle, key []byte) (*float64, error) {
	s, err := r.Store(h)
	if err != nil {
		return nil, err
	}

	if key == nil {
		return nil, ErrNullKey
	}

	if !utf8.Valid(key) {
		return nil, ErrInvalidUTF8
	}

	freq, found := s.Lookup(string(key))
	if !found {
		return nil, nil
	}

	return &freq, nil
}

// Stats returns the number of live handles and the total number of terms
// across their stores.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{LiveHandles: len(r.stores)}
	for _, s := range r.stores {
		stats.Terms += s.Len()
	}

	return stats
}
