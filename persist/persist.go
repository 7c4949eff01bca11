// Package persist writes small JSON documents to disk. Files are written to a
// temporary file in the target directory and renamed into place, so readers
// never observe a partially written document.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for empty save paths.
var ErrInvalidPath = errors.New("invalid save path")

// NumberRecord is the document written by SaveNumber.
type NumberRecord struct {
	Value int32 `json:"value"`
}

// Bookkeeping is the document written by SaveBookkeeping.
type Bookkeeping struct {
	LiveHandles int `json:"live_handles"`
	Terms       int `json:"terms"`
}

// SaveNumber writes {"value": v} to path.
func SaveNumber(path string, v int32) error {
	return WriteJSON(path, NumberRecord{Value: v})
}

// SaveBookkeeping writes b to path.
func SaveBookkeeping(path string, b Bookkeeping) error {
	return WriteJSON(path, b)
}

// WriteJSON encodes v as JSON and atomically replaces the file at path.
func WriteJSON(path string, v interface{}) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("persist: write: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("persist: sync: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("persist: close: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("persist: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("persist: %w", err)
	}

	return nil
}
