/*
	boundary package is the outer edge of the term-frequency store. Its
	functions mirror the foreign-callable surface one to one and never fail
	loudly: a null handle, a null key or a key that is not valid UTF-8 turns a
	write into a no-op and a read into an absent result, and any panic is
	recovered and logged. Save operations report failure through SaveResult
	only.

	Keys and paths are byte slices; nil stands for a null pointer on the
	foreign side.
*/

package boundary

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mycok/rfcFreq/metrics"
	"github.com/mycok/rfcFreq/persist"
	"github.com/mycok/rfcFreq/tfstore"
)

// SavePathEnv overrides the default save path when set.
const SavePathEnv = "TFSTORE_SAVE_PATH"

// DefaultSavePath is used by the save operations without a path argument.
const DefaultSavePath = "tfstore.json"

// SaveResult reports the outcome of a save operation.
type SaveResult struct {
	Error bool
}

// Config serves as a configuration object for a Layer.
type Config struct {
	// The registry backing the layer. If not specified, a new registry
	// is created.
	Registry *tfstore.Registry

	// The file written by SaveJSON and SaveInputNumberAsJSON. If not
	// specified, the value of TFSTORE_SAVE_PATH or DefaultSavePath is
	// used instead.
	SavePath string

	// Optional collectors for rejected calls and live handles.
	Metrics *metrics.Metrics

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

// Layer exposes a registry through null-safe, non-failing operations.
type Layer struct {
	reg      *tfstore.Registry
	savePath string
	metrics  *metrics.Metrics
	logger   *logrus.Entry
}

// NewLayer returns a layer configured with cfg.
func NewLayer(cfg Config) *Layer {
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	if cfg.Registry == nil {
		cfg.Registry = tfstore.NewRegistry(cfg.Logger)
	}

	if cfg.SavePath == "" {
		cfg.SavePath = os.Getenv(SavePathEnv)
	}

	if cfg.SavePath == "" {
		cfg.SavePath = DefaultSavePath
	}

	return &Layer{
		reg:      cfg.Registry,
		savePath: cfg.SavePath,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// CreateTermFreqs allocates an empty term-frequency map. It returns
// tfstore.NullHandle only if the allocation panicked.
func (l *Layer) CreateTermFreqs() (h tfstore.Handle) {
	defer l.recoverCall("create", func() { h = tfstore.NullHandle })

	h = l.reg.Create()
	l.metrics.SetLiveHandles(l.reg.Stats().LiveHandles)

	return h
}

// InsertTermFreqs sets the frequency of key in the map behind h. Invalid
// input leaves every map untouched.
func (l *Layer) InsertTermFreqs(h tfstore.Handle, key []byte, value float64) {
	defer l.recoverCall("insert", nil)

	if err := l.reg.Insert(h, key, value); err != nil {
		l.reject("insert", err)
	}
}

// GetTermFreqs returns the frequency of key in the map behind h, or nil when
// the input is invalid or the key is absent.
func (l *Layer) GetTermFreqs(h tfstore.Handle, key []byte) (value *float64) {
	defer l.recoverCall("lookup", func() { value = nil })

	value, err := l.reg.Lookup(h, key)
	if err != nil {
		l.reject("lookup", err)

		return nil
	}

	return value
}

// DestroyTermFreqs releases the map behind h. Destroying an unknown or null
// handle is a no-op.
func (l *Layer) DestroyTermFreqs(h tfstore.Handle) {
	defer l.recoverCall("destroy", nil)

	if err := l.reg.Destroy(h); err != nil {
		l.reject("destroy", err)

		return
	}

	l.metrics.SetLiveHandles(l.reg.Stats().LiveHandles)
}

// SaveJSON writes the registry bookkeeping to the default save path.
func (l *Layer) SaveJSON() (res SaveResult) {
	defer l.recoverCall("save_json", func() { res = SaveResult{Error: true} })

	stats := l.reg.Stats()

	return l.saveResult("save_json", persist.SaveBookkeeping(l.savePath, persist.Bookkeeping{
		LiveHandles: stats.LiveHandles,
		Terms:       stats.Terms,
	}))
}

// SaveInputNumberAsJSON writes value to the default save path.
func (l *Layer) SaveInputNumberAsJSON(value int32) (res SaveResult) {
	defer l.recoverCall("save_number", func() { res = SaveResult{Error: true} })

	return l.saveResult("save_number", persist.SaveNumber(l.savePath, value))
}

// SaveInputNumberAsJSONToCustomPath writes value to path. A nil path or one
// that is not valid UTF-8 fails without falling back to the default path.
func (l *Layer) SaveInputNumberAsJSONToCustomPath(value int32, path []byte) (res SaveResult) {
	defer l.recoverCall("save_number_custom_path", func() { res = SaveResult{Error: true} })

	if path == nil {
		return l.saveResult("save_number_custom_path", persist.ErrInvalidPath)
	}

	if !utf8.Valid(path) {
		return l.saveResult("save_number_custom_path", errInvalidPathEncoding)
	}

	return l.saveResult("save_number_custom_path", persist.SaveNumber(string(path), value))
}

// Registry returns the registry backing the layer.
func (l *Layer) Registry() *tfstore.Registry {
	return l.reg
}

var errInvalidPathEncoding = errors.New("path is not valid UTF-8")

func (l *Layer) saveResult(op string, err error) SaveResult {
	if err != nil {
		l.logger.WithFields(logrus.Fields{"op": op, "err": err}).Error("save failed")

		return SaveResult{Error: true}
	}

	return SaveResult{Error: false}
}

func (l *Layer) reject(op string, err error) {
	reason := rejectionReason(err)
	l.metrics.ObserveRejection(op, reason)
	l.logger.WithFields(logrus.Fields{
		"op":     op,
		"reason": reason,
	}).Debug("boundary call ignored")
}

func (l *Layer) recoverCall(op string, fallback func()) {
	if r := recover(); r != nil {
		l.metrics.ObserveRejection(op, "panic")
		l.logger.WithFields(logrus.Fields{"op": op, "panic": r}).Error("recovered boundary panic")

		if fallback != nil {
			fallback()
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, tfstore.ErrNullHandle):
		return "null_handle"
	case errors.Is(err, tfstore.ErrUnknownHandle):
		return "unknown_handle"
	case errors.Is(err, tfstore.ErrNullKey):
		return "null_key"
	case errors.Is(err, tfstore.ErrInvalidUTF8):
		return "invalid_utf8"
	default:
		return "other"
	}
}
