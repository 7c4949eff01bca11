package boundary

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultOnce  sync.Once
	defaultLayer *Layer
)

// Default returns the process-wide layer used by the foreign-callable entry
// points. It is created on first use and logs to stderr.
func Default() *Layer {
	defaultOnce.Do(func() {
		logger := logrus.New()
		logger.Out = os.Stderr

		defaultLayer = NewLayer(Config{
			Logger: logger.WithField("lib", "tfstore"),
		})
	})

	return defaultLayer
}
