// Package obslog configures the process-wide structured logger used by the
// remuxer core to report repairs and warnings without involving a global
// event emitter.
package obslog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base zerolog.Logger
)

func init() {
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Configure replaces the global logger. pretty switches to a human-readable
// console writer; otherwise JSON lines are emitted.
func Configure(level string, pretty bool) {
	mu.Lock()
	defer mu.Unlock()

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if pretty {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return
	}
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Logger returns the current global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}
