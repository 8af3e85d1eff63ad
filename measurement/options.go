package measurement

import (
	"log/slog"
	"runtime"
)

// Option configures a Measurement.
type Option func(*config)

type config struct {
	ignoreIdx int
	hasIgnore bool
	workers   int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
}

// WithIgnoreIndex excludes pixels labelled idx from the accuracy reader.
//
// The confusion matrix still counts those pixels, so idx has to be a valid
// class index whenever the confusion-matrix readers are used as well.
func WithIgnoreIndex(idx int) Option {
	return func(c *config) {
		c.ignoreIdx = idx
		c.hasIgnore = true
	}
}

// WithWorkers bounds how many batch items are histogrammed concurrently
// (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
