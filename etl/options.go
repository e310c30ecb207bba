package etl

import (
	"io"

	"github.com/oarkflow/log"
)

type settings struct {
	logger       *log.Logger
	progress     io.Writer
	batchSize    int
	skipTruncate bool
	events       *EventBus
	store        RunStore
}

func defaultSettings() settings {
	return settings{
		logger:    &log.DefaultLogger,
		progress:  io.Discard,
		batchSize: 500,
	}
}

type Option func(*settings)

func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress sets where the seed pipeline prints its confirmation lines.
func WithProgress(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.progress = w
		}
	}
}

// WithBatchSize bounds how many documents go into one insert call.
func WithBatchSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithTruncate controls whether the seed pipeline empties the relational
// tables before writing. Truncation is on unless disabled here.
func WithTruncate(truncate bool) Option {
	return func(s *settings) {
		s.skipTruncate = !truncate
	}
}

func WithEventBus(bus *EventBus) Option {
	return func(s *settings) {
		s.events = bus
	}
}

// WithRunStore persists every finished or failed run.
func WithRunStore(store RunStore) Option {
	return func(s *settings) {
		s.store = store
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
