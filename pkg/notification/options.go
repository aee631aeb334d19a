package notification

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/metrics"
)

type options struct {
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
	newID   func() string
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		metrics: metrics.Noop{},
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Dispatcher, Retrier or Service.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock replaces the time source. Used for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the default UUIDv4 identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
