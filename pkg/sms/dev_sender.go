package sms

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DevSender logs messages instead of sending them and keeps them for inspection.
type DevSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []SendSMSParams
}

type DevOption func(*DevSender)

func WithDevLogger(l *slog.Logger) DevOption {
	return func(d *DevSender) {
		if l != nil {
			d.logger = l
		}
	}
}

func NewDevSender(opts ...DevOption) *DevSender {
	d := &DevSender{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DevSender) SendSMS(ctx context.Context, params SendSMSParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	d.sent = append(d.sent, params)
	d.mu.Unlock()

	d.logger.InfoContext(ctx, "sms captured",
		logger.Component("sms.dev"),
		slog.String("to", params.To),
		slog.Int("length", len(params.Body)),
	)
	return nil
}

// Sent returns a copy of every captured message.
func (d *DevSender) Sent() []SendSMSParams {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SendSMSParams, len(d.sent))
	copy(out, d.sent)
	return out
}
