package webhook

import "time"

const (
	maxRetryInterval = 30 * time.Second
	retryJitter      = 0.1
)

// Config holds sender defaults loaded from the environment.
//
// With MaxRetries > 0 a single Send can run for up to DeliveryBudget. Any lease
// held around a send must outlive that.
type Config struct {
	Timeout       time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	SigningSecret string        `env:"WEBHOOK_SIGNING_SECRET"`
	MaxRetries    int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"0"`
	RetryInterval time.Duration `env:"WEBHOOK_RETRY_INTERVAL" envDefault:"1s"`
	UserAgent     string        `env:"WEBHOOK_USER_AGENT" envDefault:"notifykit-webhook/1.0"`
}

// NewFromConfig builds a sender whose every request carries the configured defaults.
// Per-call options still override them.
func NewFromConfig(cfg Config) *Sender {
	s := NewSender()
	if cfg.UserAgent != "" {
		s.userAgent = cfg.UserAgent
	}

	s.defaults = append(s.defaults, WithTimeout(cfg.Timeout))
	if cfg.SigningSecret != "" {
		s.defaults = append(s.defaults, WithSignature(cfg.SigningSecret))
	}
	if cfg.MaxRetries > 0 {
		s.defaults = append(s.defaults, WithExponentialRetry(cfg.MaxRetries, cfg.RetryInterval, maxRetryInterval))
	}
	return s
}

// DeliveryBudget is the longest a Send built from cfg can take: every attempt
// hitting its timeout plus the largest possible backoff between attempts.
func (cfg Config) DeliveryBudget() time.Duration {
	timeout := cmpOr(cfg.Timeout, defaultSendOptions().timeout)
	budget := time.Duration(cfg.MaxRetries+1) * timeout

	backoff := ExponentialBackoff{
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     maxRetryInterval,
		Multiplier:      2,
	}
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		wait := time.Duration(float64(backoff.NextInterval(attempt)) * (1 + retryJitter))
		budget += min(wait, maxRetryInterval)
	}
	return budget
}
