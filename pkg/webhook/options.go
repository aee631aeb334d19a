package webhook

import (
	"net/http"
	"time"
)

// DeliveryResult describes one HTTP attempt.
type DeliveryResult struct {
	DeliveryID string
	Attempt    int
	StatusCode int
	Duration   time.Duration
	Success    bool
	Error      error
}

// DeliveryHook observes every attempt, successful or not.
type DeliveryHook func(result DeliveryResult)

type sendOptions struct {
	timeout time.Duration
	headers http.Header

	maxRetries int
	backoff    BackoffStrategy

	signingSecret string
	deliveryID    string

	onDelivery DeliveryHook
}

// Retries are opt-in. A notification dispatch is a single recorded attempt by default.
func defaultSendOptions() *sendOptions {
	return &sendOptions{
		timeout:    10 * time.Second,
		headers:    make(http.Header),
		maxRetries: 0,
		backoff:    DefaultBackoffStrategy(),
	}
}

type SendOption func(*sendOptions)

// WithTimeout bounds each HTTP attempt. Default 10s.
func WithTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) {
		if key != "" && value != "" {
			o.headers.Set(key, value)
		}
	}
}

// WithMaxRetries sets how many extra attempts follow a temporary failure.
func WithMaxRetries(n int) SendOption {
	return func(o *sendOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

func WithBackoff(strategy BackoffStrategy) SendOption {
	return func(o *sendOptions) {
		if strategy != nil {
			o.backoff = strategy
		}
	}
}

// WithExponentialRetry enables n retries with jittered exponential backoff.
func WithExponentialRetry(n int, initial, maxInterval time.Duration) SendOption {
	return func(o *sendOptions) {
		if n < 0 {
			return
		}
		o.maxRetries = n
		o.backoff = ExponentialBackoff{
			InitialInterval: initial,
			MaxInterval:     maxInterval,
			Multiplier:      2,
			JitterFactor:    retryJitter,
		}
	}
}

// WithSignature signs every attempt with HMAC-SHA256. An empty secret disables signing.
func WithSignature(secret string) SendOption {
	return func(o *sendOptions) {
		o.signingSecret = secret
	}
}

// WithDeliveryID fixes the X-Webhook-ID value, e.g. to the notification id,
// so receivers can deduplicate. A random id is generated otherwise.
func WithDeliveryID(id string) SendOption {
	return func(o *sendOptions) {
		if id != "" {
			o.deliveryID = id
		}
	}
}

func WithOnDelivery(hook DeliveryHook) SendOption {
	return func(o *sendOptions) {
		o.onDelivery = hook
	}
}
