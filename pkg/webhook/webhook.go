package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	defaultUserAgent = "notifykit-webhook/1.0"
	maxSnippetBytes  = 200
)

// Sender posts JSON payloads to arbitrary endpoints. Safe for concurrent use.
type Sender struct {
	client    *http.Client
	userAgent string
	defaults  []SendOption
}

// NewSender returns a sender with a pooled HTTP client.
func NewSender() *Sender {
	return &Sender{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
	}
}

// Send marshals data to JSON and POSTs it to webhookURL.
// Any non-2xx response is a failure. 4xx responses other than 408, 425 and 429
// are permanent and never retried.
func (s *Sender) Send(ctx context.Context, webhookURL string, data any, opts ...SendOption) error {
	if err := validateURL(webhookURL); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if len(payload) == 0 || string(payload) == "null" {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	o := defaultSendOptions()
	for _, opt := range s.defaults {
		opt(o)
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.deliveryID == "" {
		o.deliveryID = uuid.NewString()
	}

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrDeliveryFailed, ctx.Err())
			case <-time.After(o.backoff.NextInterval(attempt)):
			}
		}

		result, err := s.attempt(ctx, webhookURL, payload, o)
		result.Attempt = attempt + 1
		if o.onDelivery != nil {
			o.onDelivery(result)
		}
		if err == nil {
			return nil
		}

		lastErr = err
		if isPermanent(result.StatusCode) {
			return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		}
	}

	if o.maxRetries == 0 {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, lastErr)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrDeliveryFailed, o.maxRetries+1, lastErr)
}

func (s *Sender) attempt(ctx context.Context, webhookURL string, payload []byte, o *sendOptions) (DeliveryResult, error) {
	start := time.Now()
	result := DeliveryResult{DeliveryID: o.deliveryID}

	fail := func(err error) (DeliveryResult, error) {
		result.Duration = time.Since(start)
		result.Error = err
		return result, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("build request: %w", err))
	}
	for k, v := range o.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set(HeaderID, o.deliveryID)

	if o.signingSecret != "" {
		sig, err := Sign(o.signingSecret, o.deliveryID, time.Now(), payload)
		if err != nil {
			return fail(err)
		}
		sig.Apply(req.Header)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return fail(fmt.Errorf("%w: %w", ErrTimeout, err))
		}
		return fail(fmt.Errorf("%w: %w", ErrTemporaryFailure, err))
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if snippet := bodySnippet(body); snippet != "" {
			msg += ": " + snippet
		}
		return fail(fmt.Errorf("%w: %s", ErrUnexpectedStatus, msg))
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

// bodySnippet flattens and truncates a response body for error messages.
// The result is valid UTF-8 even when the body is not.
func bodySnippet(body []byte) string {
	s := strings.ToValidUTF8(strings.Join(strings.Fields(string(body)), " "), "\uFFFD")
	if len(s) <= maxSnippetBytes {
		return s
	}
	cut := maxSnippetBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isPermanent(status int) bool {
	if status < 400 || status >= 500 {
		return false
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}
