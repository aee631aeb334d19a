// Package webhook delivers JSON payloads over HTTP POST.
//
// A Sender holds one pooled http.Client and is shared by every goroutine that
// sends. Each call to Send performs a single attempt unless retries are
// enabled with WithMaxRetries or WithExponentialRetry; retries only follow
// temporary failures (network errors, timeouts, 5xx, 408, 425, 429).
//
//	sender := webhook.NewFromConfig(cfg)
//	err := sender.Send(ctx, "https://hooks.example.com/notify", payload,
//	    webhook.WithDeliveryID(notificationID),
//	)
//	if errors.Is(err, webhook.ErrPermanentFailure) {
//	    // receiver rejected the request
//	}
//
// When a signing secret is set, every request carries X-Webhook-Signature,
// X-Webhook-Timestamp and X-Webhook-ID. Receivers verify with ParseSignature
// and Verify:
//
//	sig, err := webhook.ParseSignature(r.Header)
//	err = webhook.Verify(secret, body, sig, 5*time.Minute, time.Now())
package webhook
