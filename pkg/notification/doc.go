// Package notification delivers messages over email, SMS and webhooks and
// tracks each message through a small lifecycle:
//
//	PENDING --send ok--> SENT (terminal)
//	PENDING --send error--> FAILED
//	FAILED --retry--> PENDING
//
// Records are plain values. MarkSent, MarkFailed and Rearm return a new
// snapshot and the Storage commits it, so every transition can be tested
// without a store.
//
// The Dispatcher picks a Sender from a Senders map keyed by Type and runs one
// attempt. A transport error is persisted as FAILED before it is returned.
// The Retrier moves FAILED records back to PENDING while retryCount is below
// maxRetries; it never sends. There is no background timer: every retry and
// every redelivery is an explicit call.
//
//	svc := notification.NewService(store, notification.Senders{
//	    notification.TypeEmail:   notification.NewEmailChannel(mailer),
//	    notification.TypeSMS:     notification.NewSMSChannel(texter),
//	    notification.TypeWebhook: notification.NewWebhookChannel(webhook.NewSender()),
//	}, notification.WithLogger(log), notification.WithMetrics(rec))
//
//	n, err := svc.Create(ctx, notification.CreateParams{
//	    Type: notification.TypeEmail, Recipient: "ops@example.com",
//	    Subject: "Pump 4", Content: "Maintenance due",
//	})
//	n, err = svc.Dispatch(ctx, n.ID)
//	if errors.Is(err, notification.ErrTransport) {
//	    // n is FAILED with n.ErrorMessage set; call svc.Retry then Dispatch again
//	}
package notification
