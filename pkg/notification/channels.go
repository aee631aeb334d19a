package notification

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/sms"
	"github.com/dmitrymomot/notifykit/pkg/webhook"
)

// EmailChannel sends the subject and plain-text content through an email transport.
type EmailChannel struct {
	mailer email.EmailSender
	tag    string
}

func NewEmailChannel(mailer email.EmailSender) *EmailChannel {
	return &EmailChannel{mailer: mailer, tag: "notification"}
}

func (c *EmailChannel) Send(ctx context.Context, n Notification) error {
	return c.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.Recipient,
		Subject:  n.Subject,
		BodyText: n.Content,
		Tag:      c.tag,
	})
}

// SMSChannel sends the content as the message body. The subject is not transmitted.
type SMSChannel struct {
	sender sms.Sender
}

func NewSMSChannel(sender sms.Sender) *SMSChannel {
	return &SMSChannel{sender: sender}
}

func (c *SMSChannel) Send(ctx context.Context, n Notification) error {
	return c.sender.SendSMS(ctx, sms.SendSMSParams{
		To:   n.Recipient,
		Body: n.Content,
	})
}

// WebhookPoster is satisfied by *webhook.Sender.
type WebhookPoster interface {
	Send(ctx context.Context, webhookURL string, data any, opts ...webhook.SendOption) error
}

// WebhookPayload is the JSON body posted to the recipient URL.
type WebhookPayload struct {
	Subject  string         `json:"subject"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// WebhookChannel posts the payload to the recipient URL. The notification id
// is used as the delivery id so receivers can deduplicate redeliveries.
type WebhookChannel struct {
	poster WebhookPoster
	opts   []webhook.SendOption
}

func NewWebhookChannel(poster WebhookPoster, opts ...webhook.SendOption) *WebhookChannel {
	return &WebhookChannel{poster: poster, opts: opts}
}

func (c *WebhookChannel) Send(ctx context.Context, n Notification) error {
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	opts := make([]webhook.SendOption, 0, len(c.opts)+1)
	opts = append(opts, c.opts...)
	opts = append(opts, webhook.WithDeliveryID(n.ID))

	return c.poster.Send(ctx, n.Recipient, WebhookPayload{
		Subject:  n.Subject,
		Content:  n.Content,
		Metadata: metadata,
	}, opts...)
}
