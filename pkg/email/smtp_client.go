package email

import (
	"context"
	"fmt"

	"gopkg.in/mail.v2"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Dialer is the subset of *mail.Dialer used to deliver messages.
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPClient sends plain-text email through an SMTP relay.
type SMTPClient struct {
	dialer  Dialer
	from    string
	replyTo string
}

// NewSMTPClient validates cfg and builds a client backed by a mail.Dialer.
// Every send opens its own connection, so the client is safe for concurrent use.
func NewSMTPClient(cfg Config) (*SMTPClient, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTPHost is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTPPort must be positive", ErrInvalidConfig)
	}

	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	if cfg.SMTPTimeout > 0 {
		d.Timeout = cfg.SMTPTimeout
	}
	d.SSL = cfg.SMTPSSL

	return NewSMTPClientWithDialer(cfg, d)
}

// NewSMTPClientWithDialer builds a client around a custom dialer.
func NewSMTPClientWithDialer(cfg Config, d Dialer) (*SMTPClient, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: dialer is required", ErrInvalidConfig)
	}
	if err := validateSender(cfg); err != nil {
		return nil, err
	}
	return &SMTPClient{dialer: d, from: cfg.SenderEmail, replyTo: cfg.ReplyTo}, nil
}

func (c *SMTPClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", params.SendTo)
	m.SetHeader("Subject", params.Subject)
	if c.replyTo != "" {
		m.SetHeader("Reply-To", c.replyTo)
	}

	switch {
	case params.BodyText != "" && params.BodyHTML != "":
		m.SetBody("text/plain", params.BodyText)
		m.AddAlternative("text/html", params.BodyHTML)
	case params.BodyHTML != "":
		m.SetBody("text/html", params.BodyHTML)
	default:
		m.SetBody("text/plain", params.BodyText)
	}

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	return nil
}

func validateSender(cfg Config) error {
	if cfg.SenderEmail == "" {
		return fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}
	if err := validator.Apply(
		validator.ValidEmail("sender_email", cfg.SenderEmail),
		validator.When(cfg.ReplyTo != "", validator.ValidEmail("reply_to", cfg.ReplyTo)),
	); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
