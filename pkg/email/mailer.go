package email

import (
	"context"
	"errors"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// EmailSender delivers a single message. Implementations must be safe for concurrent use.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

type SendEmailParams struct {
	SendTo   string `json:"send_to"`             // Email address of the recipient
	Subject  string `json:"subject"`             // Subject of the email
	BodyText string `json:"body_text"`           // Plain-text body
	BodyHTML string `json:"body_html,omitempty"` // Optional HTML alternative
	Tag      string `json:"tag,omitempty"`       // Optional provider tag
}

// Validate checks the params before any transport is touched.
func (p SendEmailParams) Validate() error {
	err := validator.Apply(
		validator.RequiredString("send_to", p.SendTo),
		validator.When(p.SendTo != "", validator.ValidEmail("send_to", p.SendTo)),
		validator.RequiredString("subject", p.Subject),
		validator.RequiredString("body", p.BodyText+p.BodyHTML),
	)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}
