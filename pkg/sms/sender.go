package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Sender delivers a single text message. Implementations must be safe for concurrent use.
type Sender interface {
	SendSMS(ctx context.Context, params SendSMSParams) error
}

type SendSMSParams struct {
	To   string `json:"to"`   // E.164 phone number
	Body string `json:"body"` // Message text
}

func (p SendSMSParams) Validate() error {
	err := validator.Apply(
		validator.ValidE164Phone("to", p.To),
		validator.RequiredString("body", p.Body),
	)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}

// Driver names accepted by SMS_DRIVER.
const (
	DriverTwilio = "twilio"
	DriverDev    = "dev"
)

type Config struct {
	Driver           string        `env:"SMS_DRIVER" envDefault:"dev"`
	TwilioAccountSID string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string        `env:"TWILIO_AUTH_TOKEN"`
	FromNumber       string        `env:"TWILIO_FROM_NUMBER"`
	Timeout          time.Duration `env:"TWILIO_TIMEOUT" envDefault:"10s"`
}

var (
	ErrFailedToSendSMS = errors.New("failed to send sms")
	ErrInvalidConfig   = errors.New("invalid sms config")
	ErrInvalidParams   = errors.New("invalid sms params")
	ErrUnknownDriver   = errors.New("unknown sms driver")
)

// New builds the sender selected by cfg.Driver. opts only apply to the dev sender.
func New(cfg Config, opts ...DevOption) (Sender, error) {
	switch cfg.Driver {
	case DriverTwilio:
		c, err := NewTwilioClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverDev, "":
		return NewDevSender(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
