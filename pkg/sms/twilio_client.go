package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// MessageCreator is the part of the Twilio v2010 API the client relies on.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioClient sends messages through the Twilio Messaging API.
type TwilioClient struct {
	api  MessageCreator
	from string
}

// NewTwilioClient validates cfg and builds a client backed by a shared Twilio REST client.
func NewTwilioClient(cfg Config) (*TwilioClient, error) {
	if cfg.TwilioAccountSID == "" {
		return nil, fmt.Errorf("%w: TwilioAccountSID is required", ErrInvalidConfig)
	}
	if cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("%w: TwilioAuthToken is required", ErrInvalidConfig)
	}

	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return NewTwilioClientWithAPI(rc.Api, cfg.FromNumber)
}

// NewTwilioClientWithAPI builds a client around any MessageCreator.
func NewTwilioClientWithAPI(api MessageCreator, from string) (*TwilioClient, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: api is required", ErrInvalidConfig)
	}
	if err := validator.Apply(validator.ValidE164Phone("from_number", from)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &TwilioClient{api: api, from: from}, nil
}

func (c *TwilioClient) SendSMS(ctx context.Context, params SendSMSParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendSMS, err)
	}

	req := &openapi.CreateMessageParams{}
	req.SetTo(params.To)
	req.SetFrom(c.from)
	req.SetBody(params.Body)

	resp, err := c.api.CreateMessage(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendSMS, err)
	}

	if resp != nil && resp.Status != nil {
		switch *resp.Status {
		case "failed", "undelivered":
			msg := *resp.Status
			if resp.ErrorMessage != nil {
				msg = *resp.ErrorMessage
			}
			return fmt.Errorf("%w: twilio message %s: %s", ErrFailedToSendSMS, deref(resp.Sid), msg)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
