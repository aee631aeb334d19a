package notification

import (
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// RFC 5322 caps a header line at 998 characters.
const maxSubjectLength = 998

// CreateParams is the caller-supplied part of a new notification.
type CreateParams struct {
	Type       Type           `json:"type"`
	Recipient  string         `json:"recipient"`
	Subject    string         `json:"subject"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	MaxRetries *int           `json:"max_retries,omitempty"`
}

// Validate checks required fields and the recipient format of the declared channel.
func (p CreateParams) Validate() error {
	rules := []validator.Rule{
		validator.RequiredString("type", string(p.Type)),
		validator.When(p.Type != "", validator.OneOf("type", p.Type, Types)),
		validator.RequiredString("recipient", p.Recipient),
		validator.RequiredString("subject", p.Subject),
		validator.MaxLenString("subject", p.Subject, maxSubjectLength),
		validator.RequiredString("content", p.Content),
	}
	if p.Recipient != "" {
		if rule, ok := recipientRule(p.Type, p.Recipient); ok {
			rules = append(rules, rule)
		}
	}
	if p.MaxRetries != nil {
		rules = append(rules, validator.InRange("max_retries", *p.MaxRetries, 0, MaxRetriesLimit))
	}
	if len(p.Metadata) > 0 {
		rules = append(rules, metadataKeysRule(p.Metadata))
	}

	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// metadataKeysRule rejects keys every store cannot address: empty keys and
// keys containing "." or "$".
func metadataKeysRule(metadata map[string]any) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			for k := range metadata {
				if k == "" || strings.ContainsAny(k, ".$") {
					return false
				}
			}
			return true
		},
		Error: validator.ValidationError{
			Field:   "metadata",
			Message: "keys must be non-empty and must not contain '.' or '$'",
			Code:    "invalid_key",
		},
	}
}

func recipientRule(t Type, recipient string) (validator.Rule, bool) {
	switch t {
	case TypeEmail:
		return validator.ValidEmail("recipient", recipient), true
	case TypeSMS:
		return validator.ValidE164Phone("recipient", recipient), true
	case TypeWebhook:
		return validator.ValidURLWithScheme("recipient", recipient, []string{"http", "https"}), true
	}
	return validator.Rule{}, false
}

// NewNotification validates p and builds a PENDING record with the given id.
func NewNotification(p CreateParams, id string, now time.Time) (Notification, error) {
	if err := p.Validate(); err != nil {
		return Notification{}, err
	}

	maxRetries := DefaultMaxRetries
	if p.MaxRetries != nil {
		maxRetries = *p.MaxRetries
	}

	n := Notification{
		ID:         id,
		Type:       p.Type,
		Recipient:  p.Recipient,
		Subject:    p.Subject,
		Content:    p.Content,
		Status:     StatusPending,
		RetryCount: 0,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(p.Metadata) > 0 {
		n.Metadata = maps.Clone(p.Metadata)
	}
	return n, nil
}
