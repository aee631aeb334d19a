package notification

import (
	"maps"
	"time"
)

// Type selects the delivery channel. It never changes after creation.
type Type string

const (
	TypeEmail   Type = "EMAIL"
	TypeSMS     Type = "SMS"
	TypeWebhook Type = "WEBHOOK"
)

// Types lists every channel in a stable order.
var Types = []Type{TypeEmail, TypeSMS, TypeWebhook}

func (t Type) Valid() bool {
	switch t {
	case TypeEmail, TypeSMS, TypeWebhook:
		return true
	}
	return false
}

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

const (
	DefaultMaxRetries = 3
	MaxRetriesLimit   = 100
)

// Notification is a single outbound message and its delivery state.
//
// Values are snapshots. Transitions return a new value and the store commits it;
// nothing mutates a record in place.
type Notification struct {
	ID           string         `json:"id" bson:"_id"`
	Type         Type           `json:"type" bson:"type"`
	Recipient    string         `json:"recipient" bson:"recipient"`
	Subject      string         `json:"subject" bson:"subject"`
	Content      string         `json:"content" bson:"content"`
	Status       Status         `json:"status" bson:"status"`
	ErrorMessage string         `json:"error_message,omitempty" bson:"error_message,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	RetryCount   int            `json:"retry_count" bson:"retry_count"`
	MaxRetries   int            `json:"max_retries" bson:"max_retries"`
	Metadata     map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

// CanRetry reports whether Rearm would accept the record.
func (n Notification) CanRetry() bool {
	return n.Status == StatusFailed && n.RetryCount < n.MaxRetries
}

// Clone returns a copy that shares no mutable state with n.
func (n Notification) Clone() Notification {
	out := n
	if n.SentAt != nil {
		t := *n.SentAt
		out.SentAt = &t
	}
	if n.Metadata != nil {
		out.Metadata = maps.Clone(n.Metadata)
	}
	return out
}
