package notification

import (
	"fmt"
	"time"
)

// Event drives a status change.
type Event string

const (
	EventSendSucceeded Event = "send_succeeded"
	EventSendFailed    Event = "send_failed"
	EventRetry         Event = "retry"
)

// SENT has no outgoing edges.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventSendSucceeded: StatusSent,
		EventSendFailed:    StatusFailed,
	},
	StatusFailed: {
		EventRetry: StatusPending,
	},
}

// CanFire reports whether ev is accepted in status from.
func CanFire(from Status, ev Event) bool {
	_, ok := transitions[from][ev]
	return ok
}

func fire(from Status, ev Event) (Status, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return "", fmt.Errorf("%w: %s not allowed from %s", ErrInvalidState, ev, from)
	}
	return to, nil
}

// MarkSent returns n as delivered at the given time.
func MarkSent(n Notification, at time.Time) (Notification, error) {
	to, err := fire(n.Status, EventSendSucceeded)
	if err != nil {
		return Notification{}, err
	}

	out := n.Clone()
	out.Status = to
	out.SentAt = &at
	out.ErrorMessage = ""
	out.UpdatedAt = at
	return out, nil
}

// MarkFailed returns n as failed with reason recorded. An empty reason is
// replaced so a FAILED record always explains itself.
func MarkFailed(n Notification, reason string, at time.Time) (Notification, error) {
	to, err := fire(n.Status, EventSendFailed)
	if err != nil {
		return Notification{}, err
	}
	if reason == "" {
		reason = "delivery failed"
	}

	out := n.Clone()
	out.Status = to
	out.ErrorMessage = reason
	out.SentAt = nil
	out.UpdatedAt = at
	return out, nil
}

// Rearm moves a failed record back to PENDING and counts the retry.
// The last error message is kept until the next successful delivery.
func Rearm(n Notification, at time.Time) (Notification, error) {
	if n.Status != StatusFailed {
		return Notification{}, fmt.Errorf("%w: only failed notifications can be retried", ErrInvalidState)
	}
	if n.RetryCount >= n.MaxRetries {
		return Notification{}, fmt.Errorf("%w: %w (%d of %d)", ErrInvalidState, ErrRetryLimitExceeded, n.RetryCount, n.MaxRetries)
	}

	to, err := fire(n.Status, EventRetry)
	if err != nil {
		return Notification{}, err
	}

	out := n.Clone()
	out.Status = to
	out.RetryCount++
	out.UpdatedAt = at
	return out, nil
}
