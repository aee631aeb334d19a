package notification

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Field is an optional patch value. The zero Field leaves the stored value untouched.
type Field[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Patch is a partial update. Type and Recipient are immutable and have no field here.
// Metadata keys are merged; a nil value under a key removes it.
type Patch struct {
	Subject      Field[string]
	Content      Field[string]
	Metadata     Field[map[string]any]
	MaxRetries   Field[int]
	Status       Field[Status]
	ErrorMessage Field[string]     // empty value clears
	SentAt       Field[*time.Time] // nil value clears
	RetryCount   Field[int]
	UpdatedAt    time.Time
}

// IsEmpty reports whether p changes nothing besides UpdatedAt.
func (p Patch) IsEmpty() bool {
	return !p.Subject.Set && !p.Content.Set && !p.Metadata.Set && !p.MaxRetries.Set &&
		!p.Status.Set && !p.ErrorMessage.Set && !p.SentAt.Set && !p.RetryCount.Set
}

// Validate checks field formats. It does not know the stored record.
func (p Patch) Validate() error {
	var rules []validator.Rule
	if p.Subject.Set {
		rules = append(rules,
			validator.RequiredString("subject", p.Subject.Value),
			validator.MaxLenString("subject", p.Subject.Value, maxSubjectLength),
		)
	}
	if p.Content.Set {
		rules = append(rules, validator.RequiredString("content", p.Content.Value))
	}
	if p.MaxRetries.Set {
		rules = append(rules, validator.InRange("max_retries", p.MaxRetries.Value, 0, MaxRetriesLimit))
	}
	if p.Metadata.Set {
		rules = append(rules, metadataKeysRule(p.Metadata.Value))
	}
	if p.Status.Set {
		rules = append(rules, validator.OneOf("status", p.Status.Value, []Status{StatusPending, StatusSent, StatusFailed}))
	}
	if p.RetryCount.Set {
		rules = append(rules, validator.InRange("retry_count", p.RetryCount.Value, 0, MaxRetriesLimit))
	}

	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// Apply merges p into n and returns the result. It rejects a decreasing retry count.
func (p Patch) Apply(n Notification) (Notification, error) {
	if p.RetryCount.Set && p.RetryCount.Value < n.RetryCount {
		return Notification{}, fmt.Errorf("%w: retry count cannot decrease from %d to %d",
			ErrInvalidState, n.RetryCount, p.RetryCount.Value)
	}

	out := n.Clone()
	if p.Subject.Set {
		out.Subject = p.Subject.Value
	}
	if p.Content.Set {
		out.Content = p.Content.Value
	}
	if p.Metadata.Set {
		out.Metadata = mergeMetadata(out.Metadata, p.Metadata.Value)
	}
	if p.MaxRetries.Set {
		out.MaxRetries = p.MaxRetries.Value
	}
	if p.Status.Set {
		out.Status = p.Status.Value
	}
	if p.ErrorMessage.Set {
		out.ErrorMessage = p.ErrorMessage.Value
	}
	if p.SentAt.Set {
		out.SentAt = nil
		if p.SentAt.Value != nil {
			t := *p.SentAt.Value
			out.SentAt = &t
		}
	}
	if p.RetryCount.Set {
		out.RetryCount = p.RetryCount.Value
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = p.UpdatedAt
	}
	return out, nil
}

func mergeMetadata(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	} else {
		dst = maps.Clone(dst)
	}
	for k, v := range src {
		if v == nil {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
	if len(dst) == 0 {
		return nil
	}
	return dst
}

// lifecyclePatch carries every field a transition may touch, so the store
// commits the whole snapshot produced by MarkSent, MarkFailed or Rearm.
func lifecyclePatch(n Notification) Patch {
	return Patch{
		Status:       Some(n.Status),
		ErrorMessage: Some(n.ErrorMessage),
		SentAt:       Some(n.SentAt),
		RetryCount:   Some(n.RetryCount),
		UpdatedAt:    n.UpdatedAt,
	}
}
