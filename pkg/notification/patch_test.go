package notification_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func TestPatch_Apply(t *testing.T) {
	t.Parallel()

	in := pending()
	in.Metadata = map[string]any{"asset": "pump-4", "site": "north"}
	later := t0.Add(time.Hour)

	out, err := notification.Patch{
		Subject:   notification.Some("Pump 4 overdue"),
		Metadata:  notification.Some(map[string]any{"site": nil, "priority": "high"}),
		UpdatedAt: later,
	}.Apply(in)
	require.NoError(t, err)

	assert.Equal(t, "Pump 4 overdue", out.Subject)
	assert.Equal(t, "C", out.Content, "unset fields are kept")
	assert.Equal(t, map[string]any{"asset": "pump-4", "priority": "high"}, out.Metadata)
	assert.Equal(t, later, out.UpdatedAt)
	assert.Equal(t, "north", in.Metadata["site"], "input is not mutated")
}

func TestPatch_Apply_ClearsLifecycleFields(t *testing.T) {
	t.Parallel()

	sentAt := t0
	in := pending()
	in.ErrorMessage = "boom"
	in.SentAt = &sentAt

	out, err := notification.Patch{
		ErrorMessage: notification.Some(""),
		SentAt:       notification.Some[*time.Time](nil),
	}.Apply(in)
	require.NoError(t, err)
	assert.Empty(t, out.ErrorMessage)
	assert.Nil(t, out.SentAt)
	assert.Equal(t, in.UpdatedAt, out.UpdatedAt, "zero UpdatedAt keeps the stored value")
}

func TestPatch_Apply_RetryCountNeverDecreases(t *testing.T) {
	t.Parallel()

	_, err := notification.Patch{RetryCount: notification.Some(1)}.Apply(failed(2))
	assert.ErrorIs(t, err, notification.ErrInvalidState)

	out, err := notification.Patch{RetryCount: notification.Some(2)}.Apply(failed(2))
	require.NoError(t, err)
	assert.Equal(t, 2, out.RetryCount)
}

func TestPatch_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		patch   notification.Patch
		wantErr bool
	}{
		{"empty", notification.Patch{}, false},
		{"subject", notification.Patch{Subject: notification.Some("x")}, false},
		{"blank subject", notification.Patch{Subject: notification.Some(" ")}, true},
		{"blank content", notification.Patch{Content: notification.Some("")}, true},
		{"bad status", notification.Patch{Status: notification.Some[notification.Status]("ARCHIVED")}, true},
		{"negative max retries", notification.Patch{MaxRetries: notification.Some(-1)}, true},
		{"max retries ok", notification.Patch{MaxRetries: notification.Some(5)}, false},
		{"metadata removal ok", notification.Patch{Metadata: notification.Some(map[string]any{"site_id": nil})}, false},
		{"metadata dotted key", notification.Patch{Metadata: notification.Some(map[string]any{"a.b": 1})}, true},
		{"metadata dollar key", notification.Patch{Metadata: notification.Some(map[string]any{"$set": 1})}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, notification.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.True(t, notification.Patch{}.IsEmpty())
	assert.True(t, notification.Patch{UpdatedAt: t0}.IsEmpty())
	assert.False(t, notification.Patch{Content: notification.Some("x")}.IsEmpty())
}
