package webhook_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/webhook"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	secret := "whsec_test"
	payload := []byte(`{"subject":"S","content":"C"}`)
	now := time.Unix(1_700_000_000, 0)

	sig, err := webhook.Sign(secret, "delivery-1", now, payload)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), sig.Timestamp)
	assert.Equal(t, "delivery-1", sig.ID)
	assert.Len(t, sig.Value, 64)

	tests := []struct {
		name    string
		secret  string
		payload []byte
		sig     webhook.Signature
		now     time.Time
		wantErr error
	}{
		{"valid", secret, payload, sig, now.Add(time.Minute), nil},
		{"wrong secret", "other", payload, sig, now, webhook.ErrInvalidSignature},
		{"tampered payload", secret, []byte(`{"subject":"X"}`), sig, now, webhook.ErrInvalidSignature},
		{"expired", secret, payload, sig, now.Add(10 * time.Minute), webhook.ErrInvalidSignature},
		{"future timestamp", secret, payload, sig, now.Add(-5 * time.Minute), webhook.ErrInvalidSignature},
		{"missing value", secret, payload, webhook.Signature{Timestamp: sig.Timestamp}, now, webhook.ErrInvalidSignature},
		{"missing secret", "", payload, sig, now, webhook.ErrMissingSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := webhook.Verify(tt.secret, tt.payload, tt.sig, 5*time.Minute, tt.now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSign_Errors(t *testing.T) {
	t.Parallel()

	_, err := webhook.Sign("", "id", time.Now(), []byte("x"))
	assert.ErrorIs(t, err, webhook.ErrMissingSecret)

	_, err = webhook.Sign("secret", "id", time.Now(), nil)
	assert.ErrorIs(t, err, webhook.ErrInvalidPayload)
}

func TestParseSignature(t *testing.T) {
	t.Parallel()

	sig, err := webhook.Sign("secret", "delivery-2", time.Now(), []byte("{}"))
	require.NoError(t, err)

	h := make(http.Header)
	sig.Apply(h)

	parsed, err := webhook.ParseSignature(h)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	h.Set(webhook.HeaderTimestamp, "yesterday")
	_, err = webhook.ParseSignature(h)
	assert.ErrorIs(t, err, webhook.ErrInvalidSignature)

	_, err = webhook.ParseSignature(http.Header{})
	assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
}
