package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"

	"github.com/dmitrymomot/notifykit/pkg/email"
)

type fakeDialer struct {
	mu   sync.Mutex
	sent []*mail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*mail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func validConfig() email.Config {
	return email.Config{
		SenderEmail: "noreply@example.com",
		SMTPHost:    "smtp.example.com",
		SMTPPort:    587,
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
	}{
		{
			name:   "valid text body",
			params: email.SendEmailParams{SendTo: "a@b.com", Subject: "S", BodyText: "C"},
		},
		{
			name:   "valid html body",
			params: email.SendEmailParams{SendTo: "a@b.com", Subject: "S", BodyHTML: "<p>C</p>"},
		},
		{
			name:    "missing recipient",
			params:  email.SendEmailParams{Subject: "S", BodyText: "C"},
			wantErr: true,
		},
		{
			name:    "malformed recipient",
			params:  email.SendEmailParams{SendTo: "nope", Subject: "S", BodyText: "C"},
			wantErr: true,
		},
		{
			name:    "missing subject",
			params:  email.SendEmailParams{SendTo: "a@b.com", BodyText: "C"},
			wantErr: true,
		},
		{
			name:    "missing body",
			params:  email.SendEmailParams{SendTo: "a@b.com", Subject: "S"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSMTPClient_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("builds plain text message", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		cfg := validConfig()
		cfg.ReplyTo = "support@example.com"
		client, err := email.NewSMTPClientWithDialer(cfg, d)
		require.NoError(t, err)

		err = client.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "a@b.com",
			Subject:  "Maintenance",
			BodyText: "Offline on Sunday",
		})
		require.NoError(t, err)
		require.Len(t, d.sent, 1)

		m := d.sent[0]
		assert.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))
		assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
		assert.Equal(t, []string{"Maintenance"}, m.GetHeader("Subject"))
		assert.Equal(t, []string{"support@example.com"}, m.GetHeader("Reply-To"))

		var raw strings.Builder
		_, err = m.WriteTo(&raw)
		require.NoError(t, err)
		assert.Contains(t, raw.String(), "text/plain")
		assert.Contains(t, raw.String(), "Offline on Sunday")
	})

	t.Run("wraps transport failure", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{err: errors.New("535 authentication failed")}
		client, err := email.NewSMTPClientWithDialer(validConfig(), d)
		require.NoError(t, err)

		err = client.SendEmail(context.Background(), email.SendEmailParams{SendTo: "a@b.com", Subject: "S", BodyText: "C"})
		require.Error(t, err)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.Contains(t, err.Error(), "535 authentication failed")
	})

	t.Run("does not dial for invalid params", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		client, err := email.NewSMTPClientWithDialer(validConfig(), d)
		require.NoError(t, err)

		err = client.SendEmail(context.Background(), email.SendEmailParams{SendTo: "a@b.com"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
		assert.Empty(t, d.sent)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		client, err := email.NewSMTPClientWithDialer(validConfig(), d)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = client.SendEmail(ctx, email.SendEmailParams{SendTo: "a@b.com", Subject: "S", BodyText: "C"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, d.sent)
	})
}

func TestNewSMTPClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.Config)
	}{
		{"missing host", func(c *email.Config) { c.SMTPHost = "" }},
		{"bad port", func(c *email.Config) { c.SMTPPort = 0 }},
		{"missing sender", func(c *email.Config) { c.SenderEmail = "" }},
		{"malformed sender", func(c *email.Config) { c.SenderEmail = "noreply" }},
		{"malformed reply-to", func(c *email.Config) { c.ReplyTo = "support" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			client, err := email.NewSMTPClient(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Nil(t, client)
		})
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.PostmarkServerToken = "server-token"
		client, err := email.NewPostmarkClient(cfg)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("missing server token", func(t *testing.T) {
		t.Parallel()
		client, err := email.NewPostmarkClient(validConfig())
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "PostmarkServerToken is required")
		assert.Nil(t, client)
	})
}

func TestNew_Driver(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Driver = email.DriverSMTP
	sender, err := email.New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &email.SMTPClient{}, sender)

	cfg.Driver = email.DriverDev
	sender, err = email.New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &email.DevSender{}, sender)

	cfg.Driver = "pigeon"
	sender, err = email.New(cfg)
	assert.ErrorIs(t, err, email.ErrUnknownDriver)
	assert.Nil(t, sender)
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "emails")
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "a@b.com",
		Subject:  "Pump #4 / overdue",
		BodyText: "Service pump 4",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var envelopePath, bodyPath string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".json":
			envelopePath = filepath.Join(dir, e.Name())
		case ".txt":
			bodyPath = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, envelopePath)
	require.NotEmpty(t, bodyPath)
	assert.Contains(t, bodyPath, "pump_4__overdue")

	body, err := os.ReadFile(bodyPath)
	require.NoError(t, err)
	assert.Equal(t, "Service pump 4", string(body))

	raw, err := os.ReadFile(envelopePath)
	require.NoError(t, err)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "a@b.com", envelope["send_to"])
	assert.Equal(t, "Pump #4 / overdue", envelope["subject"])
}
