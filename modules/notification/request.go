package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	domain "github.com/dmitrymomot/notifykit/pkg/notification"
)

const maxBodyBytes = 1 << 20

var (
	errUnsupportedMediaType = errors.New("unsupported media type")
	errInvalidJSON          = errors.New("invalid JSON")
)

type createRequest struct {
	Type       string         `json:"type"`
	Recipient  string         `json:"recipient"`
	Subject    string         `json:"subject"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	MaxRetries *int           `json:"max_retries,omitempty"`
}

func (r createRequest) params() domain.CreateParams {
	return domain.CreateParams{
		Type:       domain.Type(r.Type),
		Recipient:  r.Recipient,
		Subject:    r.Subject,
		Content:    r.Content,
		Metadata:   r.Metadata,
		MaxRetries: r.MaxRetries,
	}
}

// updateRequest sets only the fields present in the body.
// A metadata key with a null value removes that key.
type updateRequest struct {
	Subject    *string        `json:"subject,omitempty"`
	Content    *string        `json:"content,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	MaxRetries *int           `json:"max_retries,omitempty"`
}

func (r updateRequest) patch() domain.Patch {
	var p domain.Patch
	if r.Subject != nil {
		p.Subject = domain.Some(*r.Subject)
	}
	if r.Content != nil {
		p.Content = domain.Some(*r.Content)
	}
	if r.Metadata != nil {
		p.Metadata = domain.Some(r.Metadata)
	}
	if r.MaxRetries != nil {
		p.MaxRetries = domain.Some(*r.MaxRetries)
	}
	return p
}

// decodeJSON reads exactly one JSON object into v and rejects unknown fields.
func decodeJSON(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: expected application/json", errUnsupportedMediaType)
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidJSON)
		}
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON object", errInvalidJSON)
	}
	return nil
}
