package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifykit/pkg/locker"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	domain "github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Response is the envelope of every JSON body this module writes.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func listResponse(items []domain.Notification) Response {
	if items == nil {
		items = []domain.Notification{}
	}
	return Response{Data: items, Meta: map[string]any{"count": len(items)}}
}

func writeList(w http.ResponseWriter, status int, items []domain.Notification) {
	writeJSON(w, status, listResponse(items))
}

// errorStatus maps domain errors onto HTTP status codes and stable error codes.
func errorStatus(err error) (int, *ErrorDetail) {
	detail := &ErrorDetail{Code: "internal_error", Message: err.Error()}

	switch {
	case errors.Is(err, domain.ErrValidation):
		detail.Code = "validation_error"
		if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
			detail.Details = ve.Map()
		}
		return http.StatusUnprocessableEntity, detail
	case errors.Is(err, errUnsupportedMediaType):
		detail.Code = "unsupported_media_type"
		return http.StatusUnsupportedMediaType, detail
	case errors.Is(err, errInvalidJSON):
		detail.Code = "invalid_json"
		return http.StatusBadRequest, detail
	case errors.Is(err, domain.ErrNotFound):
		detail.Code = "not_found"
		return http.StatusNotFound, detail
	case errors.Is(err, domain.ErrAlreadyExists):
		detail.Code = "already_exists"
		return http.StatusConflict, detail
	case errors.Is(err, domain.ErrRetryLimitExceeded):
		detail.Code = "retry_limit_exceeded"
		return http.StatusConflict, detail
	case errors.Is(err, domain.ErrInvalidState):
		detail.Code = "invalid_state"
		return http.StatusConflict, detail
	case errors.Is(err, locker.ErrLocked):
		detail.Code = "locked"
		return http.StatusLocked, detail
	case errors.Is(err, domain.ErrUnsupportedType):
		detail.Code = "configuration_error"
		return http.StatusInternalServerError, detail
	case errors.Is(err, domain.ErrTransport):
		detail.Code = "delivery_failed"
		return http.StatusBadGateway, detail
	}

	detail.Message = http.StatusText(http.StatusInternalServerError)
	return http.StatusInternalServerError, detail
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.failWithRecord(w, r, err, domain.Notification{})
}

// failWithRecord writes the error envelope. A non-zero record goes into data,
// so a failed delivery still shows the stored FAILED state.
func (h *Handler) failWithRecord(w http.ResponseWriter, r *http.Request, err error, n domain.Notification) {
	status, detail := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
			logger.Component("http"),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			logger.Error(err),
		)
	}

	body := Response{Error: detail}
	if n.ID != "" {
		body.Data = n
	}
	writeJSON(w, status, body)
}
