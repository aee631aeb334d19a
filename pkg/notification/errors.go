package notification

import "errors"

var (
	ErrValidation         = errors.New("invalid notification")
	ErrNotFound           = errors.New("notification not found")
	ErrAlreadyExists      = errors.New("notification already exists")
	ErrUnsupportedType    = errors.New("unsupported notification type")
	ErrInvalidState       = errors.New("invalid notification state")
	ErrRetryLimitExceeded = errors.New("retry limit exceeded")
	ErrTransport          = errors.New("notification delivery failed")
)
