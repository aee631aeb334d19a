package notification

import (
	"context"
	"fmt"
)

// Sender performs one delivery attempt. It must not touch persisted state;
// any returned error is treated as a transport failure.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

type SenderFunc func(ctx context.Context, n Notification) error

func (f SenderFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Senders maps each channel to its strategy. Adding a channel means adding an entry.
type Senders map[Type]Sender

// For returns ErrUnsupportedType when t has no registered sender.
func (s Senders) For(t Type) (Sender, error) {
	sender, ok := s[t]
	if !ok || sender == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
	return sender, nil
}
