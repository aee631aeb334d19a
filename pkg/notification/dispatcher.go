package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
)

// Dispatcher runs one delivery attempt and commits its outcome.
//
// It does not serialize attempts on the same id; callers that may race use a lock
// (see pkg/locker) or accept last-writer-wins.
type Dispatcher struct {
	store   Storage
	senders Senders
	opts    options
}

func NewDispatcher(store Storage, senders Senders, opts ...Option) *Dispatcher {
	return &Dispatcher{
		store:   store,
		senders: senders,
		opts:    buildOptions(opts),
	}
}

// DispatchByID loads the record and dispatches it.
func (d *Dispatcher) DispatchByID(ctx context.Context, id string) (Notification, error) {
	n, err := d.store.Get(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	return d.Dispatch(ctx, n)
}

// Dispatch sends n through the sender registered for its type.
//
// ErrUnsupportedType and ErrInvalidState leave the record untouched.
// Otherwise exactly one transition is persisted: SENT on success, FAILED on a
// transport error. A failed attempt returns the persisted record together with
// an error wrapping ErrTransport and the cause.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (Notification, error) {
	log := d.opts.logger.With(
		logger.Component("dispatcher"),
		logger.NotificationID(n.ID),
		logger.Channel(string(n.Type)),
	)

	sender, err := d.senders.For(n.Type)
	if err != nil {
		log.ErrorContext(ctx, "no sender for notification type", logger.Error(err))
		return Notification{}, err
	}
	if !CanFire(n.Status, EventSendSucceeded) {
		return Notification{}, fmt.Errorf("%w: only pending notifications can be dispatched, got %s", ErrInvalidState, n.Status)
	}

	start := d.opts.now()
	sendErr := sender.Send(ctx, n)
	finished := d.opts.now()
	elapsed := finished.Sub(start)

	// The outcome must be recorded even if the caller gave up during the send.
	persistCtx := context.WithoutCancel(ctx)

	if sendErr == nil {
		sent, err := MarkSent(n, finished)
		if err != nil {
			return Notification{}, err
		}
		stored, err := d.store.Update(persistCtx, n.ID, lifecyclePatch(sent))
		if err != nil {
			log.ErrorContext(ctx, "failed to persist sent state", logger.Error(err))
			return Notification{}, fmt.Errorf("persist sent state: %w", err)
		}

		d.opts.metrics.DeliveryAttempted(string(n.Type), metrics.OutcomeSent, elapsed)
		log.InfoContext(ctx, "notification sent", logger.Duration(elapsed), logger.RetryCount(n.RetryCount))
		return stored, nil
	}

	failed, err := MarkFailed(n, sendErr.Error(), finished)
	if err != nil {
		return Notification{}, err
	}
	d.opts.metrics.DeliveryAttempted(string(n.Type), metrics.OutcomeFailed, elapsed)

	stored, err := d.store.Update(persistCtx, n.ID, lifecyclePatch(failed))
	if err != nil {
		log.ErrorContext(ctx, "failed to persist failed state",
			logger.Error(err),
			slog.String("delivery_error", sendErr.Error()),
		)
		return Notification{}, fmt.Errorf("%w: %w (persist failed state: %w)", ErrTransport, sendErr, err)
	}

	log.WarnContext(ctx, "notification delivery failed",
		logger.Error(sendErr),
		logger.Duration(elapsed),
		logger.RetryCount(n.RetryCount),
	)
	return stored, fmt.Errorf("%w: %w", ErrTransport, sendErr)
}
