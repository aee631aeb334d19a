package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Retrier re-arms failed notifications. It never dispatches; redelivery is a
// separate call so re-arming and sending can be scheduled independently.
type Retrier struct {
	store Storage
	opts  options
}

func NewRetrier(store Storage, opts ...Option) *Retrier {
	return &Retrier{store: store, opts: buildOptions(opts)}
}

// Retry moves a FAILED record back to PENDING and increments its retry count.
// Fails with ErrInvalidState for any other status and, wrapped alongside it,
// ErrRetryLimitExceeded once retryCount reaches maxRetries.
func (r *Retrier) Retry(ctx context.Context, id string) (Notification, error) {
	n, err := r.store.Get(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	return r.rearm(ctx, n)
}

// RetryFailed re-arms every FAILED record that still has retries left and
// returns the re-armed records. Exhausted records are skipped. A failure on
// one record does not stop the rest; all such errors are joined.
func (r *Retrier) RetryFailed(ctx context.Context) ([]Notification, error) {
	failed, err := r.store.FindFailed(ctx)
	if err != nil {
		return nil, err
	}

	rearmed := make([]Notification, 0, len(failed))
	var errs []error
	for _, n := range failed {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !n.CanRetry() {
			continue
		}

		updated, err := r.rearm(ctx, n)
		if err != nil {
			errs = append(errs, fmt.Errorf("retry %s: %w", n.ID, err))
			continue
		}
		rearmed = append(rearmed, updated)
	}

	r.opts.logger.InfoContext(ctx, "failed notifications re-armed",
		logger.Component("retrier"),
		logger.Count(len(rearmed)),
	)
	return rearmed, errors.Join(errs...)
}

func (r *Retrier) rearm(ctx context.Context, n Notification) (Notification, error) {
	next, err := Rearm(n, r.opts.now())
	if err != nil {
		return Notification{}, err
	}

	stored, err := r.store.Update(ctx, n.ID, lifecyclePatch(next))
	if err != nil {
		return Notification{}, fmt.Errorf("persist retry: %w", err)
	}

	r.opts.metrics.NotificationRetried(string(n.Type))
	r.opts.logger.InfoContext(ctx, "notification re-armed",
		logger.Component("retrier"),
		logger.NotificationID(n.ID),
		logger.Channel(string(n.Type)),
		logger.RetryCount(stored.RetryCount),
	)
	return stored, nil
}
