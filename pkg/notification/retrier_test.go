package notification_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func newRetrier(store notification.Storage, rec *recorder) *notification.Retrier {
	return notification.NewRetrier(store,
		notification.WithLogger(logger.Discard()),
		notification.WithMetrics(rec),
		notification.WithClock(fixedClock(t0)),
	)
}

func TestRetrier_Retry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := notification.NewMemoryStorage()
	rec := newRecorder()
	r := newRetrier(store, rec)

	n := failed(0)
	require.NoError(t, store.Create(ctx, n))

	out, err := r.Retry(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusPending, out.Status)
	assert.Equal(t, 1, out.RetryCount)

	stored, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, out, stored)
	assert.Equal(t, 1, rec.retried["EMAIL"])
}

func TestRetrier_Retry_Rejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := notification.NewMemoryStorage()
	rec := newRecorder()
	r := newRetrier(store, rec)

	p := pending()
	p.ID = "pending"
	exhausted := failed(3)
	exhausted.ID = "exhausted"
	require.NoError(t, store.Create(ctx, p))
	require.NoError(t, store.Create(ctx, exhausted))

	tests := []struct {
		id      string
		wantErr []error
	}{
		{"pending", []error{notification.ErrInvalidState}},
		{"exhausted", []error{notification.ErrInvalidState, notification.ErrRetryLimitExceeded}},
		{"missing", []error{notification.ErrNotFound}},
	}

	for _, tt := range tests {
		before, _ := store.Get(ctx, tt.id)
		_, err := r.Retry(ctx, tt.id)
		for _, want := range tt.wantErr {
			assert.ErrorIs(t, err, want, tt.id)
		}
		after, _ := store.Get(ctx, tt.id)
		assert.Equal(t, before, after, "%s left unchanged", tt.id)
	}
	assert.Empty(t, rec.retried)
}

func TestRetrier_RetryFailed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := notification.NewMemoryStorage()
	r := newRetrier(store, newRecorder())

	for i, count := range []int{0, 3, 1} {
		n := failed(count)
		n.ID = fmt.Sprintf("f-%d", i)
		n.CreatedAt = t0.Add(-time.Duration(10-i) * time.Minute)
		require.NoError(t, store.Create(ctx, n))
	}
	p := pending()
	p.ID = "p-0"
	require.NoError(t, store.Create(ctx, p))

	rearmed, err := r.RetryFailed(ctx)
	require.NoError(t, err)
	require.Len(t, rearmed, 2)
	assert.Equal(t, "f-0", rearmed[0].ID)
	assert.Equal(t, 1, rearmed[0].RetryCount)
	assert.Equal(t, "f-2", rearmed[1].ID)
	assert.Equal(t, 2, rearmed[1].RetryCount)

	remaining, err := store.FindFailed(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "f-1", remaining[0].ID, "exhausted record stays FAILED")
}

func TestRetrier_RetryFailed_PartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbErr := errors.New("write conflict")
	a, b := failed(0), failed(0)
	a.ID, b.ID = "a", "b"

	store := new(MockStorage)
	store.On("FindFailed", mock.Anything).Return([]notification.Notification{a, b}, nil)
	store.On("Update", mock.Anything, "a", mock.Anything).Return(notification.Notification{}, dbErr)
	store.On("Update", mock.Anything, "b", mock.Anything).Return(func() notification.Notification {
		out, _ := notification.Rearm(b, t0)
		return out
	}(), nil)

	rearmed, err := newRetrier(store, newRecorder()).RetryFailed(ctx)
	assert.ErrorIs(t, err, dbErr)
	require.Len(t, rearmed, 1)
	assert.Equal(t, "b", rearmed[0].ID)
	store.AssertExpectations(t)
}
