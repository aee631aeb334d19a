package notification_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Create(ctx context.Context, n notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockStorage) Get(ctx context.Context, id string) (notification.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(notification.Notification), args.Error(1)
}

func (m *MockStorage) Update(ctx context.Context, id string, p notification.Patch) (notification.Notification, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(notification.Notification), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) FindFailed(ctx context.Context) ([]notification.Notification, error) {
	args := m.Called(ctx)
	return args.Get(0).([]notification.Notification), args.Error(1)
}

// recorder counts metric calls.
type recorder struct {
	mu       sync.Mutex
	created  map[string]int
	attempts map[string]int
	retried  map[string]int
	deleted  int
}

func newRecorder() *recorder {
	return &recorder{
		created:  map[string]int{},
		attempts: map[string]int{},
		retried:  map[string]int{},
	}
}

func (r *recorder) NotificationCreated(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created[channel]++
}

func (r *recorder) DeliveryAttempted(channel string, outcome metrics.Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[channel+"/"+string(outcome)]++
}

func (r *recorder) NotificationRetried(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retried[channel]++
}

func (r *recorder) NotificationDeleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted++
}

// stubSender records every notification it was asked to send.
type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []notification.Notification
}

func (s *stubSender) Send(_ context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *stubSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
