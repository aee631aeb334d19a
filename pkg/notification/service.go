package notification

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Service is the inbound boundary used by transports such as the HTTP module.
type Service struct {
	store      Storage
	dispatcher *Dispatcher
	retrier    *Retrier
	opts       options
}

func NewService(store Storage, senders Senders, opts ...Option) *Service {
	return &Service{
		store:      store,
		dispatcher: NewDispatcher(store, senders, opts...),
		retrier:    NewRetrier(store, opts...),
		opts:       buildOptions(opts),
	}
}

// Create validates p and stores a PENDING record. Nothing is stored on validation failure.
func (s *Service) Create(ctx context.Context, p CreateParams) (Notification, error) {
	now := s.opts.now()
	n, err := NewNotification(p, s.opts.newID(), now)
	if err != nil {
		return Notification{}, err
	}
	if err := s.store.Create(ctx, n); err != nil {
		return Notification{}, err
	}

	s.opts.metrics.NotificationCreated(string(n.Type))
	s.opts.logger.DebugContext(ctx, "notification created",
		logger.Component("service"),
		logger.NotificationID(n.ID),
		logger.Channel(string(n.Type)),
	)
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (Notification, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial update. Lifecycle fields are dropped; they only
// change through Dispatch and Retry.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Notification, error) {
	p.Status = Field[Status]{}
	p.ErrorMessage = Field[string]{}
	p.SentAt = Field[*time.Time]{}
	p.RetryCount = Field[int]{}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.opts.now()
	}
	return s.store.Update(ctx, id, p)
}

func (s *Service) Dispatch(ctx context.Context, id string) (Notification, error) {
	return s.dispatcher.DispatchByID(ctx, id)
}

func (s *Service) Retry(ctx context.Context, id string) (Notification, error) {
	return s.retrier.Retry(ctx, id)
}

func (s *Service) RetryFailed(ctx context.Context) ([]Notification, error) {
	return s.retrier.RetryFailed(ctx)
}

func (s *Service) ListFailed(ctx context.Context) ([]Notification, error) {
	return s.store.FindFailed(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.opts.metrics.NotificationDeleted()
	s.opts.logger.DebugContext(ctx, "notification deleted",
		logger.Component("service"),
		logger.NotificationID(id),
	)
	return nil
}
