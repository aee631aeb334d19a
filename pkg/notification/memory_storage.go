package notification

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryStorage keeps records in a map. Suitable for development and tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]Notification
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]Notification)}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, n.ID)
	}
	s.data[n.ID] = n.Clone()
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.data[id]
	if !ok {
		return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n.Clone(), nil
}

func (s *MemoryStorage) Update(ctx context.Context, id string, p Patch) (Notification, error) {
	if err := p.Validate(); err != nil {
		return Notification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.data[id]
	if !ok {
		return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated, err := p.Apply(n)
	if err != nil {
		return Notification{}, err
	}
	s.data[id] = updated
	return updated.Clone(), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.data, id)
	return nil
}

func (s *MemoryStorage) FindFailed(ctx context.Context) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0)
	for _, n := range s.data {
		if n.Status == StatusFailed {
			out = append(out, n.Clone())
		}
	}

	slices.SortFunc(out, func(a, b Notification) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
