package locker

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLocked   = errors.New("resource is locked")
	ErrNotHeld  = errors.New("lock is not held")
	ErrEmptyKey = errors.New("lock key is required")
)

// Locker grants exclusive, expiring leases on string keys.
type Locker interface {
	// Acquire returns ErrLocked when another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock. Releasing an expired or stolen lease returns ErrNotHeld.
type Lease interface {
	Release(ctx context.Context) error
}
