package notification

import "context"

// Storage owns the canonical state of every notification.
// Get and FindFailed return snapshots the caller may modify freely.
type Storage interface {
	// Create persists a new record. ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, n Notification) error

	// Get returns ErrNotFound when no record matches.
	Get(ctx context.Context, id string) (Notification, error)

	// Update merges p into the stored record and returns the result.
	Update(ctx context.Context, id string, p Patch) (Notification, error)

	// Delete removes the record permanently. ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// FindFailed returns every FAILED record, oldest first.
	FindFailed(ctx context.Context) ([]Notification, error)
}
