// Package storage defines the durable-store contract shared by the remote
// (Postgres) and local (SQLite) backends.
package storage

import (
	"context"
	"errors"

	"freelanceflow/internal/project"
)

// Error taxonomy. Adapters wrap these so callers can branch with errors.Is
// regardless of backend.
var (
	// ErrUnavailable means the store could not be reached at all.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrPersistence means the store rejected a write.
	ErrPersistence = errors.New("persistence error")
	// ErrNotFound means the mutation target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was rejected before reaching the store.
	ErrValidation = errors.New("validation rejected")
)

// Adapter is the uniform read/write contract both backends satisfy.
type Adapter interface {
	// FetchAll returns every project ordered by createdAt descending.
	FetchAll(ctx context.Context) ([]project.Project, error)
	// Insert persists a new project and returns the assigned id. The id on
	// the passed project is ignored; each backend has its own id strategy.
	Insert(ctx context.Context, p project.Project) (string, error)
	// Replace overwrites every field of the project with the given id.
	Replace(ctx context.Context, id string, p project.Project) error
	// Remove deletes the project with the given id.
	Remove(ctx context.Context, id string) error
}
