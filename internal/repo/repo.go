// Package repo owns the canonical in-memory project list and its
// synchronization with durable storage. Every successful mutation is followed
// by a full re-fetch from the adapter; the cache is never patched in place.
package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"freelanceflow/internal/logx"
	"freelanceflow/internal/project"
	"freelanceflow/internal/storage"
)

var repoLogger = logx.GetScope("repo")

// ErrNotConfirmed is returned when Delete is called without the explicit
// confirmation gate having been passed.
var ErrNotConfirmed = errors.New("delete not confirmed")

type confirmKey struct{}

// WithDeleteConfirmation marks the context as carrying an explicit user
// confirmation for a destructive delete. The gate lives at the interaction
// boundary; Delete refuses to touch the adapter without it.
func WithDeleteConfirmation(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmKey{}, true)
}

func deleteConfirmed(ctx context.Context) bool {
	ok, _ := ctx.Value(confirmKey{}).(bool)
	return ok
}

// PaidHook is invoked after a successful create or update whose resulting
// payment status is Paid. Used to trigger invoice generation.
type PaidHook func(project.Project)

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the createdAt time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithPaidHook registers the paid-project callback.
func WithPaidHook(h PaidHook) Option {
	return func(r *Repository) { r.onPaid = h }
}

// Repository synchronizes an in-memory project list with a storage adapter.
// Reads return snapshots; writes serialize on the mutex and always reconcile
// against the store afterwards.
type Repository struct {
	adapter storage.Adapter
	now     func() time.Time
	onPaid  PaidHook

	mu       sync.RWMutex
	projects []project.Project
}

// New builds a Repository over the given adapter.
func New(adapter storage.Adapter, opts ...Option) *Repository {
	r := &Repository{adapter: adapter, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// List re-fetches the full set from the adapter. On adapter failure the
// prior in-memory list is retained and returned alongside the error, so a
// caller can keep showing stale-but-available data.
func (r *Repository) List(ctx context.Context) ([]project.Project, error) {
	fetched, err := r.adapter.FetchAll(ctx)
	if err != nil {
		repoLogger.Warn("list: adapter fetch failed, serving stale list", zap.Error(err))
		return r.Snapshot(), fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	r.mu.Lock()
	r.projects = fetched
	r.mu.Unlock()
	return r.Snapshot(), nil
}

// Snapshot returns a copy of the current in-memory list without touching the
// adapter.
func (r *Repository) Snapshot() []project.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]project.Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Get returns the cached project with the given id.
func (r *Repository) Get(id string) (project.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.projects {
		if p.ID == id {
			return p, true
		}
	}
	return project.Project{}, false
}

// Create normalizes the input, stamps createdAt, persists it, and reconciles
// the full list from the store (the backend may assign ids or defaults the
// cache cannot predict). On adapter failure the in-memory state is unchanged.
func (r *Repository) Create(ctx context.Context, in project.Input) (project.Project, error) {
	norm := in.Normalize()
	p := norm.Materialize("", r.now())

	id, err := r.adapter.Insert(ctx, p)
	if err != nil {
		return project.Project{}, fmt.Errorf("%w: create: %v", storage.ErrPersistence, err)
	}
	p.ID = id

	if _, err := r.List(ctx); err != nil {
		// The write landed; only the refresh failed. Surface the stale list.
		repoLogger.Warn("create: post-write refresh failed", zap.Error(err))
	}
	r.firePaid(p)
	repoLogger.Info("project created", zap.String("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// Update replaces the record with the given id. The original createdAt is
// preserved; it is never overwritten on edit.
func (r *Repository) Update(ctx context.Context, id string, in project.Input) error {
	prior, ok := r.Get(id)
	if !ok {
		// The cache may predate an insert from another session; re-sync once
		// before giving up.
		if _, err := r.List(ctx); err == nil {
			prior, ok = r.Get(id)
		}
		if !ok {
			return fmt.Errorf("%w: project %s", storage.ErrNotFound, id)
		}
	}

	norm := in.Normalize()
	p := norm.Materialize(id, prior.CreatedAt)

	if err := r.adapter.Replace(ctx, id, p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: update: %v", storage.ErrPersistence, err)
	}

	if _, err := r.List(ctx); err != nil {
		repoLogger.Warn("update: post-write refresh failed", zap.Error(err))
	}
	r.firePaid(p)
	repoLogger.Info("project updated", zap.String("id", id))
	return nil
}

// Delete removes the record with the given id. The context must carry an
// explicit confirmation (WithDeleteConfirmation); unconfirmed calls are
// refused before any destructive call is issued.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if !deleteConfirmed(ctx) {
		return ErrNotConfirmed
	}

	if err := r.adapter.Remove(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete: %v", storage.ErrPersistence, err)
	}

	if _, err := r.List(ctx); err != nil {
		repoLogger.Warn("delete: post-write refresh failed", zap.Error(err))
	}
	repoLogger.Info("project deleted", zap.String("id", id))
	return nil
}

func (r *Repository) firePaid(p project.Project) {
	if r.onPaid != nil && p.PaymentStatus == project.PaymentPaid {
		r.onPaid(p)
	}
}
