package active

import (
	"context"
	"errors"
	"sync"

	"session-control/internal/session"
)

// MemoryRegistry is the in-process registry. A single mutex serializes
// Acquire calls, which makes the check-then-set linearizable; the
// session-store lookup for reconciliation happens inside the critical
// section.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]string // userID -> sessionID
	store   session.Store
}

// NewMemoryRegistry builds a registry that cross-checks entries against
// the given session store.
func NewMemoryRegistry(store session.Store) *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]string),
		store:   store,
	}
}

func (r *MemoryRegistry) Acquire(ctx context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[userID]; ok {
		_, err := r.store.Get(ctx, cur)
		switch {
		case err == nil:
			return ErrAlreadyActive
		case errors.Is(err, session.ErrNotFound):
			// Stale entry: the backing record expired or was lost.
			// Fall through and take over.
		default:
			return err
		}
	}

	r.entries[userID] = sessionID
	return nil
}

func (r *MemoryRegistry) Release(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, userID)
	return nil
}
