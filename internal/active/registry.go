// Package active enforces the single-active-session rule: at most one
// session ID is registered per user at any time. Concurrent logins for
// the same user race through Acquire; exactly one wins.
//
// Reconciliation: a registry entry whose backing session record has
// expired or vanished is treated as absent, so users are never locked
// out after unclean session loss. Both implementations cross-check the
// session store inside their atomic section — the store is the source
// of truth, the registry is only an index.
//
// Callers must persist the session record before calling Acquire:
// the cross-check reads the record of the currently registered session,
// and a not-yet-written record would read as stale.
package active

import (
	"context"
	"errors"
)

// ErrAlreadyActive is returned by Acquire when the user already holds a
// live session.
var ErrAlreadyActive = errors.New("session already active")

// Registry maps a user ID to its single active session ID.
type Registry interface {
	// Acquire registers sessionID as the user's active session, or
	// returns ErrAlreadyActive if a live one is already registered.
	// Atomic per user with respect to concurrent Acquire calls.
	Acquire(ctx context.Context, userID, sessionID string) error
	// Release clears the user's entry. Releasing an absent entry is
	// not an error.
	Release(ctx context.Context, userID string) error
}
