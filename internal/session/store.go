// Package session provides the session record model and the pluggable
// stores that persist records between requests. Two backends satisfy
// the same contract: an in-process map for single-instance deployments
// and a Redis-backed store for anything shared.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no live record exists for a session ID.
var ErrNotFound = errors.New("session not found")

// ErrStoreUnavailable wraps backend failures (network, serialization).
// It is never collapsed into ErrNotFound: an unreachable backend must
// surface as an explicit error, not as an empty session.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the session persistence contract. Implementations must be
// safe for concurrent use from multiple request handlers and must treat
// expired records as absent.
type Store interface {
	// Get returns the live record for sessionID, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*Record, error)
	// Set persists the record under its SessionID for ttl.
	Set(ctx context.Context, rec *Record, ttl time.Duration) error
	// Destroy removes the record. Destroying an absent session is not
	// an error.
	Destroy(ctx context.Context, sessionID string) error
}

const idSize = 32 // 256 bits of entropy

// NewID generates a cryptographically random, unguessable session
// identifier encoded as unpadded base64url.
func NewID() (string, error) {
	b := make([]byte, idSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New assembles a record for a freshly authenticated user.
func New(userID string, profile Profile, ttl time.Duration) (*Record, error) {
	sid, err := NewID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Record{
		SessionID:  sid,
		UserID:     userID,
		LoggedUser: profile,
		CreatedAt:  now.Unix(),
		ExpiresAt:  now.Add(ttl).Unix(),
	}, nil
}
