package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Sessions are lost on
// restart and there is no network failure mode; suitable for a single
// instance only.
type MemoryStore struct {
	log      *slog.Logger
	mu       sync.Mutex
	sessions map[string]*Record
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore returns an empty in-memory store. cleanupInterval
// controls how often expired records are swept; zero disables the
// sweeper (expired records are still dropped on read).
func NewMemoryStore(log *slog.Logger, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		log:      log,
		sessions: make(map[string]*Record),
		stopCh:   make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Expired(time.Now()) {
		delete(s.sessions, sessionID)
		return nil, ErrNotFound
	}

	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) Set(ctx context.Context, rec *Record, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.sessions[rec.SessionID] = &cp
	s.log.Debug("session stored", "session_id", rec.SessionID, "user_id", rec.UserID)
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Close stops the cleanup worker. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) cleanupExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.sessions {
		if rec.Expired(now) {
			delete(s.sessions, id)
			s.log.Debug("expired session swept", "session_id", id)
		}
	}
}
