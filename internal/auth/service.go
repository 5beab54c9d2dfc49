// Package auth orchestrates the authentication lifecycle: register,
// login with single-active-session enforcement, logout, and the two
// session-recall modes. Every failure branch terminates the flow; no
// session or token is ever produced past a failed check.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"session-control/internal/active"
	"session-control/internal/auth/credentials"
	"session-control/internal/session"
	"session-control/internal/token"
)

// CredentialStore is the contract this package needs from the external
// credential service. The password hash is returned opaque; comparison
// happens here.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*credentials.User, string, error)
	Insert(ctx context.Context, username, passwordHash string) (*credentials.User, error)
}

const (
	// DefaultSessionTTL is the fixed server-side session lifetime.
	DefaultSessionTTL = time.Hour
	// DefaultOpTimeout bounds every outbound call to the credential
	// store or session backend.
	DefaultOpTimeout = 5 * time.Second
)

// Config tunes the flow controller.
type Config struct {
	SessionTTL time.Duration
	OpTimeout  time.Duration
}

// LoginResult is what a successful login hands back to the transport
// layer: the bearer token for the response body and the session record
// whose ID goes into the cookie.
type LoginResult struct {
	AccessToken string
	Session     *session.Record
}

// Service is the authentication flow controller. It holds no mutable
// state of its own; all shared state lives in the injected store and
// registry, so a single instance serves all requests concurrently.
type Service struct {
	log        *slog.Logger
	creds      CredentialStore
	sessions   session.Store
	registry   active.Registry
	tokens     *token.Manager
	sessionTTL time.Duration
	opTimeout  time.Duration
}

// NewService wires the flow controller. Zero config fields fall back
// to the package defaults.
func NewService(
	log *slog.Logger,
	creds CredentialStore,
	sessions session.Store,
	registry active.Registry,
	tokens *token.Manager,
	cfg Config,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}

	return &Service{
		log:        log,
		creds:      creds,
		sessions:   sessions,
		registry:   registry,
		tokens:     tokens,
		sessionTTL: cfg.SessionTTL,
		opTimeout:  cfg.OpTimeout,
	}
}

// SessionTTL exposes the configured session lifetime so the transport
// layer can align the cookie max-age with it.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Register creates a credential. The password is stored only as a
// bcrypt hash and is never logged.
func (s *Service) Register(ctx context.Context, username, password string) (*credentials.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password", ErrValidation)
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.creds.Insert(opCtx, username, hash)
	if err != nil {
		if errors.Is(err, credentials.ErrExists) {
			return nil, ErrUserExists
		}
		return nil, s.transient("register", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login runs the full login path: credential check, session creation,
// active-session acquisition, token issuance. The session record is
// written before the registry is acquired so the registry's liveness
// cross-check never observes a half-created login; if the registry
// refuses, the provisional record is destroyed before returning and no
// cookie or token ever leaves this function.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	user, hash, err := s.creds.FindByUsername(opCtx, username)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.transient("login lookup", err)
	}

	if !credentials.VerifyPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}

	rec, err := session.New(user.ID, session.Profile{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, s.sessionTTL)
	if err != nil {
		return nil, s.transient("create session", err)
	}

	if err := s.sessions.Set(opCtx, rec, s.sessionTTL); err != nil {
		return nil, s.transient("store session", err)
	}

	if err := s.registry.Acquire(opCtx, user.ID, rec.SessionID); err != nil {
		s.discardSession(opCtx, rec.SessionID)
		if errors.Is(err, active.ErrAlreadyActive) {
			return nil, ErrSessionActive
		}
		return nil, s.transient("acquire active session", err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		// Roll back both sides so no registry entry outlives its record.
		if relErr := s.registry.Release(opCtx, user.ID); relErr != nil {
			s.log.Error("rollback release failed", "user_id", user.ID, "err", relErr)
		}
		s.discardSession(opCtx, rec.SessionID)
		return nil, s.transient("issue token", err)
	}

	s.log.Info("login succeeded", "user_id", user.ID, "session_id", rec.SessionID)
	return &LoginResult{AccessToken: tok, Session: rec}, nil
}

// Logout resolves the session bound to sessionID, releases the user's
// active-session entry, and destroys the record. It is idempotent: an
// already-gone session and a missing registry entry both succeed.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	rec, err := s.sessions.Get(opCtx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil
		}
		return s.transient("logout lookup", err)
	}

	if err := s.registry.Release(opCtx, rec.UserID); err != nil {
		return s.transient("release active session", err)
	}

	if err := s.sessions.Destroy(opCtx, sessionID); err != nil {
		return s.transient("destroy session", err)
	}

	s.log.Info("logout completed", "user_id", rec.UserID, "session_id", sessionID)
	return nil
}

// Session resolves a session cookie in require mode: a missing or
// expired record is ErrNoSession.
func (s *Service) Session(ctx context.Context, sessionID string) (*session.Record, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	rec, err := s.sessions.Get(opCtx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, s.transient("session lookup", err)
	}
	return rec, nil
}

// SessionIfPresent resolves a session cookie in best-effort mode: a
// missing record is simply a nil result, but backend outages still
// surface as errors.
func (s *Service) SessionIfPresent(ctx context.Context, sessionID string) (*session.Record, error) {
	rec, err := s.Session(ctx, sessionID)
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	return rec, err
}

// VerifyToken resolves a bearer token to the user identity claim.
func (s *Service) VerifyToken(tokenStr string) (*token.Claims, error) {
	return s.tokens.Verify(tokenStr)
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Service) discardSession(ctx context.Context, sessionID string) {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		s.log.Error("rollback destroy failed", "session_id", sessionID, "err", err)
	}
}

func (s *Service) transient(op string, err error) error {
	s.log.Error(op+" failed", "err", err)
	return fmt.Errorf("%w: %s: %v", ErrTransient, op, err)
}
