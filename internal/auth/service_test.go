package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"session-control/internal/active"
	"session-control/internal/auth/credentials"
	"session-control/internal/session"
	"session-control/internal/token"
)

// fakeCreds is an in-memory credential store satisfying CredentialStore.
type fakeCreds struct {
	mu    sync.Mutex
	users map[string]fakeUser
}

type fakeUser struct {
	user credentials.User
	hash string
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{users: make(map[string]fakeUser)}
}

func (f *fakeCreds) FindByUsername(_ context.Context, username string) (*credentials.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.users[username]
	if !ok {
		return nil, "", credentials.ErrNotFound
	}
	u := entry.user
	return &u, entry.hash, nil
}

func (f *fakeCreds) Insert(_ context.Context, username, passwordHash string) (*credentials.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; ok {
		return nil, credentials.ErrExists
	}
	u := credentials.User{
		ID:        "u-" + username,
		Username:  username,
		CreatedAt: time.Now(),
	}
	f.users[username] = fakeUser{user: u, hash: passwordHash}
	return &u, nil
}

// recordingStore wraps a session store and remembers the last Set ID.
type recordingStore struct {
	session.Store
	mu     sync.Mutex
	setIDs []string
}

func (r *recordingStore) Set(ctx context.Context, rec *session.Record, ttl time.Duration) error {
	r.mu.Lock()
	r.setIDs = append(r.setIDs, rec.SessionID)
	r.mu.Unlock()
	return r.Store.Set(ctx, rec, ttl)
}

func (r *recordingStore) lastSetID(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.setIDs, "no session was ever stored")
	return r.setIDs[len(r.setIDs)-1]
}

// failingRegistry refuses every acquire with a backend error.
type failingRegistry struct{ err error }

func (f *failingRegistry) Acquire(context.Context, string, string) error { return f.err }
func (f *failingRegistry) Release(context.Context, string) error         { return nil }

type serviceTestEnv struct {
	svc   *Service
	creds *fakeCreds
	store *recordingStore
}

func newServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mem := session.NewMemoryStore(log, 0)
	t.Cleanup(mem.Close)
	store := &recordingStore{Store: mem}

	tokens, err := token.NewManager(token.Config{})
	require.NoError(t, err)

	creds := newFakeCreds()
	svc := NewService(log, creds, store, active.NewMemoryRegistry(store), tokens, Config{})
	return &serviceTestEnv{svc: svc, creds: creds, store: store}
}

func (e *serviceTestEnv) register(t *testing.T, username, password string) {
	t.Helper()
	_, err := e.svc.Register(context.Background(), username, password)
	require.NoError(t, err)
}

func TestRegisterValidatesAndConflicts(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, "", "pw1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrValidation)

	user, err := env.svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	_, err = env.svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginFailureShapeIsUniform(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()
	env.register(t, "alice", "pw1")

	_, unknownErr := env.svc.Login(ctx, "nobody", "pw1")
	_, wrongErr := env.svc.Login(ctx, "alice", "wrong")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginFailureNeverCreatesSession(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()
	env.register(t, "alice", "pw1")

	_, err := env.svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, env.store.setIDs, "failed login must not bind a session")
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()
	env.register(t, "alice", "pw1")

	res, err := env.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "alice", res.Session.LoggedUser.Username)

	claims, err := env.svc.VerifyToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID, claims.UserID)

	rec, err := env.svc.Session(ctx, res.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID, rec.UserID)
}

func TestSecondLoginRefusedAndLeavesNoOrphan(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()
	env.register(t, "alice", "pw1")

	first, err := env.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = env.svc.Login(ctx, "alice", "pw1")
	require.ErrorIs(t, err, ErrSessionActive)

	// The refused login's provisional record must be gone.
	orphan := env.store.lastSetID(t)
	require.NotEqual(t, first.Session.SessionID, orphan)
	_, err = env.svc.Session(ctx, orphan)
	assert.ErrorIs(t, err, ErrNoSession)

	// The winning session is untouched.
	_, err = env.svc.Session(ctx, first.Session.SessionID)
	assert.NoError(t, err)
}

func TestLogoutIsIdempotentAndFreesTheUser(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()
	env.register(t, "alice", "pw1")

	res, err := env.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, res.Session.SessionID))
	require.NoError(t, env.svc.Logout(ctx, res.Session.SessionID), "second logout must not error")

	// And the user can log in again.
	_, err = env.svc.Login(ctx, "alice", "pw1")
	assert.NoError(t, err)
}

func TestRegistryFailureRollsBackSession(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := session.NewMemoryStore(log, 0)
	t.Cleanup(mem.Close)
	store := &recordingStore{Store: mem}

	tokens, err := token.NewManager(token.Config{})
	require.NoError(t, err)

	creds := newFakeCreds()
	reg := &failingRegistry{err: active.ErrRegistryUnavailable}
	svc := NewService(log, creds, store, reg, tokens, Config{})

	ctx := context.Background()
	_, err = svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "pw1")
	require.ErrorIs(t, err, ErrTransient)

	// The provisional record was compensated away.
	orphan := store.lastSetID(t)
	_, err = svc.Session(ctx, orphan)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStaleSessionDoesNotLockUserOut(t *testing.T) {
	env := newServiceTest(t)
	ctx := context.Background()
	env.register(t, "alice", "pw1")

	res, err := env.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	// Simulate unclean session loss: the record vanishes without a
	// logout, leaving the registry entry behind.
	require.NoError(t, env.store.Destroy(ctx, res.Session.SessionID))

	_, err = env.svc.Login(ctx, "alice", "pw1")
	assert.NoError(t, err, "stale registry entry must not block login")
}

// slowCreds blocks until the caller's context expires.
type slowCreds struct{}

func (slowCreds) FindByUsername(ctx context.Context, _ string) (*credentials.User, string, error) {
	<-ctx.Done()
	return nil, "", ctx.Err()
}

func (slowCreds) Insert(ctx context.Context, _, _ string) (*credentials.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBackendTimeoutMapsToTransient(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := session.NewMemoryStore(log, 0)
	t.Cleanup(mem.Close)

	tokens, err := token.NewManager(token.Config{})
	require.NoError(t, err)

	svc := NewService(log, slowCreds{}, mem, active.NewMemoryRegistry(mem), tokens, Config{
		OpTimeout: 10 * time.Millisecond,
	})

	_, err = svc.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, ErrTransient)
}
