package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"session-control/internal/active"
	"session-control/internal/auth"
	"session-control/internal/auth/credentials"
	"session-control/internal/session"
	"session-control/internal/token"
)

type noCreds struct{}

func (noCreds) FindByUsername(context.Context, string) (*credentials.User, string, error) {
	return nil, "", credentials.ErrNotFound
}

func (noCreds) Insert(context.Context, string, string) (*credentials.User, error) {
	return nil, credentials.ErrExists
}

// brokenStore simulates a session backend outage.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*session.Record, error) {
	return nil, session.ErrStoreUnavailable
}

func (brokenStore) Set(context.Context, *session.Record, time.Duration) error {
	return session.ErrStoreUnavailable
}

func (brokenStore) Destroy(context.Context, string) error {
	return session.ErrStoreUnavailable
}

func newService(t *testing.T, store session.Store) *auth.Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := token.NewManager(token.Config{})
	require.NoError(t, err)
	return auth.NewService(log, noCreds{}, store, active.NewMemoryRegistry(store), tokens, auth.Config{})
}

func seedSession(t *testing.T, store session.Store, userID string) *session.Record {
	t.Helper()
	rec, err := session.New(userID, session.Profile{ID: userID, Username: "alice"}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), rec, time.Hour))
	return rec
}

func whoAmI(c *gin.Context) {
	if rec, ok := SessionRecord(c); ok {
		c.JSON(http.StatusOK, gin.H{"user": rec.LoggedUser.Username})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": "anonymous"})
}

func serve(router *gin.Engine, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWithSessionAllowsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewMemoryStore(log, 0)
	t.Cleanup(store.Close)
	svc := newService(t, store)

	router := gin.New()
	router.GET("/whoami", WithSession(svc, session.DefaultCookieName), whoAmI)

	// No cookie: anonymous read succeeds.
	w := serve(router, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Dead cookie: still anonymous, not an error.
	w = serve(router, &http.Cookie{Name: session.DefaultCookieName, Value: "gone"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Live cookie: identity attached.
	rec := seedSession(t, store, "u-1")
	w = serve(router, &http.Cookie{Name: session.DefaultCookieName, Value: rec.SessionID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestWithSessionSurfacesOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(t, brokenStore{})

	router := gin.New()
	router.GET("/whoami", WithSession(svc, session.DefaultCookieName), whoAmI)

	// An unreachable backend must not read as anonymity.
	w := serve(router, &http.Cookie{Name: session.DefaultCookieName, Value: "sid"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequireSessionRejectsMissingAndDead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewMemoryStore(log, 0)
	t.Cleanup(store.Close)
	svc := newService(t, store)

	router := gin.New()
	router.GET("/whoami", RequireSession(svc, session.DefaultCookieName), whoAmI)

	w := serve(router, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, &http.Cookie{Name: session.DefaultCookieName, Value: "gone"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	rec := seedSession(t, store, "u-1")
	w = serve(router, &http.Cookie{Name: session.DefaultCookieName, Value: rec.SessionID})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireTokenAttachesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewMemoryStore(log, 0)
	t.Cleanup(store.Close)

	tokens, err := token.NewManager(token.Config{})
	require.NoError(t, err)
	svc := auth.NewService(log, noCreds{}, store, active.NewMemoryRegistry(store), tokens, auth.Config{})

	router := gin.New()
	router.GET("/id", RequireToken(svc), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tok, err := tokens.Issue("u-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-42")
}
