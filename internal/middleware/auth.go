// Package middleware guards routes with either bearer tokens or
// session cookies and places the resolved identity into the request
// context for downstream handlers.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"session-control/internal/auth"
	"session-control/internal/session"
)

const (
	// userIDKey holds the user ID resolved from a bearer token.
	userIDKey = "auth.userID"
	// sessionKey holds the *session.Record resolved from the cookie.
	sessionKey = "auth.session"
)

// UserID returns the bearer-token identity attached by RequireToken.
func UserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}

// SessionRecord returns the session attached by RequireSession or
// WithSession. The second result is false for anonymous requests.
func SessionRecord(c *gin.Context) (*session.Record, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*session.Record)
	return rec, ok
}

// RequireToken rejects requests without a valid Authorization: Bearer
// header. Absent, malformed, invalid, and expired tokens all receive
// the same response body.
func RequireToken(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized"})
			return
		}

		claims, err := svc.VerifyToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// RequireSession rejects requests whose session cookie does not
// resolve to a live record.
func RequireSession(svc *auth.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized"})
			return
		}

		rec, err := svc.Session(c.Request.Context(), sid)
		if err != nil {
			status := http.StatusForbidden
			if errors.Is(err, auth.ErrTransient) {
				status = http.StatusServiceUnavailable
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "not authorized"})
			return
		}

		c.Set(sessionKey, rec)
		c.Next()
	}
}

// WithSession resolves the session cookie best-effort: requests
// without a live session continue anonymously. Backend outages still
// abort, so an unreachable store is never mistaken for anonymity.
func WithSession(svc *auth.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}

		rec, err := svc.SessionIfPresent(c.Request.Context(), sid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session backend unavailable"})
			return
		}
		if rec != nil {
			c.Set(sessionKey, rec)
		}
		c.Next()
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}
	return tok, true
}
