package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"session-control/internal/session"
)

// Logout releases the active-session entry and destroys the session
// record. It is idempotent: a request without a live session still
// answers 200. Store failures answer 500 so the client knows the
// session may survive.
func (h *Handler) Logout(c *gin.Context) {
	sid, err := c.Cookie(h.cookie.Name)
	if err != nil || sid == "" {
		c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), sid); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	session.ClearCookie(c.Writer, h.cookie)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
