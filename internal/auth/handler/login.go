package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"session-control/internal/session"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the credential, binds a session cookie, and
// returns the bearer token. A second login before logout is refused
// with 409 and leaves the existing session untouched.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	session.SetCookie(c.Writer, res.Session.SessionID, h.svc.SessionTTL(), h.cookie)
	c.JSON(http.StatusOK, gin.H{"accessToken": res.AccessToken})
}
