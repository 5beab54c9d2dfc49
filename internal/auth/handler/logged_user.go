package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"session-control/internal/middleware"
)

// LoggedUser returns the profile stored in the cookie-bound session.
func (h *Handler) LoggedUser(c *gin.Context) {
	rec, ok := middleware.SessionRecord(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	c.JSON(http.StatusOK, rec.LoggedUser)
}
