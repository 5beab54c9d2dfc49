// Package handler exposes the authentication flows over HTTP. All
// status mapping from the error taxonomy lives here; the flows
// themselves never see HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"session-control/internal/auth"
	"session-control/internal/middleware"
	"session-control/internal/session"
)

// Handler carries the flow controller and cookie policy into the gin
// handlers.
type Handler struct {
	log    *slog.Logger
	svc    *auth.Service
	cookie session.CookieOptions
}

// New builds the HTTP handler set.
func New(log *slog.Logger, svc *auth.Service, cookie session.CookieOptions) *Handler {
	cookie = normalizeCookie(cookie)
	return &Handler{log: log, svc: svc, cookie: cookie}
}

func normalizeCookie(opts session.CookieOptions) session.CookieOptions {
	if opts.Name == "" {
		opts.Name = session.DefaultCookieName
	}
	return opts
}

// RegisterRoutes attaches every route to the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	r.GET("/products", middleware.RequireToken(h.svc), h.Products)
	r.GET("/getLoggedUser", middleware.RequireSession(h.svc, h.cookie.Name), h.LoggedUser)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// fail translates a flow error into a terminal HTTP response. Every
// failure branch goes through here and returns immediately after.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, auth.ErrValidation):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusForbidden
		msg = auth.ErrInvalidCredentials.Error()
	case errors.Is(err, auth.ErrUserExists):
		status = http.StatusConflict
		msg = auth.ErrUserExists.Error()
	case errors.Is(err, auth.ErrSessionActive):
		status = http.StatusConflict
		msg = auth.ErrSessionActive.Error()
	case errors.Is(err, auth.ErrNoSession):
		status = http.StatusForbidden
		msg = "not authorized"
	case errors.Is(err, auth.ErrTransient):
		status = http.StatusServiceUnavailable
		msg = "temporarily unavailable"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
