// Package app wires configuration, infrastructure, and routes into a
// runnable HTTP server.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"session-control/internal/config"
)

// App is the assembled process.
type App struct {
	httpServer *http.Server
	cleanup    func() error
}

// New builds the server and all its dependencies. Any unreachable
// startup dependency (database, redis) fails construction.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	return &App{
		httpServer: server,
		cleanup:    cleanup,
	}, nil
}

// Run serves until the listener fails or Shutdown is called.
func (a *App) Run() error {
	return a.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and releases infrastructure.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
