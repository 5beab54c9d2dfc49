package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"session-control/internal/active"
	"session-control/internal/auth"
	"session-control/internal/auth/credentials"
	"session-control/internal/auth/handler"
	"session-control/internal/config"
	"session-control/internal/session"
	"session-control/internal/token"
)

const memoryCleanupInterval = 5 * time.Minute

func setupHTTP(ctx context.Context, log *slog.Logger, cfg config.Config) (*gin.Engine, func() error, error) {
	inf, err := setupInfra(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		sessionStore session.Store
		registry     active.Registry
		memStore     *session.MemoryStore
	)
	switch cfg.SessionBackend {
	case config.BackendRedis:
		sessionStore = session.NewRedisStore(inf.redis.Client)
		registry = active.NewRedisRegistry(inf.redis.Client, cfg.SessionTTL)
	default:
		memStore = session.NewMemoryStore(log, memoryCleanupInterval)
		sessionStore = memStore
		registry = active.NewMemoryRegistry(memStore)
	}
	log.Info("session backend selected", "backend", string(cfg.SessionBackend))

	tokens, err := token.NewManager(token.Config{
		Secret: []byte(cfg.JWTSecret),
	})
	if err != nil {
		inf.close()
		return nil, nil, err
	}

	credStore := credentials.NewPostgresStore(inf.db)
	svc := auth.NewService(log, credStore, sessionStore, registry, tokens, auth.Config{
		SessionTTL: cfg.SessionTTL,
	})

	authHandler := handler.New(log, svc, session.CookieOptions{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
	})

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	authHandler.RegisterRoutes(router)

	cleanup := func() error {
		if memStore != nil {
			memStore.Close()
		}
		return inf.close()
	}

	return router, cleanup, nil
}

// requestLogger logs one line per request with slog.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
