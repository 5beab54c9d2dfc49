package app

import (
	"context"
	"database/sql"
	"log/slog"

	"session-control/internal/config"
	"session-control/internal/db"
	"session-control/internal/redis"
)

type infra struct {
	db    *sql.DB
	redis *redis.Client // nil unless the redis backend is selected
}

func setupInfra(ctx context.Context, log *slog.Logger, cfg config.Config) (*infra, error) {
	sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	log.Info("database ready")

	inf := &infra{db: sqlDB}

	if cfg.SessionBackend == config.BackendRedis {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		inf.redis = redisClient
		log.Info("redis ready", "addr", cfg.RedisAddr)
	}

	return inf, nil
}

func (i *infra) close() error {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			return err
		}
	}
	return i.db.Close()
}
