package store

import (
	"context"
	"fmt"

	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/database"
)

// Open construit le backend choisi par store.driver
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := database.ConnectPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool, cfg.Table), nil
	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLite.Path, cfg.Table)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, cfg.Table), nil
	case "redis":
		client, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Table), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
