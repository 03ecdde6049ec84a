package database

import (
	"context"
	"fmt"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres ouvre un pool pgx et crée la table clé-valeur si besoin
func ConnectPostgres(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	pool, err := ConnectPostgresDSN(ctx, cfg.DB.PostgresDSN(), cfg.Table)
	if err != nil {
		return nil, err
	}
	logger.Success("Connected to PostgreSQL (%s@%s/%s)", cfg.DB.User, cfg.DB.Host, cfg.DB.Name)
	return pool, nil
}

// ConnectPostgresDSN est la variante bas niveau, utilisée aussi par les tests d'intégration
func ConnectPostgresDSN(ctx context.Context, dsn, table string) (*pgxpool.Pool, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			version    BIGINT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return pool, nil
}
