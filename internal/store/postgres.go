package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier est la partie de pgxpool.Pool utilisée par le store
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore stocke les entrées dans une table JSONB
type PostgresStore struct {
	db    pgxQuerier
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore utilise un pool déjà connecté (voir database.ConnectPostgres)
func NewPostgresStore(pool *pgxpool.Pool, table string) *PostgresStore {
	return &PostgresStore{db: pool, pool: pool, table: table}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Entry, error) {
	e := Entry{Key: key}
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT value, version FROM %s WHERE key = $1`, s.table),
		key,
	).Scan(&e.Value, &e.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %s: %w", key, err)
	}
	return e, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	var version int64
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, value, version, updated_at)
		 VALUES ($1, $2, 1, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = %s.version + 1, updated_at = NOW()
		 RETURNING version`, s.table, s.table),
		key, value,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("set %s: %w", key, err)
	}
	return version, nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	var (
		version int64
		err     error
	)
	if expected == 0 {
		err = s.db.QueryRow(ctx,
			fmt.Sprintf(`INSERT INTO %s (key, value, version, updated_at)
			 VALUES ($1, $2, 1, NOW())
			 ON CONFLICT (key) DO NOTHING
			 RETURNING version`, s.table),
			key, value,
		).Scan(&version)
	} else {
		err = s.db.QueryRow(ctx,
			fmt.Sprintf(`UPDATE %s SET value = $2, version = version + 1, updated_at = NOW()
			 WHERE key = $1 AND version = $3
			 RETURNING version`, s.table),
			key, value, expected,
		).Scan(&version)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("compare and swap %s: %w", key, err)
	}
	return version, nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT key, value, version FROM %s WHERE key LIKE $1 ORDER BY key`, s.table),
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Version); err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
