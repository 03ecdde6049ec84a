package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLStore stocke les entrées dans SQLite via database/sql
type SQLStore struct {
	db    *sql.DB
	table string
}

// NewSQLStore utilise une base déjà migrée (voir database.OpenSQLite)
func NewSQLStore(db *sql.DB, table string) *SQLStore {
	return &SQLStore{db: db, table: table}
}

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, error) {
	e := Entry{Key: key}
	var value string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT value, version FROM %s WHERE key = ?`, s.table),
		key,
	).Scan(&value, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %s: %w", key, err)
	}
	e.Value = []byte(value)
	return e, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, value, version, updated_at)
		 VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 RETURNING version`, s.table),
		key, string(value),
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("set %s: %w", key, err)
	}
	return version, nil
}

func (s *SQLStore) CompareAndSwap(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	var res sql.Result
	var err error
	if expected == 0 {
		res, err = s.db.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (key, value, version, updated_at)
			 VALUES (?, ?, 1, CURRENT_TIMESTAMP)
			 ON CONFLICT (key) DO NOTHING`, s.table),
			key, string(value),
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET value = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			 WHERE key = ? AND version = ?`, s.table),
			string(value), key, expected,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("compare and swap %s: %w", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("compare and swap %s: %w", key, err)
	}
	if affected == 0 {
		return 0, ErrVersionConflict
	}
	return expected + 1, nil
}

func (s *SQLStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT key, value, version FROM %s WHERE key LIKE ? ESCAPE '\' ORDER BY key`, s.table),
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var value string
		if err := rows.Scan(&e.Key, &value, &e.Version); err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		e.Value = []byte(value)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// escapeLike protège % et _ dans un préfixe LIKE (échappement par \)
func escapeLike(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix)
}
