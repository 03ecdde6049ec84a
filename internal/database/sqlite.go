package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoodnessFx/GlowUp/internal/logger"
	_ "modernc.org/sqlite"
)

type migration struct {
	name string
	sql  string
}

func sqliteMigrations(table string) []migration {
	return []migration{
		{
			name: "create " + table,
			sql: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					key        TEXT PRIMARY KEY,
					value      TEXT NOT NULL,
					version    INTEGER NOT NULL DEFAULT 1,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`, table),
		},
	}
}

// OpenSQLite ouvre (ou crée) la base SQLite et applique les migrations
func OpenSQLite(path, table string) (*sql.DB, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// Un seul writer: SQLite sérialise de toute façon les écritures
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		logger.Warning("failed to enable WAL mode (%v); continuing without WAL", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrate(db, sqliteMigrations(table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Success("Opened SQLite database %s", path)
	return db, nil
}

// migrate applique les migrations absentes de schema_migrations.
// Une migration est identifiée par son nom, qui inclut la table visée.
func migrate(db *sql.DB, migrations []migration) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE name = ?", m.name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %q: %w", m.name, err)
		}
		if count > 0 {
			continue
		}

		logger.Info("Running migration: %s", m.name)
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (name) VALUES (?)", m.name); err != nil {
			return fmt.Errorf("record migration %q: %w", m.name, err)
		}
	}

	return nil
}
