// Package db opens the sqlite database and keeps its schema current.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type DB struct {
	*sql.DB
}

// schema holds one step per version; PRAGMA user_version records how many ran.
// Append new steps, never edit old ones.
var schema = []string{
	`CREATE TABLE cache (
		key        TEXT PRIMARY KEY,
		value      BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`,

	`CREATE TABLE news_items (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT,
		body       TEXT NOT NULL,
		source     TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_news_items_created ON news_items(created_at);`,

	`CREATE TABLE transitions (
		id          TEXT PRIMARY KEY,
		variant     TEXT,
		from_kind   TEXT,
		to_kind     TEXT,
		script      TEXT,
		audio_path  TEXT,
		format      TEXT,
		duration_ms INTEGER,
		latency_ms  INTEGER,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);`,
}

// Init opens path, creating its directory, and applies pending migrations.
func Init(path string) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// single writer; WAL lets reads proceed meanwhile
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=30000"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	d := &DB{conn}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return d, nil
}

// SchemaVersion reports how many migration steps have been applied.
func (d *DB) SchemaVersion() (int, error) {
	var v int
	err := d.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

func (d *DB) migrate() error {
	current, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	if current > len(schema) {
		return fmt.Errorf("database schema v%d is newer than this build (v%d)", current, len(schema))
	}

	for v := current; v < len(schema); v++ {
		tx, err := d.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(schema[v]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("step %d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("step %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// PruneCache deletes cache rows written before now-olderThan.
func (d *DB) PruneCache(olderThan time.Duration) (int64, error) {
	res, err := d.Exec("DELETE FROM cache WHERE created_at < ?", time.Now().Add(-olderThan).UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
