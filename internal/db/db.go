package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL; PRAGMA temp_store=MEMORY;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates one append-only table per metric category. Percentage
// fields are never stored; they are recomputed from the raw columns on
// every read.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cpu_metrics (
			ts DATETIME NOT NULL,
			usage_percentage REAL NOT NULL,
			load_average_1m REAL NOT NULL,
			load_average_5m REAL NOT NULL,
			load_average_15m REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mem_metrics (
			ts DATETIME NOT NULL,
			total INTEGER NOT NULL,
			used INTEGER NOT NULL,
			swap_total INTEGER NOT NULL,
			swap_used INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS disk_metrics (
			ts DATETIME NOT NULL,
			total INTEGER NOT NULL,
			free INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cpu_metrics_ts ON cpu_metrics(ts DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_mem_metrics_ts ON mem_metrics(ts DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_disk_metrics_ts ON disk_metrics(ts DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}
