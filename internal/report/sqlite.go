package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"influxinv/internal/inventory"

	_ "modernc.org/sqlite"
)

const SQLiteName = "inventory.db"

const schema = `
CREATE TABLE IF NOT EXISTS measurement_hosts (
	container       TEXT NOT NULL,
	measurement     TEXT NOT NULL,
	host            TEXT NOT NULL,
	last_time_utc   TEXT NOT NULL DEFAULT '',
	last_time_local TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (container, measurement, host)
);
CREATE TABLE IF NOT EXISTS host_summary (
	host      TEXT PRIMARY KEY,
	old_utc   TEXT NOT NULL,
	old_local TEXT NOT NULL,
	new_utc   TEXT NOT NULL,
	new_local TEXT NOT NULL
);`

// SQLite mirrors every report into a single database file. Rows of a
// measurement, and the whole summary, are replaced on each write.
type SQLite struct {
	db   *sql.DB
	path string
}

func OpenSQLite(dir string) (*SQLite, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, SQLiteName)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) WriteMeasurement(container, measurement string, rows []inventory.HostRow) []inventory.Output {
	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM measurement_hosts WHERE container = ? AND measurement = ?`, container, measurement); err != nil {
			return fmt.Errorf("clear measurement rows: %w", err)
		}
		for _, r := range rows {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO measurement_hosts (container, measurement, host, last_time_utc, last_time_local) VALUES (?, ?, ?, ?, ?)`,
				container, measurement, r.Host, r.UTC, r.Local,
			); err != nil {
				return fmt.Errorf("insert host %q: %w", r.Host, err)
			}
		}
		return nil
	})
	return []inventory.Output{{Path: s.path, Err: err}}
}

func (s *SQLite) WriteSummary(rows []inventory.SummaryRow) []inventory.Output {
	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM host_summary`); err != nil {
			return fmt.Errorf("clear summary: %w", err)
		}
		for _, r := range rows {
			if _, err := tx.Exec(
				`INSERT INTO host_summary (host, old_utc, old_local, new_utc, new_local) VALUES (?, ?, ?, ?, ?)`,
				r.Host, r.OldUTC, r.OldLocal, r.NewUTC, r.NewLocal,
			); err != nil {
				return fmt.Errorf("insert summary %q: %w", r.Host, err)
			}
		}
		return nil
	})
	return []inventory.Output{{Path: s.path, Err: err}}
}

func (s *SQLite) inTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
