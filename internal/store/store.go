package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The background loops and the foreground shell share this store;
	// a single connection serializes their access.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS categories (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name  TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		category_id       INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		priority          INTEGER NOT NULL DEFAULT 2,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		due_at            TEXT,
		status            TEXT NOT NULL DEFAULT 'open',
		recurrence        TEXT NOT NULL DEFAULT 'none',
		recurrence_until  TEXT,
		completed         INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id     INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		remind_at   TEXT NOT NULL,
		sent        INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS focus_sessions (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id          INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		started_at       TEXT NOT NULL,
		ended_at         TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		note             TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_due        ON tasks(due_at);
	CREATE INDEX IF NOT EXISTS idx_tasks_status     ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_reminders_at     ON reminders(remind_at);
	CREATE INDEX IF NOT EXISTS idx_reminders_sent   ON reminders(sent);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON focus_sessions(started_at);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('notifications_enabled',       '1'),
		('scheduler_interval_seconds',  '60'),
		('focus_minutes',               '25'),
		('short_break_minutes',         '5'),
		('long_break_minutes',          '15'),
		('long_break_interval',         '4'),
		('suggestion_weight_priority',  '1.0'),
		('suggestion_weight_urgency',   '1.0'),
		('suggestion_weight_overdue',   '1.0'),
		('suggestion_weight_short',     '0.5'),
		('short_task_threshold_minutes','30'),
		('urgency_window_hours',        '72');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/remindr/remindr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "remindr", "remindr.db"), nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
