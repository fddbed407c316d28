// Package store is the sqlite persistence layer. One file holds the whole
// learner state; every repo hangs off the same connection.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the database and hands out repositories.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas and
// migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Catalog returns the content catalog repo.
func (s *Store) Catalog() *CatalogRepo {
	return &CatalogRepo{db: s.db}
}

// Signals returns the mastery signal repo.
func (s *Store) Signals() *SignalRepo {
	return &SignalRepo{db: s.db}
}

// Attempts returns the attempt history repo.
func (s *Store) Attempts() *AttemptRepo {
	return &AttemptRepo{db: s.db}
}

// Remediation returns the remediation event repo.
func (s *Store) Remediation() *RemediationRepo {
	return &RemediationRepo{db: s.db}
}

// Dialogues returns the dialogue transcript repo.
func (s *Store) Dialogues() *DialogueRepo {
	return &DialogueRepo{db: s.db}
}

// LLMRequests returns the model request log repo.
func (s *Store) LLMRequests() *LLMRequestRepo {
	return &LLMRequestRepo{db: s.db}
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. TUTORKIT_DB environment variable
// 2. $XDG_DATA_HOME/tutorkit/tutorkit.db
// 3. ~/.local/share/tutorkit/tutorkit.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TUTORKIT_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "tutorkit", "tutorkit.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
