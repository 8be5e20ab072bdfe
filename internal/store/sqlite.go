// Package store provides audit storage backends for PlanVoice.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/BenefitSphere/PlanVoice/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists audit rows in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN is
// a file path; its directory is created when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// AddTurn implements Store.
func (s *SQLiteStore) AddTurn(rec models.TurnRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, utterance, intent, agent_state, reply, time) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Utterance, string(rec.Intent), string(rec.AgentState), rec.Reply, rec.Time)
	if err != nil {
		slog.Error("SQLiteStore AddTurn failed", "error", err, "session", rec.SessionID)
		return fmt.Errorf("failed to insert turn for %s: %w", rec.SessionID, err)
	}
	return nil
}

// GetTurns implements Store.
func (s *SQLiteStore) GetTurns(sessionID string) ([]models.TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, utterance, intent, agent_state, reply, time FROM turns WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		slog.Error("SQLiteStore GetTurns query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.TurnRecord
	for rows.Next() {
		rec, err := scanTurn(rows)
		if err != nil {
			slog.Error("SQLiteStore GetTurns scan failed", "error", err)
			return nil, err
		}
		turns = append(turns, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turn rows: %w", err)
	}
	return turns, nil
}

// AddSubmission implements Store.
func (s *SQLiteStore) AddSubmission(sub models.Submission) error {
	_, err := s.db.Exec(
		`INSERT INTO submissions (id, session_id, task_type, details, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.SessionID, string(sub.TaskType), sub.Details, sub.SubmittedAt)
	if err != nil {
		slog.Error("SQLiteStore AddSubmission failed", "error", err, "session", sub.SessionID)
		return fmt.Errorf("failed to insert submission %s: %w", sub.ID, err)
	}
	return nil
}

// GetSubmissions implements Store.
func (s *SQLiteStore) GetSubmissions() ([]models.Submission, error) {
	rows, err := s.db.Query(`SELECT id, session_id, task_type, details, submitted_at FROM submissions ORDER BY submitted_at`)
	if err != nil {
		slog.Error("SQLiteStore GetSubmissions query failed", "error", err)
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			slog.Error("SQLiteStore GetSubmissions scan failed", "error", err)
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission rows: %w", err)
	}
	return subs, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
