// Package store provides audit storage backends for PlanVoice.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/BenefitSphere/PlanVoice/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists audit rows in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// AddTurn implements Store.
func (s *PostgresStore) AddTurn(rec models.TurnRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, utterance, intent, agent_state, reply, time) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.SessionID, rec.Utterance, string(rec.Intent), string(rec.AgentState), rec.Reply, rec.Time)
	if err != nil {
		slog.Error("PostgresStore AddTurn failed", "error", err, "session", rec.SessionID)
		return fmt.Errorf("failed to insert turn for %s: %w", rec.SessionID, err)
	}
	return nil
}

// GetTurns implements Store.
func (s *PostgresStore) GetTurns(sessionID string) ([]models.TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, utterance, intent, agent_state, reply, time FROM turns WHERE session_id = $1 ORDER BY id`,
		sessionID)
	if err != nil {
		slog.Error("PostgresStore GetTurns query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.TurnRecord
	for rows.Next() {
		rec, err := scanTurn(rows)
		if err != nil {
			slog.Error("PostgresStore GetTurns scan failed", "error", err)
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
func (s *PostgresStore) AddSubmission(sub models.Submission) error {
	_, err := s.db.Exec(
		`INSERT INTO submissions (id, session_id, task_type, details, submitted_at) VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.SessionID, string(sub.TaskType), sub.Details, sub.SubmittedAt)
	if err != nil {
		slog.Error("PostgresStore AddSubmission failed", "error", err, "session", sub.SessionID)
		return fmt.Errorf("failed to insert submission %s: %w", sub.ID, err)
	}
	return nil
}

// GetSubmissions implements Store.
func (s *PostgresStore) GetSubmissions() ([]models.Submission, error) {
	rows, err := s.db.Query(`SELECT id, session_id, task_type, details, submitted_at FROM submissions ORDER BY submitted_at`)
	if err != nil {
		slog.Error("PostgresStore GetSubmissions query failed", "error", err)
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			slog.Error("PostgresStore GetSubmissions scan failed", "error", err)
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission rows: %w", err)
	}
	return subs, nil
}

// Close closes the PostgreSQL connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL connection")
	return s.db.Close()
}
