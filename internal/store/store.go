// Package store provides audit storage backends for PlanVoice.
//
// It records turn transcripts and confirmed submissions in memory, SQLite,
// or PostgreSQL. Live conversation snapshots are deliberately not stored;
// only history crosses this boundary.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Store is the audit storage contract shared by all backends.
type Store interface {
	AddTurn(rec models.TurnRecord) error
	GetTurns(sessionID string) ([]models.TurnRecord, error)
	AddSubmission(sub models.Submission) error
	GetSubmissions() ([]models.Submission, error)
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithPostgresDSN sets a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithSQLiteDSN sets a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is the default store when no DSN is configured.
type InMemoryStore struct {
	mu          sync.RWMutex
	turns       []models.TurnRecord
	submissions []models.Submission
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddTurn implements Store.
func (s *InMemoryStore) AddTurn(rec models.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, rec)
	return nil
}

// GetTurns implements Store.
func (s *InMemoryStore) GetTurns(sessionID string) ([]models.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TurnRecord
	for _, rec := range s.turns {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// AddSubmission implements Store.
func (s *InMemoryStore) AddSubmission(sub models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
	return nil
}

// GetSubmissions implements Store.
func (s *InMemoryStore) GetSubmissions() ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Submission, len(s.submissions))
	copy(out, s.submissions)
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// Close implements Store.
func (s *InMemoryStore) Close() error { return nil }
