package agent

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/BenefitSphere/PlanVoice/internal/enhance"
	"github.com/BenefitSphere/PlanVoice/internal/models"
	"github.com/BenefitSphere/PlanVoice/internal/task"
)

// Manager owns the live session agents. Each session's snapshot is
// exclusively owned by its agent; the manager only guards the session map.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Agent
	defaults task.Profile
	enhancer enhance.TextEnhancer
	recorder Recorder
}

// NewManager creates a session manager with default profile values applied
// to sessions that do not override them.
func NewManager(defaults task.Profile, enhancer enhance.TextEnhancer, recorder Recorder) *Manager {
	if enhancer == nil {
		enhancer = enhance.Noop{}
	}
	return &Manager{
		sessions: make(map[string]*Agent),
		defaults: defaults,
		enhancer: enhancer,
		recorder: recorder,
	}
}

// Create starts a new session and returns its agent.
func (m *Manager) Create(req models.SessionRequest) *Agent {
	profile := m.defaults
	if req.AccountBalance > 0 {
		profile.AccountBalance = req.AccountBalance
	}
	if req.AnnualSalary > 0 {
		profile.AnnualSalary = req.AnnualSalary
	}

	a := NewAgent(uuid.NewString(), profile, m.enhancer, m.recorder)
	m.mu.Lock()
	m.sessions[a.ID()] = a
	m.mu.Unlock()

	slog.Info("Manager.Create: session started", "session", a.ID())
	return a
}

// Get retrieves a session agent by id.
func (m *Manager) Get(id string) (*Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.sessions[id]
	return a, ok
}

// End removes a session. The agent's snapshot is discarded with it.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	slog.Info("Manager.End: session ended", "session", id)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
