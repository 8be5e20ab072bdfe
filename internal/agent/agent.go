package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BenefitSphere/PlanVoice/internal/enhance"
	"github.com/BenefitSphere/PlanVoice/internal/intent"
	"github.com/BenefitSphere/PlanVoice/internal/models"
	"github.com/BenefitSphere/PlanVoice/internal/task"
	"github.com/BenefitSphere/PlanVoice/internal/tone"
)

// Recorder persists turn transcripts and confirmed submissions. Recording
// is best-effort: a storage failure never fails a turn.
type Recorder interface {
	AddTurn(rec models.TurnRecord) error
	AddSubmission(sub models.Submission) error
}

// Agent is the stateful controller for one conversation session. Turns are
// processed strictly sequentially: the mutex guarantees one utterance is
// fully resolved before the next is accepted.
type Agent struct {
	mu       sync.Mutex
	id       string
	snap     Snapshot
	profile  task.Profile
	enhancer enhance.TextEnhancer
	recorder Recorder
}

// NewAgent creates a session agent. A nil enhancer disables enhancement; a
// nil recorder disables audit recording.
func NewAgent(id string, profile task.Profile, enhancer enhance.TextEnhancer, recorder Recorder) *Agent {
	if enhancer == nil {
		enhancer = enhance.Noop{}
	}
	return &Agent{
		id:       id,
		snap:     NewSnapshot(),
		profile:  profile,
		enhancer: enhancer,
		recorder: recorder,
	}
}

// ID returns the session id.
func (a *Agent) ID() string { return a.id }

// Snapshot returns a copy of the current conversation state.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// Greeting produces the session-opening message.
func (a *Agent) Greeting() models.AgentResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	resp := models.AgentResponse{Text: idleGreeting, UIStateHint: models.UIIdle, QuickReplies: idleQuickReplies}
	a.snap.LastMessage = resp.Text
	return resp
}

// HandleTurn resolves one user utterance into a validated state transition
// and the next agent response. The classifier and step graphs never fail;
// the worst user-visible outcome is a clarifying re-prompt.
func (a *Agent) HandleTurn(ctx context.Context, utterance string) models.AgentResponse {
	a.mu.Lock()

	// A finished conversation rolls over to a fresh idle snapshot so the
	// session can start another task.
	switch a.snap.AgentState {
	case models.StateCompleted, models.StateCancelled, models.StateError:
		last, version := a.snap.LastMessage, a.snap.Version
		a.snap = NewSnapshot()
		a.snap.LastMessage = last
		a.snap.Version = version
	}

	// Pre-agent number normalization, gated like any generative output.
	input := utterance
	if a.snap.RequiredInput == models.InputNumber {
		input = a.enhancer.NormalizeInput(ctx, utterance)
	}

	in := intent.Classify(input, intent.Context{
		RequiredInput: a.snap.RequiredInput,
		CurrentTask:   a.snap.CurrentTask,
	})
	slog.Debug("Agent.HandleTurn: classified", "session", a.id, "intent", in, "state", a.snap.AgentState, "step", a.snap.CurrentStep)

	prevTask := a.snap.CurrentTask
	next, resp := reduce(a.snap, a.profile, in, input)
	next.Version++
	a.snap = next
	issued := next.Version

	if resp.UIStateHint == models.UITaskComplete {
		a.recordSubmission(prevTask, next.Data)
	}
	a.recordTurn(utterance, in, resp)
	a.mu.Unlock()

	// Error messages are never eligible for rewriting.
	if resp.ErrorMessage != "" {
		return resp
	}

	// The enhancement round-trip happens outside the lock so a cancel can
	// always get through. A result that arrives after the conversation
	// has moved on is discarded.
	polished := a.enhancer.Enhance(ctx, resp.Text, resp.UIStateHint, a.constraintsFor(resp))
	if polished != resp.Text {
		a.mu.Lock()
		if a.snap.Version == issued {
			resp.Text = polished
			a.snap.LastMessage = polished
		} else {
			slog.Debug("Agent.HandleTurn: stale enhancement discarded", "session", a.id, "issued", issued, "version", a.snap.Version)
		}
		a.mu.Unlock()
	}
	return resp
}

// constraintsFor derives the gate constraints for one response. Error and
// confirmation output is excluded from enhancement entirely.
func (a *Agent) constraintsFor(resp models.AgentResponse) enhance.Constraints {
	c := enhance.Constraints{MaxLines: 6, Tone: tone.ForHint(resp.UIStateHint)}
	if resp.ConfirmationPhrase != "" {
		c.PreservePhrases = []string{resp.ConfirmationPhrase}
	}
	return c
}

func (a *Agent) recordTurn(utterance string, in models.Intent, resp models.AgentResponse) {
	if a.recorder == nil {
		return
	}
	rec := models.TurnRecord{
		SessionID:  a.id,
		Utterance:  utterance,
		Intent:     in,
		AgentState: a.snap.AgentState,
		Reply:      resp.Text,
		Time:       time.Now().Unix(),
	}
	if err := a.recorder.AddTurn(rec); err != nil {
		slog.Error("Agent.recordTurn: failed to record turn", "error", err, "session", a.id)
	}
}

func (a *Agent) recordSubmission(t models.TaskType, data models.CollectedData) {
	if a.recorder == nil || t == "" {
		return
	}
	details, err := json.Marshal(data)
	if err != nil {
		slog.Error("Agent.recordSubmission: failed to marshal details", "error", err, "session", a.id)
		details = []byte("{}")
	}
	sub := models.Submission{
		ID:          uuid.NewString(),
		SessionID:   a.id,
		TaskType:    t,
		Details:     string(details),
		SubmittedAt: time.Now().UTC(),
	}
	if err := a.recorder.AddSubmission(sub); err != nil {
		slog.Error("Agent.recordSubmission: failed to record submission", "error", err, "session", a.id)
		return
	}
	slog.Info("Agent.recordSubmission: submission recorded", "session", a.id, "task", t, "submission_id", sub.ID)
}
