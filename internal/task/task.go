// Package task defines the per-task step graphs for the PlanVoice agent.
//
// Steps are immutable definitions: pure validators, pure prompt renderers,
// and pure next-step resolvers over the typed collected data. Only the
// collected data carries per-conversation values.
package task

import (
	"log/slog"
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Resolution is the outcome of resolving a step's successor.
type Resolution int

const (
	// Stay means the step is still waiting on input.
	Stay Resolution = iota
	// Advance means the conversation moves to the returned step id.
	Advance
	// Complete means the task finished through its confirmation sink.
	Complete
	// Decline means the task ended without a submission.
	Decline
)

// ValidateFunc checks raw input against the collected data so far. It must
// reject before any state mutation and never mutates the data itself. A nil
// return means the input is acceptable.
type ValidateFunc func(input string, data models.CollectedData) error

// ApplyFunc records a validated answer into the collected data. This is the
// typed equivalent of merging a value under the step's canonical key.
type ApplyFunc func(input string, data models.CollectedData)

// PromptFunc renders the step's prompt. A non-nil validation error applies
// to this render only; it is never persisted back into the collected data,
// so a later unrelated render cannot repeat a stale error.
type PromptFunc func(data models.CollectedData, verr error) string

// NextFunc resolves the successor for a step given the collected data.
type NextFunc func(data models.CollectedData) (models.StepID, Resolution)

// Step is one node in a task's directed step graph.
type Step struct {
	ID            models.StepID
	Label         string
	RequiredInput models.RequiredInput
	Validate      ValidateFunc // nil means any classified answer is acceptable
	Apply         ApplyFunc
	Prompt        PromptFunc
	Next          NextFunc
}

// Profile carries the per-session account facts the graphs need to seed
// their collected data.
type Profile struct {
	AccountBalance float64
	AnnualSalary   float64
}

// Graph is the full step graph for one task type.
type Graph struct {
	Task         models.TaskType
	Label        string
	First        models.StepID
	Steps        map[models.StepID]Step
	NewData      func(p Profile) models.CollectedData
	CompleteText func(data models.CollectedData) string
	DeclineText  func(data models.CollectedData) string
}

// Step retrieves a step definition by id.
func (g *Graph) Step(id models.StepID) (Step, bool) {
	s, ok := g.Steps[id]
	return s, ok
}

var registry = make(map[models.TaskType]*Graph)

// Register associates a task type with its step graph.
func Register(g *Graph) {
	registry[g.Task] = g
}

// Get retrieves the graph for a task type.
func Get(t models.TaskType) (*Graph, bool) {
	g, ok := registry[t]
	if !ok {
		slog.Error("task.Get: no graph registered", "task", t)
	}
	return g, ok
}

// All returns every registered graph. Used by invariant tests that must
// hold independent of any individual task.
func All() []*Graph {
	graphs := make([]*Graph, 0, len(registry))
	for _, g := range registry {
		graphs = append(graphs, g)
	}
	return graphs
}

// Ambiguity qualifiers rejected by numeric validators. A committed amount
// must be stated plainly.
var ambiguousQualifiers = []string{
	"around", "about", "approximately", "maybe", "perhaps", "roughly", "somewhere",
}

func containsAmbiguousQualifier(input string) bool {
	lowered := strings.ToLower(input)
	for _, tok := range strings.Fields(lowered) {
		tok = strings.Trim(tok, ".,!?")
		for _, q := range ambiguousQualifiers {
			if tok == q {
				return true
			}
		}
	}
	return false
}

// parseYesNo extracts a yes/no answer from the utterance. The second return
// value is false when neither token is present.
func parseYesNo(input string) (bool, bool) {
	for _, tok := range strings.Fields(strings.ToLower(input)) {
		tok = strings.Trim(tok, ".,!?")
		switch tok {
		case "yes", "y":
			return true, true
		case "no", "n":
			return false, true
		}
	}
	return false, false
}

// validateYesNo is the shared validator for YES_NO steps.
func validateYesNo(input string, _ models.CollectedData) error {
	if _, ok := parseYesNo(input); !ok {
		return models.ErrYesNoExpected
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }
