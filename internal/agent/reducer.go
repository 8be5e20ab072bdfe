// Package agent implements the conversation controller for PlanVoice.
//
// The controller owns one Snapshot per session and resolves every user
// turn through a pure reducer, keeping the state machine unit-testable
// without any I/O.
package agent

import (
	"log/slog"

	"github.com/BenefitSphere/PlanVoice/internal/models"
	"github.com/BenefitSphere/PlanVoice/internal/task"
)

// Snapshot is the complete conversation-level state for one session.
// AgentState is the macro phase; CurrentStep is the micro position inside
// a task.
type Snapshot struct {
	AgentState    models.AgentState
	CurrentTask   models.TaskType
	CurrentStep   models.StepID
	RequiredInput models.RequiredInput
	Data          models.CollectedData
	LastMessage   string
	TaskHistory   []models.StepID
	// Version increments once per processed turn. Enhancement results are
	// tagged with the version they were issued against and discarded when
	// a later turn has moved the conversation on.
	Version uint64
}

// NewSnapshot returns the initial idle snapshot for a fresh session.
func NewSnapshot() Snapshot {
	return Snapshot{
		AgentState:    models.StateIdle,
		RequiredInput: models.InputNone,
	}
}

const (
	idleGreeting = "Hi! I can help you enroll in your 401(k) plan, apply for a loan, or answer plan questions. What would you like to do?"
	idleClarify  = "Sorry, I didn't catch that. You can say \"enroll in the plan\", \"apply for a loan\", or ask a plan question."
)

var idleQuickReplies = []string{"Enroll in the plan", "Apply for a loan"}

// reduce resolves one classified turn against the snapshot and returns the
// successor snapshot plus the deterministic response. It performs no I/O.
func reduce(snap Snapshot, profile task.Profile, in models.Intent, utterance string) (Snapshot, models.AgentResponse) {
	switch in {
	case models.IntentCancel:
		return reduceCancel(snap)
	case models.IntentGoBack:
		return reduceGoBack(snap)
	case models.IntentRepeat:
		// Re-emit the last agent message unchanged; no state mutation.
		if snap.LastMessage == "" {
			return respond(snap, models.AgentResponse{Text: idleGreeting, UIStateHint: models.UIIdle, QuickReplies: idleQuickReplies})
		}
		return snap, models.AgentResponse{Text: snap.LastMessage, UIStateHint: hintFor(snap)}
	case models.IntentStartLoan:
		return reduceStart(snap, profile, models.TaskLoan)
	case models.IntentStartEnrollment:
		return reduceStart(snap, profile, models.TaskEnrollment)
	case models.IntentAnswerInput, models.IntentConfirm:
		return reduceAnswer(snap, utterance)
	case models.IntentGeneralQuestion:
		if snap.CurrentTask == "" {
			// An off-task question routes into the help flow with the
			// question itself as the first answer.
			next, _ := reduceStart(snap, profile, models.TaskPostEnrollmentHelp)
			return reduceAnswer(next, utterance)
		}
		return reduceClarify(snap)
	default:
		if snap.CurrentTask == "" {
			return respond(snap, models.AgentResponse{Text: idleClarify, UIStateHint: models.UIIdle, QuickReplies: idleQuickReplies})
		}
		return reduceClarify(snap)
	}
}

func reduceCancel(snap Snapshot) (Snapshot, models.AgentResponse) {
	if snap.CurrentTask == "" {
		return respond(snap, models.AgentResponse{
			Text:        "There's nothing in progress to cancel. " + idleGreeting,
			UIStateHint: models.UIIdle,
		})
	}
	label := taskLabel(snap.CurrentTask)
	snap = clearTask(snap, models.StateCancelled)
	return respond(snap, models.AgentResponse{
		Text:        "Okay, I've cancelled the " + label + ". No changes were made to your account.",
		UIStateHint: models.UITaskCancelled,
	})
}

func reduceGoBack(snap Snapshot) (Snapshot, models.AgentResponse) {
	if snap.CurrentTask == "" || len(snap.TaskHistory) == 0 {
		return reduceCancel(snap)
	}
	// Pop the current step; an empty stack afterwards means there is
	// nothing earlier to return to, which is treated as a cancel.
	history := snap.TaskHistory[:len(snap.TaskHistory)-1]
	if len(history) == 0 {
		return reduceCancel(snap)
	}
	graph, ok := task.Get(snap.CurrentTask)
	if !ok {
		return reduceError(snap, "step graph missing for active task")
	}
	prev := history[len(history)-1]
	step, ok := graph.Step(prev)
	if !ok {
		return reduceError(snap, "history references unknown step")
	}
	snap.TaskHistory = history
	snap.CurrentStep = prev
	snap.RequiredInput = step.RequiredInput
	snap.AgentState = phaseFor(step)
	// Re-render the prior step's prompt without re-running validation.
	return respond(snap, promptResponse(graph, step, snap.Data, nil))
}

func reduceStart(snap Snapshot, profile task.Profile, t models.TaskType) (Snapshot, models.AgentResponse) {
	if snap.CurrentTask != "" {
		return reduceClarify(snap)
	}
	graph, ok := task.Get(t)
	if !ok {
		return reduceError(snap, "no graph registered for task")
	}
	step, ok := graph.Step(graph.First)
	if !ok {
		return reduceError(snap, "graph first step missing")
	}
	snap.CurrentTask = t
	snap.Data = graph.NewData(profile)
	snap.CurrentStep = graph.First
	snap.TaskHistory = []models.StepID{graph.First}
	snap.RequiredInput = step.RequiredInput
	snap.AgentState = phaseFor(step)
	return respond(snap, promptResponse(graph, step, snap.Data, nil))
}

func reduceAnswer(snap Snapshot, utterance string) (Snapshot, models.AgentResponse) {
	if snap.CurrentTask == "" {
		return respond(snap, models.AgentResponse{Text: idleClarify, UIStateHint: models.UIIdle, QuickReplies: idleQuickReplies})
	}
	graph, ok := task.Get(snap.CurrentTask)
	if !ok {
		return reduceError(snap, "step graph missing for active task")
	}
	step, ok := graph.Step(snap.CurrentStep)
	if !ok {
		return reduceError(snap, "current step missing from graph")
	}

	// Validation rejects before any state mutation. A failure re-renders
	// the same step with this turn's error; the error is never persisted.
	if step.Validate != nil {
		if verr := step.Validate(utterance, snap.Data); verr != nil {
			resp := promptResponse(graph, step, snap.Data, verr)
			resp.ErrorMessage = verr.Error()
			return respond(snap, resp)
		}
	}
	if step.Apply != nil {
		step.Apply(utterance, snap.Data)
	}

	nextID, res := step.Next(snap.Data)
	switch res {
	case task.Advance:
		nextStep, ok := graph.Step(nextID)
		if !ok {
			return reduceError(snap, "next step missing from graph")
		}
		snap.CurrentStep = nextID
		snap.TaskHistory = append(snap.TaskHistory, nextID)
		snap.RequiredInput = nextStep.RequiredInput
		snap.AgentState = phaseFor(nextStep)
		return respond(snap, promptResponse(graph, nextStep, snap.Data, nil))
	case task.Complete:
		// The compliance backbone: completion is only legal through a
		// confirmation-gated sink.
		if step.RequiredInput != models.InputConfirmation {
			return reduceError(snap, "completion attempted without confirmation gate")
		}
		text := graph.CompleteText(snap.Data)
		snap = clearTask(snap, models.StateCompleted)
		return respond(snap, models.AgentResponse{Text: text, UIStateHint: models.UITaskComplete})
	case task.Decline:
		text := graph.DeclineText(snap.Data)
		if snap.CurrentTask == models.TaskPostEnrollmentHelp {
			// Nothing was at stake; the session just returns to idle.
			snap = clearTask(snap, models.StateIdle)
			return respond(snap, models.AgentResponse{Text: text, UIStateHint: models.UIIdle})
		}
		snap = clearTask(snap, models.StateCancelled)
		return respond(snap, models.AgentResponse{Text: text, UIStateHint: models.UITaskCancelled})
	default:
		// Still waiting on this step.
		return respond(snap, promptResponse(graph, step, snap.Data, nil))
	}
}

func reduceClarify(snap Snapshot) (Snapshot, models.AgentResponse) {
	graph, ok := task.Get(snap.CurrentTask)
	if !ok {
		return reduceError(snap, "step graph missing for active task")
	}
	step, ok := graph.Step(snap.CurrentStep)
	if !ok {
		return reduceError(snap, "current step missing from graph")
	}
	resp := promptResponse(graph, step, snap.Data, nil)
	resp.Text = clarifyLead(step.RequiredInput) + " " + resp.Text
	return respond(snap, resp)
}

func clarifyLead(ri models.RequiredInput) string {
	switch ri {
	case models.InputYesNo:
		return "I'm listening for a yes or no here."
	case models.InputNumber:
		return "I'm listening for a number here."
	case models.InputConfirmation:
		return "I need the exact confirmation phrase to continue."
	default:
		return "Sorry, I didn't catch that."
	}
}

// reduceError marks a programming-contract violation. The runtime keeps
// the user in a recoverable place; tests assert these paths are unreachable
// through the real graphs.
func reduceError(snap Snapshot, detail string) (Snapshot, models.AgentResponse) {
	slog.Error("agent.reduce: contract violation", "detail", detail, "task", snap.CurrentTask, "step", snap.CurrentStep)
	snap = clearTask(snap, models.StateError)
	return respond(snap, models.AgentResponse{
		Text:         "Something went wrong on my side. Let's start over — you can begin enrollment or a loan application.",
		UIStateHint:  models.UIError,
		ErrorMessage: detail,
	})
}

// respond stamps the response text as the last agent message.
func respond(snap Snapshot, resp models.AgentResponse) (Snapshot, models.AgentResponse) {
	snap.LastMessage = resp.Text
	return snap, resp
}

// promptResponse renders a step's prompt into a response, carrying the
// confirmation contract when the step is a confirmation gate.
func promptResponse(graph *task.Graph, step task.Step, data models.CollectedData, verr error) models.AgentResponse {
	resp := models.AgentResponse{
		Text:        step.Prompt(data, verr),
		UIStateHint: models.UIListening,
	}
	switch step.RequiredInput {
	case models.InputConfirmation:
		resp.UIStateHint = models.UIConfirmationRequired
		resp.RequiresConfirmation = true
		resp.ConfirmationPhrase = models.CanonicalConfirmationPhrase(graph.Task)
		resp.QuickReplies = []string{resp.ConfirmationPhrase, "no"}
	case models.InputYesNo:
		resp.QuickReplies = []string{"yes", "no"}
	}
	return resp
}

func phaseFor(step task.Step) models.AgentState {
	if step.RequiredInput == models.InputConfirmation {
		return models.StateConfirmation
	}
	return models.StateTaskInProgress
}

func hintFor(snap Snapshot) models.UIStateHint {
	switch snap.AgentState {
	case models.StateConfirmation:
		return models.UIConfirmationRequired
	case models.StateCompleted:
		return models.UITaskComplete
	case models.StateCancelled:
		return models.UITaskCancelled
	case models.StateError:
		return models.UIError
	case models.StateTaskInProgress:
		return models.UIListening
	default:
		return models.UIIdle
	}
}

func clearTask(snap Snapshot, state models.AgentState) Snapshot {
	snap.AgentState = state
	snap.CurrentTask = ""
	snap.CurrentStep = ""
	snap.RequiredInput = models.InputNone
	snap.TaskHistory = nil
	return snap
}

func taskLabel(t models.TaskType) string {
	if g, ok := task.Get(t); ok {
		return g.Label
	}
	return "task"
}
