package intent

import (
	"log/slog"
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Context carries the minimal agent state the classifier needs. It is a
// value type; classification never mutates it.
type Context struct {
	RequiredInput models.RequiredInput
	CurrentTask   models.TaskType // empty when no task is active
}

// Interrogative markers that flag an off-task question when no task is active.
var interrogativeWords = []string{"what", "how", "why", "when", "where"}

// Classify maps an utterance to an Intent given the current conversation
// context. It is pure, case-insensitive, and whitespace-trimmed, and never
// fails: anything unrecognized resolves to IntentUnknown so the controller
// can re-prompt instead of guessing.
func Classify(utterance string, ctx Context) models.Intent {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" {
		return models.IntentUnknown
	}

	// Global commands are available regardless of state.
	if strings.Contains(normalized, "cancel") {
		return models.IntentCancel
	}
	if normalized == "no" && ctx.RequiredInput == models.InputConfirmation {
		// Declining a pending confirmation aborts the task.
		return models.IntentCancel
	}
	if strings.Contains(normalized, "go back") || normalized == "back" || normalized == "previous" {
		return models.IntentGoBack
	}
	if strings.Contains(normalized, "repeat") || normalized == "what" || strings.Contains(normalized, "say that again") {
		return models.IntentRepeat
	}

	// Task-start keywords only apply while no task is active.
	if ctx.CurrentTask == "" {
		if strings.Contains(normalized, "enroll") {
			return models.IntentStartEnrollment
		}
		if strings.Contains(normalized, "loan") || strings.Contains(normalized, "borrow") {
			return models.IntentStartLoan
		}
		if isInterrogative(normalized) {
			return models.IntentGeneralQuestion
		}
	}

	// Exact allow-list confirmation matching. A bare "yes" or "submit"
	// must never reach IntentConfirm.
	if ctx.RequiredInput == models.InputConfirmation {
		if matchesConfirmation(normalized, ctx.CurrentTask) {
			return models.IntentConfirm
		}
	}

	// Input acceptance while a task is active. The classifier only decides
	// whether this is plausibly an answer; the step validator decides
	// whether the answer is acceptable.
	if ctx.CurrentTask != "" {
		switch ctx.RequiredInput {
		case models.InputNumber:
			if ContainsDigit(normalized) {
				return models.IntentAnswerInput
			}
			if _, ok := ParseSpokenNumber(normalized); ok {
				return models.IntentAnswerInput
			}
		case models.InputYesNo:
			if containsYesNoToken(normalized) {
				return models.IntentAnswerInput
			}
		case models.InputText, models.InputConfirmation:
			return models.IntentAnswerInput
		}
	}

	slog.Debug("intent.Classify: no rule matched", "required_input", ctx.RequiredInput, "task_active", ctx.CurrentTask != "")
	return models.IntentUnknown
}

// matchesConfirmation checks the utterance against the active task's exact
// allow-list. With no active task both lists are checked, which keeps the
// gate closed either way for anything not allow-listed.
func matchesConfirmation(normalized string, task models.TaskType) bool {
	if task != "" {
		return models.IsConfirmationPhrase(task, normalized)
	}
	return models.IsConfirmationPhrase(models.TaskLoan, normalized) ||
		models.IsConfirmationPhrase(models.TaskEnrollment, normalized)
}

func isInterrogative(normalized string) bool {
	if strings.Contains(normalized, "?") {
		return true
	}
	first := normalized
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	for _, w := range interrogativeWords {
		if first == w {
			return true
		}
	}
	return false
}

func containsYesNoToken(normalized string) bool {
	for _, tok := range strings.Fields(normalized) {
		tok = strings.Trim(tok, ".,!")
		switch tok {
		case "yes", "no", "y", "n":
			return true
		}
	}
	return false
}
