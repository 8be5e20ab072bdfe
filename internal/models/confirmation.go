package models

import "strings"

// Exact confirmation allow-lists guarding irreversible submissions. A bare
// "yes" or "submit" must never satisfy these; the strictness is a
// compliance control against accidental financial commitment.
var (
	LoanConfirmationPhrases = []string{
		"yes, submit loan",
		"confirm loan application",
		"yes submit loan",
		"confirm loan",
	}
	EnrollmentConfirmationPhrases = []string{
		"yes, submit enrollment",
		"confirm enrollment application",
		"yes submit enrollment",
		"confirm enrollment",
	}
)

// ConfirmationPhrases returns the allow-list for the given task type, or
// nil when the task has no confirmation gate.
func ConfirmationPhrases(task TaskType) []string {
	switch task {
	case TaskLoan:
		return LoanConfirmationPhrases
	case TaskEnrollment:
		return EnrollmentConfirmationPhrases
	default:
		return nil
	}
}

// CanonicalConfirmationPhrase returns the phrase advertised to the user for
// the given task's confirmation step.
func CanonicalConfirmationPhrase(task TaskType) string {
	phrases := ConfirmationPhrases(task)
	if len(phrases) == 0 {
		return ""
	}
	return phrases[1]
}

// IsConfirmationPhrase reports whether the utterance exactly matches one of
// the task's allow-listed confirmation phrases, after trimming and case
// folding only. No fuzzy matching is permitted here.
func IsConfirmationPhrase(task TaskType, utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	for _, phrase := range ConfirmationPhrases(task) {
		if normalized == phrase {
			return true
		}
	}
	return false
}
