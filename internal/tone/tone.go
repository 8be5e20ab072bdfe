// Package tone provides a fixed whitelist of style hints for the
// enhancement backend and selects one per conversation phase. Tags outside
// the whitelist are discarded so a misconfigured tone can never reach a
// generative prompt.
package tone

import (
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Allowed is the hard-coded set of safe tone tags.
var Allowed = map[string]bool{
	"warm":         true,
	"neutral":      true,
	"concise":      true,
	"encouraging":  true,
	"professional": true,
}

// DefaultTone is used for ordinary prompts.
const DefaultTone = "warm"

// Validate trims and case-folds a tag and reports whether it is
// whitelisted. Unknown tags return empty.
func Validate(tag string) (string, bool) {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if Allowed[tag] {
		return tag, true
	}
	return "", false
}

// ForHint picks the tone forwarded with a response. Phases that are never
// enhanced return empty.
func ForHint(hint models.UIStateHint) string {
	switch hint {
	case models.UIIdle, models.UIListening:
		return DefaultTone
	case models.UITaskComplete:
		return "encouraging"
	case models.UITaskCancelled:
		return "neutral"
	default:
		return ""
	}
}
