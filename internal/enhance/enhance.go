// Package enhance provides the safety gate that lets an optional generative
// backend reword agent-authored text without ever being allowed to alter
// logic, numbers, or confirmation semantics. A rewrite is admitted only if
// it passes the full invariant battery; on any failure the deterministic
// original text is used unchanged.
package enhance

import (
	"context"
	"log/slog"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// DefaultMaxLengthRatio caps a rewrite at this multiple of the original
// length unless the caller overrides it.
const DefaultMaxLengthRatio = 2.0

// Constraints are the caller-supplied limits for one polish call.
type Constraints struct {
	// MaxLengthRatio caps the rewrite length relative to the original.
	// Zero means DefaultMaxLengthRatio.
	MaxLengthRatio float64
	// MaxLines caps the rewrite's line count. Zero means no ceiling.
	MaxLines int
	// PreservePhrases must survive the rewrite verbatim when present in
	// the original (typically the active step's confirmation phrase).
	PreservePhrases []string
	// AllowNewNumbers disables number-preservation checking. Off by
	// default: a rewrite may never introduce numeric tokens.
	AllowNewNumbers bool
	// Tone is a free-form style hint forwarded to the backend.
	Tone string
}

func (c Constraints) maxLengthRatio() float64 {
	if c.MaxLengthRatio > 0 {
		return c.MaxLengthRatio
	}
	return DefaultMaxLengthRatio
}

// NumberSpan is one spoken-number mapping reported by the normalization
// backend: the original spoken phrase and the digit value it became.
type NumberSpan struct {
	Original string  `json:"original"`
	Value    float64 `json:"value"`
}

// Backend produces candidate rewrites. Implementations are transport
// specific; the gate logic never depends on them.
type Backend interface {
	Polish(ctx context.Context, text, tone string, c Constraints) (string, error)
	Normalize(ctx context.Context, text string) (string, []NumberSpan, error)
}

// TextEnhancer is the capability the agent controller consumes.
type TextEnhancer interface {
	// Enhance rewords agent output. It never fails outward; any internal
	// error resolves to the original text.
	Enhance(ctx context.Context, original string, hint models.UIStateHint, c Constraints) string
	// NormalizeInput rewrites spoken numbers in user input to digits
	// before classification. Same fallback contract.
	NormalizeInput(ctx context.Context, utterance string) string
}

// Noop is the disabled enhancer: the identity function, no network calls.
type Noop struct{}

// Enhance implements TextEnhancer.
func (Noop) Enhance(_ context.Context, original string, _ models.UIStateHint, _ Constraints) string {
	return original
}

// NormalizeInput implements TextEnhancer.
func (Noop) NormalizeInput(_ context.Context, utterance string) string {
	return utterance
}

// Enhancer is the gated, backend-driven enhancer.
type Enhancer struct {
	backend Backend
}

// New creates an Enhancer over the given backend.
func New(backend Backend) *Enhancer {
	return &Enhancer{backend: backend}
}

// Enhance asks the backend for a rewrite and admits it only if the full
// gate passes. Hard skip conditions are checked before any backend call:
// confirmation-gated or error text is never eligible for rewriting.
func (e *Enhancer) Enhance(ctx context.Context, original string, hint models.UIStateHint, c Constraints) string {
	if e.backend == nil || original == "" {
		return original
	}
	if ShouldSkip(original, hint) {
		slog.Debug("Enhancer.Enhance: hard skip, text not eligible", "hint", hint)
		return original
	}

	candidate, err := e.backend.Polish(ctx, original, c.Tone, c)
	if err != nil {
		slog.Debug("Enhancer.Enhance: backend failed, using original", "error", err)
		return original
	}
	if err := ValidatePolish(original, candidate, c); err != nil {
		slog.Warn("Enhancer.Enhance: rewrite rejected by gate", "reason", err)
		return original
	}
	return candidate
}

// NormalizeInput asks the backend to rewrite spoken numbers as digits and
// admits the result only if the normalization gate passes: it may only
// normalize, never remove or invent numeric information.
func (e *Enhancer) NormalizeInput(ctx context.Context, utterance string) string {
	if e.backend == nil || utterance == "" {
		return utterance
	}
	normalized, numbers, err := e.backend.Normalize(ctx, utterance)
	if err != nil {
		slog.Debug("Enhancer.NormalizeInput: backend failed, using original", "error", err)
		return utterance
	}
	if err := ValidateNormalization(utterance, normalized, numbers); err != nil {
		slog.Warn("Enhancer.NormalizeInput: normalization rejected by gate", "reason", err)
		return utterance
	}
	return normalized
}
