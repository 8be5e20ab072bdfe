package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/genai"
)

// promptGenerator is the slice of the genai client the backend needs.
type promptGenerator interface {
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIBackend produces rewrites through the OpenAI chat API. It is an
// untrusted producer like any other backend: everything it returns still
// goes through the gate.
type OpenAIBackend struct {
	client promptGenerator
}

// NewOpenAIBackend wraps a GenAI client as an enhancement backend.
func NewOpenAIBackend(client *genai.Client) *OpenAIBackend {
	return &OpenAIBackend{client: client}
}

const polishSystemPrompt = `You rewrite short retirement-plan assistant messages for tone and fluency.
Rules: keep every number, every quoted phrase, and the question/statement form exactly as given.
Never add advice or recommendations. Reply with the rewritten text only.`

const normalizeSystemPrompt = `You rewrite spoken numbers in user utterances as digits, changing nothing else.
Reply with strict JSON only: {"normalizedText": "...", "numbers": [{"original": "<spoken phrase>", "value": <number>}]}.`

// Polish implements Backend.
func (b *OpenAIBackend) Polish(ctx context.Context, text, tone string, _ Constraints) (string, error) {
	system := polishSystemPrompt
	if tone != "" {
		system += "\nDesired tone: " + tone + "."
	}
	out, err := b.client.GeneratePrompt(ctx, system, text)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty polish completion")
	}
	return out, nil
}

// Normalize implements Backend. A completion that is not the strict JSON
// schema is a hard failure; the caller falls back to the raw utterance.
func (b *OpenAIBackend) Normalize(ctx context.Context, text string) (string, []NumberSpan, error) {
	out, err := b.client.GeneratePrompt(ctx, normalizeSystemPrompt, text)
	if err != nil {
		return "", nil, err
	}
	var resp struct {
		NormalizedText string       `json:"normalizedText"`
		Numbers        []NumberSpan `json:"numbers"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &resp); err != nil {
		return "", nil, fmt.Errorf("normalize completion is not valid JSON: %w", err)
	}
	if resp.NormalizedText == "" {
		return "", nil, fmt.Errorf("normalize completion missing normalizedText")
	}
	return resp.NormalizedText, resp.Numbers, nil
}
