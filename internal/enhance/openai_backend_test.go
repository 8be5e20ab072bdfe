package enhance

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockGenerator scripts the genai completion call.
type mockGenerator struct {
	out        string
	err        error
	lastSystem string
	lastUser   string
}

func (m *mockGenerator) GeneratePrompt(_ context.Context, system, user string) (string, error) {
	m.lastSystem = system
	m.lastUser = user
	return m.out, m.err
}

func TestOpenAIBackend_Polish(t *testing.T) {
	mock := &mockGenerator{out: "  Rewritten text.  "}
	b := &OpenAIBackend{client: mock}

	got, err := b.Polish(context.Background(), "Original text.", "warm", Constraints{})
	if err != nil {
		t.Fatalf("Polish failed: %v", err)
	}
	if got != "Rewritten text." {
		t.Errorf("Polish = %q", got)
	}
	if mock.lastUser != "Original text." {
		t.Errorf("user prompt = %q", mock.lastUser)
	}
	if !strings.Contains(mock.lastSystem, "warm") {
		t.Error("tone should be forwarded in the system prompt")
	}
}

func TestOpenAIBackend_PolishEmptyCompletion(t *testing.T) {
	b := &OpenAIBackend{client: &mockGenerator{out: "   "}}
	if _, err := b.Polish(context.Background(), "text", "", Constraints{}); err == nil {
		t.Error("expected error on empty completion")
	}
}

func TestOpenAIBackend_Normalize(t *testing.T) {
	mock := &mockGenerator{out: `{"normalizedText": "borrow 12000", "numbers": [{"original": "twelve thousand", "value": 12000}]}`}
	b := &OpenAIBackend{client: mock}

	text, numbers, err := b.Normalize(context.Background(), "borrow twelve thousand")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if text != "borrow 12000" {
		t.Errorf("Normalize text = %q", text)
	}
	if len(numbers) != 1 || numbers[0].Original != "twelve thousand" || numbers[0].Value != 12000 {
		t.Errorf("Normalize numbers = %+v", numbers)
	}
}

func TestOpenAIBackend_NormalizeBadJSON(t *testing.T) {
	b := &OpenAIBackend{client: &mockGenerator{out: "sure, here is the JSON you asked for"}}
	if _, _, err := b.Normalize(context.Background(), "borrow twelve thousand"); err == nil {
		t.Error("expected error on non-JSON completion")
	}
}

func TestOpenAIBackend_GeneratorError(t *testing.T) {
	b := &OpenAIBackend{client: &mockGenerator{err: errors.New("api down")}}
	if _, err := b.Polish(context.Background(), "text", "", Constraints{}); err == nil {
		t.Error("expected polish error")
	}
	if _, _, err := b.Normalize(context.Background(), "text"); err == nil {
		t.Error("expected normalize error")
	}
}
