package enhance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHTTPBackend_RequiresEndpoint(t *testing.T) {
	if _, err := NewHTTPBackend(); err == nil {
		t.Error("expected error when endpoint is missing")
	}
}

func TestHTTPBackend_Polish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/polish" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req polishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Text != "Hello there." {
			t.Errorf("unexpected text %q", req.Text)
		}
		if req.Tone != "warm" {
			t.Errorf("unexpected tone %q", req.Tone)
		}
		if req.Constraints.MaxLengthRatio != DefaultMaxLengthRatio {
			t.Errorf("unexpected ratio %v", req.Constraints.MaxLengthRatio)
		}
		json.NewEncoder(w).Encode(polishResponse{PolishedText: "Well hello there."})
	}))
	defer srv.Close()

	b, err := NewHTTPBackend(WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := b.Polish(context.Background(), "Hello there.", "warm", Constraints{})
	if err != nil {
		t.Fatalf("Polish failed: %v", err)
	}
	if got != "Well hello there." {
		t.Errorf("Polish = %q", got)
	}
}

func TestHTTPBackend_PolishNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, _ := NewHTTPBackend(WithEndpoint(srv.URL))
	if _, err := b.Polish(context.Background(), "text", "", Constraints{}); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestHTTPBackend_PolishEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(polishResponse{})
	}))
	defer srv.Close()

	b, _ := NewHTTPBackend(WithEndpoint(srv.URL))
	if _, err := b.Polish(context.Background(), "text", "", Constraints{}); err == nil {
		t.Error("expected error on empty polishedText")
	}
}

func TestHTTPBackend_Normalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/normalize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req normalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Task != "NUMBER_NORMALIZATION" {
			t.Errorf("unexpected task %q", req.Task)
		}
		json.NewEncoder(w).Encode(normalizeResponse{
			NormalizedText: "borrow 12000",
			Numbers:        []NumberSpan{{Original: "twelve thousand", Value: 12000}},
		})
	}))
	defer srv.Close()

	b, _ := NewHTTPBackend(WithEndpoint(srv.URL))
	text, numbers, err := b.Normalize(context.Background(), "borrow twelve thousand")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if text != "borrow 12000" {
		t.Errorf("Normalize text = %q", text)
	}
	if len(numbers) != 1 || numbers[0].Value != 12000 {
		t.Errorf("Normalize numbers = %+v", numbers)
	}
}
