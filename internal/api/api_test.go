package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BenefitSphere/PlanVoice/internal/agent"
	"github.com/BenefitSphere/PlanVoice/internal/models"
	"github.com/BenefitSphere/PlanVoice/internal/store"
	"github.com/BenefitSphere/PlanVoice/internal/task"
)

func newTestServer() (*Server, store.Store) {
	st := store.NewInMemoryStore()
	manager := agent.NewManager(task.Profile{AccountBalance: 85000, AnnualSalary: 60000}, nil, st)
	return NewServer(manager, st), st
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return w, resp
}

func createSession(t *testing.T, mux *http.ServeMux) string {
	t.Helper()
	w, resp := doJSON(t, mux, http.MethodPost, "/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session returned %d: %s", w.Code, w.Body.String())
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %+v", resp.Result)
	}
	id, _ := result["session_id"].(string)
	if id == "" {
		t.Fatal("missing session_id in create response")
	}
	return id
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	w, resp := doJSON(t, srv.Routes(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
	if resp.Status != string(models.APIStatusOK) {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestCreateSession_ReturnsGreeting(t *testing.T) {
	srv, _ := newTestServer()
	w, resp := doJSON(t, srv.Routes(), http.MethodPost, "/sessions", models.SessionRequest{AccountBalance: 40000})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session returned %d: %s", w.Code, w.Body.String())
	}
	result := resp.Result.(map[string]interface{})
	response := result["response"].(map[string]interface{})
	if text, _ := response["text"].(string); !strings.Contains(text, "401(k)") {
		t.Errorf("greeting text = %q", text)
	}
}

func TestCreateSession_RejectsNegativeProfile(t *testing.T) {
	srv, _ := newTestServer()
	w, resp := doJSON(t, srv.Routes(), http.MethodPost, "/sessions", models.SessionRequest{AccountBalance: -5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp.Status != string(models.APIStatusError) {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestTurnEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	mux := srv.Routes()
	id := createSession(t, mux)

	w, resp := doJSON(t, mux, http.MethodPost, "/sessions/"+id+"/turns", models.TurnRequest{Utterance: "I need a loan"})
	if w.Code != http.StatusOK {
		t.Fatalf("turn returned %d: %s", w.Code, w.Body.String())
	}
	result := resp.Result.(map[string]interface{})
	response := result["response"].(map[string]interface{})
	if text, _ := response["text"].(string); !strings.Contains(text, "loan") {
		t.Errorf("turn response text = %q", text)
	}
}

func TestTurnEndpoint_UnknownSession(t *testing.T) {
	srv, _ := newTestServer()
	w, _ := doJSON(t, srv.Routes(), http.MethodPost, "/sessions/nope/turns", models.TurnRequest{Utterance: "hi"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTurnEndpoint_EmptyUtterance(t *testing.T) {
	srv, _ := newTestServer()
	mux := srv.Routes()
	id := createSession(t, mux)

	w, _ := doJSON(t, mux, http.MethodPost, "/sessions/"+id+"/turns", models.TurnRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	mux := srv.Routes()
	id := createSession(t, mux)
	doJSON(t, mux, http.MethodPost, "/sessions/"+id+"/turns", models.TurnRequest{Utterance: "I need a loan"})
	doJSON(t, mux, http.MethodPost, "/sessions/"+id+"/turns", models.TurnRequest{Utterance: "yes"})

	w, resp := doJSON(t, mux, http.MethodGet, "/sessions/"+id+"/transcript", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transcript returned %d", w.Code)
	}
	turns, ok := resp.Result.([]interface{})
	if !ok {
		t.Fatalf("unexpected transcript shape: %+v", resp.Result)
	}
	if len(turns) != 2 {
		t.Errorf("expected 2 turns, got %d", len(turns))
	}
}

func TestSubmissionsEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	mux := srv.Routes()
	id := createSession(t, mux)

	// Walk a full loan application to produce one submission.
	for _, utterance := range []string{"I need a loan", "yes", "12000", "3", "yes", "yes", "confirm loan application"} {
		doJSON(t, mux, http.MethodPost, "/sessions/"+id+"/turns", models.TurnRequest{Utterance: utterance})
	}

	w, resp := doJSON(t, mux, http.MethodGet, "/submissions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submissions returned %d", w.Code)
	}
	subs, ok := resp.Result.([]interface{})
	if !ok {
		t.Fatalf("unexpected submissions shape: %+v", resp.Result)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
	sub := subs[0].(map[string]interface{})
	if sub["task_type"] != string(models.TaskLoan) {
		t.Errorf("submission task_type = %v", sub["task_type"])
	}
}

func TestEndSessionEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	mux := srv.Routes()
	id := createSession(t, mux)

	w, _ := doJSON(t, mux, http.MethodDelete, "/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("end session returned %d", w.Code)
	}
	w, _ = doJSON(t, mux, http.MethodDelete, "/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for ended session, got %d", w.Code)
	}
}
