package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
)

type stubAssistant struct {
	evaluation  ai.Evaluation
	questionErr error
}

func (s *stubAssistant) Evaluate(context.Context, string, string, string, string) (*ai.Evaluation, error) {
	evaluation := s.evaluation
	return &evaluation, nil
}

func (s *stubAssistant) Rephrase(_ context.Context, question string) (string, error) {
	return "Put simply: " + question, nil
}

func (s *stubAssistant) GenerateQuestion(context.Context, ai.QuestionRequest) (*ai.GeneratedQuestion, error) {
	if s.questionErr != nil {
		return nil, s.questionErr
	}
	return &ai.GeneratedQuestion{Question: "What is a goroutine?"}, nil
}

func newTestServer(assistant *stubAssistant) *Server {
	registry := interview.NewRegistry(interview.Deps{Assistant: assistant, Logger: zap.NewNop()})
	s := New(interview.NewService(registry), Options{}, zap.NewNop())
	s.newID = func() string { return "session-1" }
	return s
}

func doRequest(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	payload := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}

	return resp.StatusCode, payload
}

func TestServerInterviewFlow(t *testing.T) {
	s := newTestServer(&stubAssistant{evaluation: ai.Evaluation{Adequate: true, Score: 8, Reason: "good"}})

	status, body := doRequest(t, s, http.MethodPost, "/api/v1/sessions", `{"job_description":"Go dev","resume":"Gopher"}`)
	if status != http.StatusCreated {
		t.Fatalf("create: unexpected status %d body %v", status, body)
	}
	if body["session_id"] != "session-1" {
		t.Fatalf("unexpected session id %v", body["session_id"])
	}
	turn, ok := body["turn"].(map[string]any)
	if !ok || turn["action"] != string(interview.ActionStartInterview) {
		t.Fatalf("unexpected first turn %v", body["turn"])
	}

	status, body = doRequest(t, s, http.MethodPost, "/api/v1/sessions/session-1/turns", `{"answer":"I write Go services"}`)
	if status != http.StatusOK {
		t.Fatalf("turn: unexpected status %d body %v", status, body)
	}
	if body["action"] != string(interview.ActionAdequateResponse) || body["score_out_of_10"] != float64(8) {
		t.Fatalf("unexpected turn %v", body)
	}

	status, body = doRequest(t, s, http.MethodPut, "/api/v1/sessions/session-1/round", `{"round":"jd-fitment"}`)
	if status != http.StatusOK || body["current_round"] != string(ai.RoundJDFitment) {
		t.Fatalf("round: unexpected response %d %v", status, body)
	}

	status, body = doRequest(t, s, http.MethodGet, "/api/v1/sessions/session-1/summary", "")
	if status != http.StatusOK {
		t.Fatalf("summary: unexpected status %d", status)
	}
	if body["total_score"] != float64(8) || body["question_count"] != float64(1) || body["average_score"] != float64(8) {
		t.Fatalf("unexpected summary %v", body)
	}

	status, body = doRequest(t, s, http.MethodGet, "/api/v1/health", "")
	if status != http.StatusOK || body["active_sessions"] != float64(1) {
		t.Fatalf("health: unexpected response %d %v", status, body)
	}

	status, _ = doRequest(t, s, http.MethodDelete, "/api/v1/sessions/session-1", "")
	if status != http.StatusNoContent {
		t.Fatalf("delete: unexpected status %d", status)
	}

	status, body = doRequest(t, s, http.MethodGet, "/api/v1/sessions/session-1/summary", "")
	if status != http.StatusNotFound || body["code"] != float64(http.StatusNotFound) {
		t.Fatalf("expected 404 after delete, got %d %v", status, body)
	}
}

func TestServerErrors(t *testing.T) {
	assistant := &stubAssistant{}
	s := newTestServer(assistant)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "bad payload", method: http.MethodPost, path: "/api/v1/sessions", body: `{`, status: http.StatusBadRequest},
		{name: "unknown session summary", method: http.MethodGet, path: "/api/v1/sessions/nope/summary", status: http.StatusNotFound},
		{name: "unknown session round", method: http.MethodPut, path: "/api/v1/sessions/nope/round", body: `{"round":"HR"}`, status: http.StatusNotFound},
		{name: "bad round", method: http.MethodPut, path: "/api/v1/sessions/nope/round", body: `{"round":"coding"}`, status: http.StatusBadRequest},
		{name: "delete missing", method: http.MethodDelete, path: "/api/v1/sessions/nope", status: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doRequest(t, s, tc.method, tc.path, tc.body)
			if status != tc.status {
				t.Fatalf("expected %d, got %d (%v)", tc.status, status, body)
			}
		})
	}
}

func TestServerGenerationFailureIsBadGateway(t *testing.T) {
	assistant := &stubAssistant{}
	s := newTestServer(assistant)

	if status, _ := doRequest(t, s, http.MethodPost, "/api/v1/sessions", `{"job_description":"jd","resume":"cv"}`); status != http.StatusCreated {
		t.Fatalf("create: unexpected status %d", status)
	}

	assistant.questionErr = errors.New("quota exceeded")
	status, body := doRequest(t, s, http.MethodPost, "/api/v1/sessions/session-1/turns", `{"answer":""}`)
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d (%v)", status, body)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "quota exceeded") {
		t.Fatalf("unexpected error message %q", msg)
	}
}

type stubVacancies struct {
	text string
	err  error
	refs []string
}

func (s *stubVacancies) JobDescription(_ context.Context, idOrURL string) (string, error) {
	s.refs = append(s.refs, idOrURL)
	return s.text, s.err
}

func TestServerCreateSessionFromVacancy(t *testing.T) {
	vacancies := &stubVacancies{text: "Go Developer at Acme"}
	s := newTestServer(&stubAssistant{})
	s.vacancies = vacancies

	status, _ := doRequest(t, s, http.MethodPost, "/api/v1/sessions", `{"vacancy":"https://hh.ru/vacancy/123","resume":"cv"}`)
	if status != http.StatusCreated {
		t.Fatalf("unexpected status %d", status)
	}
	if len(vacancies.refs) != 1 || vacancies.refs[0] != "https://hh.ru/vacancy/123" {
		t.Fatalf("unexpected vacancy lookups %v", vacancies.refs)
	}

	vacancies.err = errors.New("bad status: 404 Not Found")
	s.newID = func() string { return "session-2" }
	if status, _ := doRequest(t, s, http.MethodPost, "/api/v1/sessions", `{"vacancy":"1"}`); status != http.StatusBadGateway {
		t.Fatalf("expected 502 for failed lookup, got %d", status)
	}

	s.vacancies = nil
	if status, _ := doRequest(t, s, http.MethodPost, "/api/v1/sessions", `{"vacancy":"1"}`); status != http.StatusBadRequest {
		t.Fatalf("expected 400 without a vacancy source, got %d", status)
	}
}

func TestServerTurnCreatesSessionLazily(t *testing.T) {
	s := newTestServer(&stubAssistant{evaluation: ai.Evaluation{Adequate: true, Score: 5, Reason: "ok"}})

	status, body := doRequest(t, s, http.MethodPost, "/api/v1/sessions/lazy-1/turns", `{"job_description":"jd","resume":"cv"}`)
	if status != http.StatusOK || body["action"] != string(interview.ActionStartInterview) {
		t.Fatalf("lazy start: unexpected response %d %v", status, body)
	}

	// Requests with ids of the same length must not disturb the stored key.
	for _, id := range []string{"lazy-2", "zzzzzz"} {
		if status, _ := doRequest(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/turns", `{}`); status != http.StatusOK {
			t.Fatalf("start %s: unexpected status %d", id, status)
		}
	}

	if status, body := doRequest(t, s, http.MethodPost, "/api/v1/sessions/lazy-1/turns", `{"answer":"I write Go"}`); status != http.StatusOK || body["action"] != string(interview.ActionAdequateResponse) {
		t.Fatalf("continue lazy-1: unexpected response %d %v", status, body)
	}

	for _, id := range []string{"lazy-1", "lazy-2", "zzzzzz"} {
		if _, err := s.service.GetSummary(id); err != nil {
			t.Fatalf("session %s: %v", id, err)
		}
	}
	if got := s.service.ActiveSessions(); got != 3 {
		t.Fatalf("expected 3 sessions, got %d", got)
	}
}
