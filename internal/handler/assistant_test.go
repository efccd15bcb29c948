package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/ai-health-analyze/internal/assistant"
	"github.com/iliyamo/ai-health-analyze/internal/health"
	"github.com/iliyamo/ai-health-analyze/internal/model"
	"github.com/iliyamo/ai-health-analyze/internal/queue"
)

type fakeCompleter struct {
	answer string
	err    error
	got    []assistant.Prompt
}

func (f *fakeCompleter) Complete(ctx context.Context, p assistant.Prompt) (string, error) {
	f.got = append(f.got, p)
	return f.answer, f.err
}

type fakePublisher struct {
	events []queue.AnalysisCompletedEvent
	err    error
}

func (f *fakePublisher) PublishAnalysisCompleted(ctx context.Context, ev queue.AnalysisCompletedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

var testPrompts = assistant.Prompts{
	ChatUserPrefix:      "Q: ",
	ChatErrorPrefix:     "chat error: ",
	FreeTextSystem:      "free-system",
	AnalysisSystem:      "analysis-system",
	AnalysisUserPrefix:  "Data:\n",
	AnalysisErrorPrefix: "analysis error: ",
}

func newAssistant(c assistant.Completer, pub EventPublisher) *AssistantHandler {
	return &AssistantHandler{Completer: c, Prompts: testPrompts, Language: "en", Events: pub, Logger: zerolog.Nop()}
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestChat(t *testing.T) {
	fc := &fakeCompleter{answer: "rest and drink water"}
	h := newAssistant(fc, nil)

	c, rec := postJSON("/api/chat", `{"message":"  I have a cold "}`)
	if err := h.Chat(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["response"]; got != "rest and drink water" {
		t.Errorf("response = %v", got)
	}
	if len(fc.got) != 1 || fc.got[0].User != "Q: I have a cold" || fc.got[0].System != "" {
		t.Errorf("prompt = %+v", fc.got)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	for _, body := range []string{`{"message":"   "}`, `{}`, `not json`} {
		fc := &fakeCompleter{}
		c, rec := postJSON("/api/chat", body)
		_ = newAssistant(fc, nil).Chat(c)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "message is required" {
			t.Errorf("body %q: error = %v", body, got)
		}
		if len(fc.got) != 0 {
			t.Errorf("body %q: completion service should not be called", body)
		}
	}
}

func TestChat_CompletionFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("upstream down")}
	c, rec := postJSON("/api/chat", `{"message":"hi"}`)
	_ = newAssistant(fc, nil).Chat(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["response"]; got != "chat error: upstream down" {
		t.Errorf("response = %v", got)
	}
}

func TestChat_NoCompleter(t *testing.T) {
	c, rec := postJSON("/api/chat", `{"message":"hi"}`)
	_ = newAssistant(nil, nil).Chat(c)
	got, _ := decodeBody(t, rec)["response"].(string)
	if !strings.HasPrefix(got, "chat error: ") {
		t.Errorf("response = %q", got)
	}
}

func TestAnalyze_FreeText(t *testing.T) {
	fc := &fakeCompleter{answer: "see a doctor"}
	pub := &fakePublisher{}
	c, rec := postJSON("/api/health/analyze", `{"free_text":" headache for 3 days ","temperature_c":39}`)
	if err := newAssistant(fc, pub).Analyze(c); err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, rec)
	if body["analysis"] != "see a doctor" {
		t.Errorf("analysis = %v", body["analysis"])
	}
	flags, ok := body["flags"].([]any)
	if !ok || len(flags) != 0 {
		t.Errorf("flags = %#v, want empty list", body["flags"])
	}
	if _, ok := body["metrics"]; ok {
		t.Error("free-text mode must not return metrics")
	}
	if fc.got[0].System != "free-system" || fc.got[0].User != "headache for 3 days" {
		t.Errorf("prompt = %+v", fc.got[0])
	}
	if len(pub.events) != 0 {
		t.Error("free-text mode should not publish events")
	}
}

func TestAnalyze_Structured(t *testing.T) {
	fc := &fakeCompleter{answer: "monitor your blood pressure"}
	pub := &fakePublisher{}
	c, rec := postJSON("/api/health/analyze",
		`{"gender":"male","height_cm":"170","weight_kg":70,"blood_pressure":{"systolic":"150","diastolic":85},"pulse":110,"symptom_list":"chest pain, palpitations"}`)
	if err := newAssistant(fc, pub).Analyze(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Flags    []string       `json:"flags"`
		Analysis string         `json:"analysis"`
		Metrics  map[string]any `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := []string{
		string(health.FlagAbnormalHeartRate),
		string(health.FlagHighBloodPressure),
		string(health.FlagCardiopulmonaryRisk),
	}
	if strings.Join(resp.Flags, "|") != strings.Join(want, "|") {
		t.Errorf("flags = %q, want %q", resp.Flags, want)
	}
	if resp.Metrics["systolic"] != float64(150) || resp.Metrics["bmi"] != 24.2 {
		t.Errorf("metrics = %v", resp.Metrics)
	}
	if resp.Metrics["temperature_c"] != nil {
		t.Errorf("unspecified temperature should be null, got %v", resp.Metrics["temperature_c"])
	}
	if resp.Analysis != "monitor your blood pressure" {
		t.Errorf("analysis = %q", resp.Analysis)
	}

	p := fc.got[0]
	if p.System != "analysis-system" || !strings.HasPrefix(p.User, "Data:\nGender: male") {
		t.Errorf("prompt = %+v", p)
	}

	if len(pub.events) != 1 {
		t.Fatalf("events = %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.EventID == "" || ev.UserID != nil || ev.Degraded || ev.Language != "en" {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.Flags) != 3 {
		t.Errorf("event flags = %v", ev.Flags)
	}
}

func TestAnalyze_UserIDOnEvent(t *testing.T) {
	pub := &fakePublisher{}
	c, _ := postJSON("/api/health/analyze", `{"temperature_c":37}`)
	c.Set("user_id", uint64(5))
	_ = newAssistant(&fakeCompleter{answer: "ok"}, pub).Analyze(c)
	if len(pub.events) != 1 || pub.events[0].UserID == nil || *pub.events[0].UserID != 5 {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestAnalyze_DegradedAndPublishFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("timeout")}
	pub := &fakePublisher{err: errors.New("broker gone")}
	c, rec := postJSON("/api/health/analyze", `{"temperature_c":38.5}`)
	_ = newAssistant(fc, pub).Analyze(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["analysis"] != "analysis error: timeout" {
		t.Errorf("analysis = %v", body["analysis"])
	}
	if flags := body["flags"].([]any); len(flags) != 1 || flags[0] != string(health.FlagHighFever) {
		t.Errorf("flags = %v", flags)
	}
	if !pub.events[0].Degraded {
		t.Error("event should be marked degraded")
	}
}

func TestAnalyze_MalformedBodyIsEmptyForm(t *testing.T) {
	for _, body := range []string{"", "{", "[1,2]", "null"} {
		fc := &fakeCompleter{answer: "ok"}
		c, rec := postJSON("/api/health/analyze", body)
		_ = newAssistant(fc, nil).Analyze(c)
		if rec.Code != http.StatusOK {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
		resp := decodeBody(t, rec)
		if flags := resp["flags"].([]any); len(flags) != 0 {
			t.Errorf("body %q: flags = %v", body, flags)
		}
		if len(fc.got) != 1 || fc.got[0].System != "analysis-system" {
			t.Errorf("body %q: structured mode expected, prompts %+v", body, fc.got)
		}
	}
}

type memAnalyses struct{ saved []model.Analysis }

func (m *memAnalyses) Insert(ctx context.Context, a model.Analysis) error {
	m.saved = append(m.saved, a)
	return nil
}

func TestAnalyze_StoresHistoryWithoutBroker(t *testing.T) {
	store := &memAnalyses{}
	h := newAssistant(&fakeCompleter{answer: "keep hydrated"}, queue.LocalPublisher{Store: store})

	c, rec := postJSON("/api/health/analyze", `{"temperature_c":38.2,"heart_rate":72}`)
	c.Set("user_id", uint64(11))
	if err := h.Analyze(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("stored %d analyses, want 1", len(store.saved))
	}
	got := store.saved[0]
	if got.UserID == nil || *got.UserID != 11 || got.Analysis != "keep hydrated" {
		t.Errorf("stored analysis = %+v", got)
	}
	if len(got.Flags) != 1 || got.Flags[0] != string(health.FlagHighFever) {
		t.Errorf("stored flags = %v", got.Flags)
	}

	// anonymous analyses have no history to land in
	c, _ = postJSON("/api/health/analyze", `{"temperature_c":36.5}`)
	_ = h.Analyze(c)
	if len(store.saved) != 1 {
		t.Errorf("anonymous analysis was stored")
	}
}
