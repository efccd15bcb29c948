// Package handler exposes the HTTP handlers for the pages, the assistant
// endpoints and the optional account API.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/ai-health-analyze/internal/assistant"
	"github.com/iliyamo/ai-health-analyze/internal/health"
	"github.com/iliyamo/ai-health-analyze/internal/middleware"
	"github.com/iliyamo/ai-health-analyze/internal/queue"
)

// EventPublisher receives an event after every structured analysis.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, ev queue.AnalysisCompletedEvent) error
}

// AssistantHandler serves /api/chat and /api/health/analyze.
type AssistantHandler struct {
	Completer assistant.Completer
	Prompts   assistant.Prompts
	Language  string
	Events    EventPublisher // may be nil
	Logger    zerolog.Logger

	// CompletionTimeout bounds a single call to the completion service.
	CompletionTimeout time.Duration
}

func NewAssistantHandler(c assistant.Completer, catalog assistant.Catalog, lang string, events EventPublisher, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		Completer:         c,
		Prompts:           catalog.For(lang),
		Language:          lang,
		Events:            events,
		Logger:            logger,
		CompletionTimeout: 90 * time.Second,
	}
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat forwards a free-text message to the completion service. Failures are
// reported inside a 200 response so the page can show them inline.
func (h *AssistantHandler) Chat(c echo.Context) error {
	var req chatReq
	_ = c.Bind(&req) // malformed bodies behave like an empty message
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message is required"})
	}

	answer, err := h.complete(c, h.Prompts.ChatPrompt(msg))
	if err != nil {
		h.Logger.Warn().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("chat completion failed")
		answer = h.Prompts.ChatErrorPrefix + err.Error()
	}
	return c.JSON(http.StatusOK, echo.Map{"response": answer})
}

type analyzeResp struct {
	Flags    []string      `json:"flags"`
	Analysis string        `json:"analysis"`
	Metrics  health.Record `json:"metrics"`
}

// Analyze runs free-text mode when the body carries a non-empty free_text,
// otherwise structured mode: normalize, flag, summarize and ask the
// completion service for an assessment.
func (h *AssistantHandler) Analyze(c echo.Context) error {
	raw := decodeForm(c.Request().Body)

	if text := freeText(raw); text != "" {
		answer, err := h.complete(c, h.Prompts.FreeTextPrompt(text))
		if err != nil {
			h.Logger.Warn().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("free-text completion failed")
			answer = h.Prompts.AnalysisErrorPrefix + err.Error()
		}
		return c.JSON(http.StatusOK, echo.Map{"analysis": answer, "flags": []string{}})
	}

	rec := health.Normalize(raw)
	flags := health.EvaluateFlags(rec)
	texts := health.FlagTexts(flags, h.Language)
	summary := health.Summary(rec, flags, h.Language)

	answer, err := h.complete(c, h.Prompts.AnalysisPrompt(summary))
	degraded := err != nil
	if degraded {
		h.Logger.Warn().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("analysis completion failed")
		answer = h.Prompts.AnalysisErrorPrefix + err.Error()
	}

	h.publish(c, rec, texts, answer, degraded)
	return c.JSON(http.StatusOK, analyzeResp{Flags: texts, Analysis: answer, Metrics: rec})
}

func (h *AssistantHandler) complete(c echo.Context, p assistant.Prompt) (string, error) {
	if h.Completer == nil {
		return "", assistant.ErrNotConfigured
	}
	ctx := c.Request().Context()
	if h.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.CompletionTimeout)
		defer cancel()
	}
	return h.Completer.Complete(ctx, p)
}

// publish is best effort; the response never depends on it.
func (h *AssistantHandler) publish(c echo.Context, rec health.Record, flags []string, answer string, degraded bool) {
	if h.Events == nil {
		return
	}
	metrics, err := json.Marshal(rec)
	if err != nil {
		h.Logger.Error().Err(err).Msg("marshal metrics")
		return
	}
	ev := queue.AnalysisCompletedEvent{
		EventID:     uuid.NewString(),
		Language:    h.Language,
		Metrics:     metrics,
		Flags:       flags,
		Analysis:    answer,
		Degraded:    degraded,
		CompletedAt: time.Now().UTC(),
	}
	if id, ok := middleware.UserID(c); ok {
		ev.UserID = &id
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 3*time.Second)
	defer cancel()
	if err := h.Events.PublishAnalysisCompleted(ctx, ev); err != nil {
		h.Logger.Warn().Err(err).Str("event_id", ev.EventID).Msg("publish analysis event failed")
	}
}

// decodeForm reads a JSON object body. Anything else yields an empty map.
func decodeForm(body io.Reader) map[string]any {
	raw := map[string]any{}
	if body == nil {
		return raw
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return raw
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return raw
	}
	return m
}

func freeText(raw map[string]any) string {
	s, _ := raw["free_text"].(string)
	return strings.TrimSpace(s)
}
