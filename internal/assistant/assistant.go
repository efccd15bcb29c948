// Package assistant talks to the external text-completion service that
// writes the conversational answers for the chat and analyze endpoints.
package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("completion service is not configured")
	// ErrEmptyResponse is returned when the service answers without text.
	ErrEmptyResponse = errors.New("completion service returned no answer")
)

// Prompt is a single completion request. System may be empty.
type Prompt struct {
	System string
	User   string
}

// Completer produces a single text answer for a prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Options configures the OpenAI-compatible client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAI is a Completer backed by the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a client from opts. A missing API key is not an error
// here; every call then fails with ErrNotConfigured so the caller can report
// it as a degraded answer.
func NewOpenAI(opts Options) *OpenAI {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return &OpenAI{model: model}
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// Model returns the configured model name.
func (o *OpenAI) Model() string { return o.model }

// Complete sends p as a chat completion and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	if o.client == nil {
		return "", ErrNotConfigured
	}
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
