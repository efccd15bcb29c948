// Package queue defines the messages exchanged over RabbitMQ and the
// consumer that stores them.
package queue

import (
	"encoding/json"
	"time"

	"github.com/iliyamo/ai-health-analyze/internal/model"
)

// AnalysisQueueName is the durable queue carrying AnalysisCompletedEvent.
const AnalysisQueueName = "health.analysis.completed"

// AnalysisCompletedEvent is published after every structured analysis. It
// carries everything needed to keep the analysis in the user's history
// without calling back into the web process.
type AnalysisCompletedEvent struct {
	EventID     string          `json:"event_id"`
	UserID      *uint64         `json:"user_id,omitempty"`
	Language    string          `json:"language"`
	Metrics     json.RawMessage `json:"metrics"`
	Flags       []string        `json:"flags"`
	Analysis    string          `json:"analysis"`
	Degraded    bool            `json:"degraded"`
	CompletedAt time.Time       `json:"completed_at"`
}

// ToModel converts the event into the stored representation.
func (e AnalysisCompletedEvent) ToModel() model.Analysis {
	return model.Analysis{
		EventID:   e.EventID,
		UserID:    e.UserID,
		Metrics:   e.Metrics,
		Flags:     e.Flags,
		Analysis:  e.Analysis,
		Degraded:  e.Degraded,
		CreatedAt: e.CompletedAt,
	}
}
