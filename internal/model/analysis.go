package model

import (
	"encoding/json"
	"time"
)

// Analysis is one structured health analysis kept in `health_analyses`.
// Metrics holds the normalized record as JSON exactly as it was returned to
// the client. Degraded marks answers produced while the completion service
// was unavailable.
type Analysis struct {
	ID        uint64          `json:"id"`
	EventID   string          `json:"event_id"`
	UserID    *uint64         `json:"user_id,omitempty"`
	Metrics   json.RawMessage `json:"metrics"`
	Flags     []string        `json:"flags"`
	Analysis  string          `json:"analysis"`
	Degraded  bool            `json:"degraded"`
	CreatedAt time.Time       `json:"created_at"`
}
