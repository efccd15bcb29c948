package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// LocalPublisher hands events straight to a store in-process. It stands in
// for the broker when the database is configured but RabbitMQ is not, so
// history is still recorded.
type LocalPublisher struct {
	Store AnalysisStore
}

// PublishAnalysisCompleted stores ev through the same path the consumer
// uses.
func (p LocalPublisher) PublishAnalysisCompleted(ctx context.Context, ev AnalysisCompletedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return HandleMessage(ctx, p.Store, body)
}
