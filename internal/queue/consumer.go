package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/ai-health-analyze/internal/model"
)

// AnalysisStore persists analyses received from the broker.
type AnalysisStore interface {
	Insert(ctx context.Context, a model.Analysis) error
}

// StartAnalysisConsumer connects to RabbitMQ, declares the analysis queue
// (durable) and stores every event that belongs to a signed-in user. It
// reconnects with exponential backoff and returns only when ctx is done.
func StartAnalysisConsumer(ctx context.Context, url string, store AnalysisStore, logger zerolog.Logger) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn().Err(err).Dur("retry_in", backoff).Msg("analysis consumer: dial failed")
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, store, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn().Err(err).Msg("analysis consumer: consume loop ended, reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, store AnalysisStore, logger zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn().Err(err).Msg("analysis consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(AnalysisQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(AnalysisQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			handleDelivery(ctx, store, d, logger)
		}
	}
}

// handleDelivery acks stored (or skipped) events, drops malformed ones and
// requeues the rest after requeueDelay.
func handleDelivery(ctx context.Context, store AnalysisStore, d amqp.Delivery, logger zerolog.Logger) {
	err := HandleMessage(ctx, store, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrMalformed):
		logger.Error().Err(err).Msg("analysis consumer: dropping malformed message")
		_ = d.Nack(false, false) // a bad payload would loop forever
	default:
		logger.Warn().Err(err).Dur("retry_in", requeueDelay).Msg("analysis consumer: store failed, requeueing")
		sleepCtx(ctx, requeueDelay)
		_ = d.Nack(false, true)
	}
}

// ErrMalformed marks payloads that can never be stored. Any other error
// returned by HandleMessage is worth retrying.
var ErrMalformed = errors.New("malformed analysis event")

// requeueDelay spaces out redeliveries while the store is failing.
var requeueDelay = 2 * time.Second

// HandleMessage decodes one event and stores it. Anonymous analyses are
// acknowledged without being stored since nobody could read them back.
func HandleMessage(ctx context.Context, store AnalysisStore, body []byte) error {
	var ev AnalysisCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.EventID == "" {
		return fmt.Errorf("%w: missing event_id", ErrMalformed)
	}
	if ev.UserID == nil {
		return nil
	}
	if ev.CompletedAt.IsZero() {
		ev.CompletedAt = time.Now().UTC()
	}
	storeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return store.Insert(storeCtx, ev.ToModel())
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
