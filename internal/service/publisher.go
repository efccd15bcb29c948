// Package service holds outbound integrations used by the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/ai-health-analyze/internal/queue"
)

// Publisher publishes analysis events to RabbitMQ. It keeps one connection
// and channel open and redials after the broker drops them. A Publisher
// created with an empty URL silently discards events.
type Publisher struct {
	url    string
	logger zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for url. No connection is made until the
// first event is published.
func NewPublisher(url string, logger zerolog.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// PublishAnalysisCompleted sends ev to the analysis queue as a persistent
// JSON message.
func (p *Publisher) PublishAnalysisCompleted(ctx context.Context, ev queue.AnalysisCompletedEvent) error {
	if !p.Enabled() {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx,
		"",                      // default exchange
		queue.AnalysisQueueName, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.EventID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing when needed. Callers hold p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.resetLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue.AnalysisQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.logger.Info().Str("queue", queue.AnalysisQueueName).Msg("publisher connected")
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}
