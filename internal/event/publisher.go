package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QuoteEventPublisher publishes underwriting workflow events to RabbitMQ
type QuoteEventPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewQuoteEventPublisher creates a new workflow event publisher
func NewQuoteEventPublisher(conn *RabbitMQConnection) *QuoteEventPublisher {
	return &QuoteEventPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// Publish pushes a workflow event to the quote_underwriting_events queue
func (p *QuoteEventPublisher) Publish(ctx context.Context, evt QuoteEventModel) error {
	// Ensure the queue exists
	_, err := p.conn.Channel.QueueDeclare(
		QuoteEventsQueue, // queue name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(evt)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal quote event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",               // exchange
		QuoteEventsQueue, // routing key (queue name)
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish quote event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Quote event published",
		"queue", QuoteEventsQueue,
		"type", evt.Type,
		"quote_id", evt.QuoteID,
	)

	return nil
}
