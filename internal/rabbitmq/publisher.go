package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"guild-gateway/internal/common/logging"
)

// Publisher enqueues delivery messages onto the same queue the
// consumer reads. It exists for smoke-testing the delivery path; the
// gateway itself only consumes.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger logging.Logger
}

// NewPublisher connects and declares the delivery queue
func NewPublisher(url, queue string) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("queue url is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &Publisher{
		conn:  conn,
		ch:    ch,
		queue: queue,
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("component", "queue_publisher"),
			logging.String("queue", queue),
		),
	}, nil
}

// Publish enqueues one delivery message
func (p *Publisher) Publish(userID, content string) error {
	body, err := json.Marshal(deliveryMessage{UserID: userID, Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery message: %w", err)
	}

	err = p.ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish delivery message: %w", err)
	}

	p.logger.Debug("Delivery message published",
		logging.String("user_id", userID),
	)
	return nil
}

// Close tears down the channel and connection
func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
