// Package rabbitmq carries the asynchronous delivery path: a consumer
// that forwards queued delivery messages as direct messages through the
// directory client, and a publisher used to enqueue them.
package rabbitmq

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/streadway/amqp"

	"guild-gateway/internal/common/logging"
	"guild-gateway/internal/directory"
)

// State is the consumer lifecycle state
type State int32

const (
	// StateDisconnected means no queue connection exists
	StateDisconnected State = iota
	// StateConnecting means the dial is in progress
	StateConnecting
	// StateSubscribed means the consumer is waiting for messages
	StateSubscribed
	// StateProcessing means a message is being handled
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// deliveryMessage is the queue wire format
type deliveryMessage struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

// acker is the slice of amqp.Delivery the handler needs
type acker interface {
	Ack(multiple bool) error
}

// Consumer subscribes to the delivery queue and forwards each message
// as a direct message. Messages are acknowledged after the delivery
// attempt completes, whatever its outcome; the queue provides no
// redelivery for failed sends in this design. Malformed payloads are
// dropped with a warning so they cannot poison the queue.
type Consumer struct {
	url       string
	queue     string
	directory directory.Client
	logger    logging.Logger

	conn  *amqp.Connection
	ch    *amqp.Channel
	state atomic.Int32
}

// NewConsumer builds a consumer for the given queue. An empty url
// leaves the feature disabled: Start becomes a no-op and the consumer
// stays disconnected.
func NewConsumer(url, queue string, dir directory.Client) *Consumer {
	return &Consumer{
		url:       url,
		queue:     queue,
		directory: dir,
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("component", "queue_consumer"),
			logging.String("queue", queue),
		),
	}
}

// State returns the current lifecycle state
func (c *Consumer) State() State {
	return State(c.state.Load())
}

func (c *Consumer) setState(s State) {
	c.state.Store(int32(s))
}

// Start connects, declares the queue, and consumes messages one at a
// time until ctx is cancelled or the channel closes. A connect failure
// is returned so the caller can log it and run without the feature;
// the consumer does not retry in-process.
func (c *Consumer) Start(ctx context.Context) error {
	if c.url == "" {
		c.logger.Info("No queue endpoint configured, consumer disabled")
		return nil
	}

	c.setState(StateConnecting)

	conn, err := amqp.Dial(c.url)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		c.setState(StateDisconnected)
		return err
	}

	// One unacknowledged message at a time preserves receive order
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		c.setState(StateDisconnected)
		return err
	}

	if _, err := ch.QueueDeclare(c.queue, false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		c.setState(StateDisconnected)
		return err
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		c.setState(StateDisconnected)
		return err
	}

	c.conn = conn
	c.ch = ch
	c.setState(StateSubscribed)
	c.logger.Info("Subscribed to delivery queue")

	go c.consume(ctx, deliveries)

	return nil
}

func (c *Consumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Queue subscription cancelled",
				logging.NamedError("reason", ctx.Err()),
			)
			c.setState(StateDisconnected)
			return
		case msg, ok := <-deliveries:
			if !ok {
				c.logger.Info("Queue channel closed")
				c.setState(StateDisconnected)
				return
			}

			c.setState(StateProcessing)
			c.handleDelivery(ctx, msg.Body, msg)
			c.setState(StateSubscribed)
		}
	}
}

// handleDelivery processes one queue message and always acknowledges
// it: malformed payloads are dropped, delivery failures are logged but
// not retried.
func (c *Consumer) handleDelivery(ctx context.Context, body []byte, ack acker) {
	defer func() {
		if err := ack.Ack(false); err != nil {
			c.logger.Warn("Failed to acknowledge message",
				logging.NamedError("error", err),
			)
		}
	}()

	var msg deliveryMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.Warn("Dropping malformed delivery message",
			logging.NamedError("error", err),
		)
		return
	}
	if msg.UserID == "" {
		c.logger.Warn("Dropping delivery message without userId")
		return
	}

	if err := c.directory.SendDirectMessage(ctx, msg.UserID, msg.Content); err != nil {
		c.logger.Error("Direct message delivery failed", err,
			logging.String("user_id", msg.UserID),
		)
		return
	}

	c.logger.Debug("Direct message delivered",
		logging.String("user_id", msg.UserID),
	)
}

// Close tears down the channel and connection
func (c *Consumer) Close() error {
	c.setState(StateDisconnected)

	if c.ch != nil {
		c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
