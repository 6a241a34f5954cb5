package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/config"
)

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher forwards events as JSON messages to a durable queue.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel publishChannel
	closer  func() error
	queue   string
	timeout time.Duration
	logger  *zap.Logger
}

// DialAMQP connects to the broker and declares the event queue. It returns
// nil, nil when no DSN is configured.
func DialAMQP(cfg config.AMQPConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	if cfg.DSN == "" {
		logger.Info("AMQP_DSN not provided; event forwarding disabled")
		return nil, nil
	}
	conn, err := amqp.Dial(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", cfg.Queue, err)
	}
	logger.Info("connected to amqp broker", zap.String("queue", cfg.Queue))

	p := newAMQPPublisher(ch, cfg.Queue, time.Duration(cfg.PublishTimeout)*time.Second, logger)
	p.conn = conn
	p.closer = func() error {
		ch.Close()
		return conn.Close()
	}
	return p, nil
}

func newAMQPPublisher(ch publishChannel, queue string, timeout time.Duration, logger *zap.Logger) *AMQPPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AMQPPublisher{channel: ch, queue: queue, timeout: timeout, logger: logger}
}

// Handle publishes one event. It is an EventHandler.
func (p *AMQPPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	p.logger.Debug("event forwarded", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
	return nil
}

// Close shuts the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}
