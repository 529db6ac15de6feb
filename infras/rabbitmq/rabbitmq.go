package rabbitmq

//go:generate go run go.uber.org/mock/mockgen -source=./rabbitmq.go -destination=./mocks/rabbitmq_mock.go -package=mocks

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/shared/constant"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Delivery is a message pulled with manual acknowledgement.
type Delivery struct {
	Tag  uint64
	Body []byte
}

type Client interface {
	Publish(ctx context.Context, queue string, body []byte) error
	// Get pulls a single message without acking it; ok is false when the queue is empty.
	Get(queue string) (delivery Delivery, ok bool, err error)
	Ack(tag uint64) error
	Close() error
}

type rabbitClient struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool
}

func New(cfg *config.Config) (Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	log.Info().Msg("RabbitMQ client initialized")

	return &rabbitClient{conn: conn, ch: ch, declared: map[string]bool{}}, nil
}

func (c *rabbitClient) declare(queue string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.declared[queue] {
		return nil
	}

	if _, err := c.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	c.declared[queue] = true

	return nil
}

func (c *rabbitClient) Publish(ctx context.Context, queue string, body []byte) error {
	if err := c.declare(queue); err != nil {
		return err
	}

	err := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to publish to rabbitmq")

		return fmt.Errorf("failed to publish to rabbitmq: %w", err)
	}

	return nil
}

func (c *rabbitClient) Get(queue string) (Delivery, bool, error) {
	if err := c.declare(queue); err != nil {
		return Delivery{}, false, err
	}

	delivery, ok, err := c.ch.Get(queue, false)
	if err != nil {
		return Delivery{}, false, fmt.Errorf("failed to get from rabbitmq: %w", err)
	}

	if !ok {
		return Delivery{}, false, nil
	}

	return Delivery{Tag: delivery.DeliveryTag, Body: delivery.Body}, true, nil
}

func (c *rabbitClient) Ack(tag uint64) error {
	if err := c.ch.Ack(tag, false); err != nil {
		return fmt.Errorf("failed to ack rabbitmq delivery: %w", err)
	}

	return nil
}

func (c *rabbitClient) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close rabbitmq connection: %w", err)
		}
	}

	return nil
}
