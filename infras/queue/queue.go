// Package queue moves webhook job references from ingestion to the worker.
// Delivery is at-least-once: a durable driver redelivers anything dequeued but
// not acked. Consumers must tolerate duplicates.
package queue

//go:generate go run go.uber.org/mock/mockgen -source=./queue.go -destination=./mocks/queue_mock.go -package=mocks

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/infras/kafka"
	"meetflow/infras/rabbitmq"

	"github.com/rs/zerolog/log"
)

const (
	DriverMemory   = "memory"
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"

	defaultName = "webhook-jobs"
)

type Item struct {
	JobID string `json:"jobId"`

	// broker handle of the delivery, set by Dequeue
	receipt any
}

type Queue interface {
	Enqueue(ctx context.Context, item Item) error
	// Dequeue returns ok=false when nothing is ready.
	Dequeue(ctx context.Context) (item Item, ok bool, err error)
	// Ack settles a dequeued item once it has been handled.
	Ack(ctx context.Context, item Item) error
}

// Name is the topic or queue the durable drivers use.
func Name(cfg *config.Config) string {
	if cfg.Queue.Name == "" {
		return defaultName
	}

	return cfg.Queue.Name
}

// New picks a driver by config. Durable drivers need their client constructed by the caller.
func New(cfg *config.Config, kafkaClient kafka.Client, rabbitClient rabbitmq.Client) (Queue, error) {
	switch cfg.Queue.Driver {
	case "", DriverMemory:
		log.Info().Msg("Webhook queue using in-memory driver")

		return NewMemory(), nil
	case DriverKafka:
		if kafkaClient == nil {
			return nil, fmt.Errorf("queue driver %s requires a kafka client", DriverKafka)
		}

		return NewKafka(kafkaClient, Name(cfg), cfg.Kafka.ConsumerGroup), nil
	case DriverRabbitMQ:
		if rabbitClient == nil {
			return nil, fmt.Errorf("queue driver %s requires a rabbitmq client", DriverRabbitMQ)
		}

		return NewRabbitMQ(rabbitClient, Name(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}

// Open constructs the configured driver along with the broker client it needs.
// The returned cleanup closes that client.
func Open(cfg *config.Config) (Queue, func(), error) {
	var (
		kafkaClient  kafka.Client
		rabbitClient rabbitmq.Client
		cleanup      = func() {}
	)

	switch cfg.Queue.Driver {
	case DriverKafka:
		kafkaClient = kafka.New(cfg)
		cleanup = closer(kafkaClient.Close, DriverKafka)
	case DriverRabbitMQ:
		client, err := rabbitmq.New(cfg)
		if err != nil {
			return nil, nil, err //nolint:wrapcheck
		}

		rabbitClient = client
		cleanup = closer(client.Close, DriverRabbitMQ)
	}

	q, err := New(cfg, kafkaClient, rabbitClient)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	return q, cleanup, nil
}

func closer(fn func() error, driver string) func() {
	return func() {
		if err := fn(); err != nil {
			log.Warn().Err(err).Str("driver", driver).Msg("failed to close queue client")
		}
	}
}
