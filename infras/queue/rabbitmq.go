package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"meetflow/infras/rabbitmq"
)

type RabbitMQ struct {
	client rabbitmq.Client
	name   string
}

func NewRabbitMQ(client rabbitmq.Client, name string) *RabbitMQ {
	return &RabbitMQ{client: client, name: name}
}

func (r *RabbitMQ) Enqueue(ctx context.Context, item Item) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal job reference: %w", err)
	}

	if err := r.client.Publish(ctx, r.name, body); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", item.JobID, err)
	}

	return nil
}

func (r *RabbitMQ) Dequeue(_ context.Context) (Item, bool, error) {
	delivery, ok, err := r.client.Get(r.name)
	if err != nil || !ok {
		return Item{}, false, err //nolint:wrapcheck
	}

	var item Item
	if err := json.Unmarshal(delivery.Body, &item); err != nil {
		// drop a poison message instead of redelivering it forever
		if ackErr := r.client.Ack(delivery.Tag); ackErr != nil {
			return Item{}, false, fmt.Errorf("failed to ack job reference: %w", ackErr)
		}

		return Item{}, false, fmt.Errorf("failed to unmarshal job reference: %w", err)
	}

	item.receipt = delivery.Tag

	return item, true, nil
}

// Ack settles the delivery. Unacked deliveries return to the queue when the channel closes.
func (r *RabbitMQ) Ack(_ context.Context, item Item) error {
	tag, ok := item.receipt.(uint64)
	if !ok {
		return nil
	}

	if err := r.client.Ack(tag); err != nil {
		return fmt.Errorf("failed to ack job reference %s: %w", item.JobID, err)
	}

	return nil
}
