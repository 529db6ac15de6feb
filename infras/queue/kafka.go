package queue

import (
	"context"
	"errors"
	"fmt"
	"meetflow/infras/kafka"
	"sync"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

const kafkaFetchWait = 200 * time.Millisecond

type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
}

type Kafka struct {
	client kafka.Client
	topic  string
	group  string

	once   sync.Once
	reader kafkaReader
}

func NewKafka(client kafka.Client, topic, group string) *Kafka {
	return &Kafka{client: client, topic: topic, group: group}
}

func (k *Kafka) Enqueue(ctx context.Context, item Item) error {
	if err := k.client.SendMessages(ctx, k.topic, kafka.Message{Key: item.JobID, Value: item}); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", item.JobID, err)
	}

	return nil
}

// Dequeue waits briefly for a message so a poll on an idle topic returns empty.
func (k *Kafka) Dequeue(ctx context.Context) (Item, bool, error) {
	k.once.Do(func() {
		if k.reader == nil {
			k.reader = k.client.Reader(k.group, k.topic)
		}
	})

	if k.reader == nil {
		return Item{}, false, fmt.Errorf("kafka reader unavailable for topic %s", k.topic)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, kafkaFetchWait)
	defer cancel()

	msg, err := k.reader.FetchMessage(fetchCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return Item{}, false, nil
	}

	if err != nil {
		return Item{}, false, fmt.Errorf("failed to fetch job reference: %w", err)
	}

	item, err := kafka.Decode[Item](msg)
	if err != nil {
		// commit undecodable messages so a poison message cannot wedge the partition
		if commitErr := k.reader.CommitMessages(ctx, msg); commitErr != nil {
			return Item{}, false, fmt.Errorf("failed to commit job reference: %w", commitErr)
		}

		return Item{}, false, err
	}

	item.receipt = msg

	return item, true, nil
}

// Ack commits the item's offset. Until then a restart or rebalance redelivers it.
func (k *Kafka) Ack(ctx context.Context, item Item) error {
	msg, ok := item.receipt.(kafkaGo.Message)
	if !ok || k.reader == nil {
		return nil
	}

	if err := k.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to commit job reference %s: %w", item.JobID, err)
	}

	return nil
}
