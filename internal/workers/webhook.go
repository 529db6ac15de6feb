package workers

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/infras/queue"
	webhookModel "meetflow/internal/domains/webhook/model"
	webhookService "meetflow/internal/domains/webhook/service"
	"meetflow/shared/logger"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// WebhookWorker drains the job queue and schedules retries.
type WebhookWorker struct {
	queue      queue.Queue
	webhooks   webhookService.Webhook
	retryDelay time.Duration

	draining atomic.Bool

	mu      sync.Mutex
	retries map[*time.Timer]struct{}
	stopped bool
}

func NewWebhookWorker(q queue.Queue, webhooks webhookService.Webhook, cfg *config.Config) *WebhookWorker {
	return &WebhookWorker{
		queue:      q,
		webhooks:   webhooks,
		retryDelay: cfg.WebhookMaxBackoff(),
		retries:    map[*time.Timer]struct{}{},
	}
}

func (w *WebhookWorker) Task(cfg *config.Config) Task {
	return Task{
		Name:     TaskWebhookDrain,
		Interval: cfg.WebhookPollInterval(),
		Run:      w.Drain,
	}
}

// Drain processes queued jobs until the queue is empty. Only one drain runs at a time.
func (w *WebhookWorker) Drain(ctx context.Context) error {
	if !w.draining.CompareAndSwap(false, true) {
		return nil
	}
	defer w.draining.Store(false)

	for ctx.Err() == nil {
		item, ok, err := w.queue.Dequeue(ctx)
		if err != nil {
			return fmt.Errorf("failed to dequeue webhook job: %w", err)
		}

		if !ok {
			return nil
		}

		outcome, err := w.webhooks.Process(ctx, item.JobID)

		switch {
		case err != nil:
			// the job was not finalised; hand it back once the store recovers
			log.Error().Err(err).Str("job_id", item.JobID).Msg("failed to process webhook job")
			w.retry(item.JobID, w.retryDelay)
		case outcome.Status == webhookModel.StatusPending:
			w.retry(item.JobID, outcome.RetryIn)
		}

		// the job row, not the delivery, carries the retry from here on
		err = w.queue.Ack(ctx, item)
		logger.BestEffort(err, "ack webhook job", map[string]string{"job_id": item.JobID})
	}

	return nil
}

func (w *WebhookWorker) retry(jobID string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	var timer *time.Timer

	timer = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.retries, timer)
		w.mu.Unlock()

		err := w.queue.Enqueue(context.Background(), queue.Item{JobID: jobID})
		logger.BestEffort(err, "re-enqueue webhook job", map[string]string{"job_id": jobID})
	})

	w.retries[timer] = struct{}{}
}

// Stop cancels scheduled retries. Their jobs stay pending in the database until
// the recovery task re-enqueues them.
func (w *WebhookWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true

	for timer := range w.retries {
		timer.Stop()
	}

	if len(w.retries) > 0 {
		log.Warn().Int("jobs", len(w.retries)).Msg("scheduled webhook retries dropped on shutdown")
	}

	w.retries = map[*time.Timer]struct{}{}
}

// PendingRetries reports how many re-enqueues are scheduled.
func (w *WebhookWorker) PendingRetries() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.retries)
}
