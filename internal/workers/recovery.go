package workers

import (
	"context"
	"meetflow/config"
	"meetflow/infras/redis"
	webhookService "meetflow/internal/domains/webhook/service"

	"github.com/rs/zerolog/log"
)

// NewRecoveryTask re-enqueues webhook jobs left in flight with no queue entry.
// It runs at startup so a restart picks up what the previous process dropped.
func NewRecoveryTask(webhooks webhookService.Webhook, locker redis.Locker, cfg *config.Config) Task {
	return Task{
		Name:      TaskWebhookRecovery,
		Interval:  cfg.WebhookRecoveryInterval(),
		Immediate: true,
		Run: exclusive(locker, TaskWebhookRecovery, cfg.WorkerLockTTL(), func(ctx context.Context) error {
			recovered, err := webhooks.Recover(ctx)
			if err != nil {
				return err //nolint:wrapcheck
			}

			if recovered > 0 {
				log.Warn().Int("jobs", recovered).Msg("stale webhook jobs re-enqueued")
			}

			return nil
		}),
	}
}
