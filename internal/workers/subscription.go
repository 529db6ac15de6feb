package workers

import (
	"context"
	"meetflow/config"
	"meetflow/infras/redis"
	subscriptionService "meetflow/internal/domains/subscription/service"

	"github.com/rs/zerolog/log"
)

// NewSubscriptionLoop keeps provider push subscriptions alive.
func NewSubscriptionLoop(subscriptions subscriptionService.Subscription, locker redis.Locker, cfg *config.Config) Task {
	return Task{
		Name:     TaskSubscriptionRenewal,
		Interval: cfg.SubscriptionInterval(),
		Run: exclusive(locker, TaskSubscriptionRenewal, cfg.WorkerLockTTL(), func(ctx context.Context) error {
			res, err := subscriptions.EnsureSubscriptions(ctx)
			if err != nil {
				return err //nolint:wrapcheck
			}

			if res.Created+res.Renewed+res.Failed > 0 {
				log.Info().Int("created", res.Created).Int("renewed", res.Renewed).Int("failed", res.Failed).Msg("subscriptions ensured")
			}

			return nil
		}),
	}
}
