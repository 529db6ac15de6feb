package di

import (
	"context"
	"meetflow/config"
	"meetflow/infras/metrics"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/infras/redis"
	bookingService "meetflow/internal/domains/booking/service"
	subscriptionService "meetflow/internal/domains/subscription/service"
	webhookService "meetflow/internal/domains/webhook/service"
	"meetflow/internal/workers"
	"meetflow/transport/http"

	goRedis "github.com/redis/go-redis/v9"
)

// App is everything cmd/app starts and stops.
type App struct {
	HTTP     *http.HTTP
	Workers  *workers.Runner
	Webhooks *workers.WebhookWorker
	Otel     otel.Otel
}

func provideRunner(
	cfg *config.Config,
	metrics *metrics.Metrics,
	otel otel.Otel,
	bookings bookingService.Booking,
	subscriptions subscriptionService.Subscription,
	locker redis.Locker,
	webhooks webhookService.Webhook,
	webhookWorker *workers.WebhookWorker,
) *workers.Runner {
	return workers.NewRunner(metrics, otel,
		workers.NewExpirySweeper(bookings, locker, cfg),
		webhookWorker.Task(cfg),
		workers.NewRecoveryTask(webhooks, locker, cfg),
		workers.NewSubscriptionLoop(subscriptions, locker, cfg),
	)
}

// provideHealthChecks lists what /health pings before answering OK.
func provideHealthChecks(db *postgres.Connection, client *goRedis.Client) http.HealthChecks {
	return http.HealthChecks{
		"postgres": db.Write.PingContext,
		"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err() //nolint:wrapcheck
		},
	}
}
