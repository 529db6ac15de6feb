package workers

import (
	"context"
	"meetflow/config"
	"meetflow/infras/redis"
	bookingService "meetflow/internal/domains/booking/service"
)

// NewExpirySweeper expires holds whose TTL ran out.
func NewExpirySweeper(bookings bookingService.Booking, locker redis.Locker, cfg *config.Config) Task {
	return Task{
		Name:     TaskHoldExpiry,
		Interval: cfg.ExpiryInterval(),
		Run: exclusive(locker, TaskHoldExpiry, cfg.WorkerLockTTL(), func(ctx context.Context) error {
			_, err := bookings.ExpireHolds(ctx)

			return err //nolint:wrapcheck
		}),
	}
}
