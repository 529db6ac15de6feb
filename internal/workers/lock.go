package workers

import (
	"context"
	"errors"
	"fmt"
	"meetflow/infras/redis"
	"time"

	"github.com/rs/zerolog/log"
)

// exclusive runs fn only on the replica holding the named lock for this tick.
// Without a locker every replica runs fn.
func exclusive(locker redis.Locker, key string, ttl time.Duration, fn func(ctx context.Context) error) func(ctx context.Context) error {
	if locker == nil {
		return fn
	}

	return func(ctx context.Context) error {
		release, err := locker.Obtain(ctx, key, ttl)
		if err != nil {
			if errors.Is(err, redis.ErrLockNotObtained) {
				log.Debug().Str("lock", key).Msg("tick skipped, another replica holds the lock")

				return nil
			}

			return fmt.Errorf("failed to obtain lock %s: %w", key, err)
		}
		defer release()

		return fn(ctx)
	}
}
