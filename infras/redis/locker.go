package redis

//go:generate go run go.uber.org/mock/mockgen -source=./locker.go -destination=./mocks/locker_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const lockKeyPrefix = "lock:"

// ErrLockNotObtained is returned when another holder owns the key.
var ErrLockNotObtained = errors.New("lock not obtained")

// Locker hands out short-lived named locks shared by every replica.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type redisLocker struct {
	client *redislock.Client
}

func NewLocker(client *goRedis.Client) Locker {
	return &redisLocker{
		client: redislock.New(client),
	}
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}

	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	release := func() {
		// the caller's context may already be canceled at shutdown
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}

	return release, nil
}
