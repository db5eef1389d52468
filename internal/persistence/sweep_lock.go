package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

const sweepLockPrefix = "coverage:sweep:"

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`)

// SweepLock serializes coverage sweeps per date across processes with SET NX PX.
type SweepLock struct {
	client   redis.UniversalClient
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewSweepLock builds a lock over client. Lock waits up to ttl for a competing sweep.
func NewSweepLock(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *SweepLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepLock{
		client:   client,
		ttl:      ttl,
		wait:     ttl,
		interval: 50 * time.Millisecond,
		logger:   logger,
	}
}

// SweepLockKey returns the redis key guarding sweeps of date.
func SweepLockKey(date string) string {
	return sweepLockPrefix + date
}

// Lock acquires the per-date lock, polling until it is free or the wait elapses.
func (l *SweepLock) Lock(ctx context.Context, date string) (func(context.Context) error, error) {
	key := SweepLockKey(date)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire sweep lock %s: %w", key, err)
		}
		if ok {
			l.logger.Debug("sweep lock acquired", zap.String("key", key))
			return func(ctx context.Context) error {
				if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
					return fmt.Errorf("release sweep lock %s: %w", key, err)
				}
				return nil
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, apperrors.NewConflict("a coverage sweep is already running for this date", map[string]any{"date": date})
		}

		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
