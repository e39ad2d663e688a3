package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/docvault/docvault-backend/internal/logger"
)

// TaskCounter is a day-bucketed atomic counter for outreach-task creation.
// INCR on a key scoped to (user, source, local day) replaces the
// count-then-insert pattern, so concurrent calls cannot exceed the cap.
type TaskCounter struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewTaskCounter connects using REDIS_ADDR. A missing address is an error;
// callers that want to run without Redis pass a nil limiter downstream.
func NewTaskCounter(log *logger.Logger) (*TaskCounter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &TaskCounter{
		log: log.With("service", "RedisTaskCounter"),
		rdb: rdb,
	}, nil
}

func taskKey(userID uuid.UUID, source string, day time.Time) string {
	return fmt.Sprintf("tasks:%s:%s:%s", userID, source, day.Format("2006-01-02"))
}

// Allow increments the day bucket and reports whether the new count is
// within the limit. The key expires two days after creation; the exact TTL
// does not matter as long as it outlives the local calendar day.
func (tc *TaskCounter) Allow(ctx context.Context, userID uuid.UUID, source string, limit int) (bool, error) {
	if tc == nil || tc.rdb == nil {
		return false, fmt.Errorf("redis task counter not initialized")
	}

	key := taskKey(userID, source, time.Now())

	count, err := tc.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := tc.rdb.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
			tc.log.Warn("failed to set expiry on task counter", "key", key, "error", err)
		}
	}

	if count > int64(limit) {
		// Undo the increment so a later retry in the same window is not
		// penalized for this rejected attempt.
		if err := tc.rdb.Decr(ctx, key).Err(); err != nil {
			tc.log.Warn("failed to decrement task counter", "key", key, "error", err)
		}
		return false, nil
	}

	return true, nil
}

func (tc *TaskCounter) Close() error {
	if tc == nil || tc.rdb == nil {
		return nil
	}
	return tc.rdb.Close()
}
