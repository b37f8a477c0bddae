package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/wl39/todo-sync/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyDayPrefix     = "todo:day:"
	keySummaryPrefix = "todo:summary:"
)

// TodoCache caches per-day lists and monthly summaries in Redis, keyed by
// owner. Every write-path mutation invalidates the owner's keys.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

func dayKey(userID int64, date time.Time) string {
	return keyDayPrefix + strconv.FormatInt(userID, 10) + ":" + date.Format("2006-01-02")
}

func summaryKey(userID int64, firstDay, lastDay time.Time) string {
	return keySummaryPrefix + strconv.FormatInt(userID, 10) + ":" +
		firstDay.Format("2006-01-02") + ":" + lastDay.Format("2006-01-02")
}

// GetDay returns the cached day list or nil on miss.
func (c *TodoCache) GetDay(ctx context.Context, userID int64, date time.Time) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, dayKey(userID, date)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetDay stores the day list in cache.
func (c *TodoCache) SetDay(ctx context.Context, userID int64, date time.Time, list []dom.Todo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, dayKey(userID, date), b, c.ttl).Err()
}

// GetSummary returns the cached monthly summary or nil on miss.
func (c *TodoCache) GetSummary(ctx context.Context, userID int64, firstDay, lastDay time.Time) ([]dom.DaySummary, error) {
	b, err := c.rdb.Get(ctx, summaryKey(userID, firstDay, lastDay)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []dom.DaySummary
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetSummary stores the monthly summary in cache.
func (c *TodoCache) SetSummary(ctx context.Context, userID int64, firstDay, lastDay time.Time, rows []dom.DaySummary) error {
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, summaryKey(userID, firstDay, lastDay), b, c.ttl).Err()
}

// InvalidateOwner removes every cached key of one owner (cache invalidation on write).
func (c *TodoCache) InvalidateOwner(ctx context.Context, userID int64) error {
	uid := strconv.FormatInt(userID, 10)
	for _, pattern := range []string{keyDayPrefix + uid + ":*", keySummaryPrefix + uid + ":*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}
