package summary

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stocktide/stocktide/internal/shared"
)

// Cache stores the current-month report payload in Redis for a short TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

// NewCache constructs Cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (c *Cache) WithClock(clock func() time.Time) {
	if c != nil && clock != nil {
		c.clock = clock
	}
}

func cacheKey(month shared.Month) string {
	return "summary:current:" + month.String()
}

// Get returns the cached rows for the month, reporting a miss as ok=false.
func (c *Cache) Get(ctx context.Context, month shared.Month) ([]ProductSummary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, cacheKey(month)).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []ProductSummary
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// Set stores the rows for the month.
func (c *Cache) Set(ctx context.Context, month shared.Month, rows []ProductSummary) error {
	if c == nil || c.client == nil {
		return errors.New("summary cache not initialised")
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(month), payload, c.ttl).Err()
}

// InvalidateCurrentMonth drops the cached payload after a ledger write.
func (c *Cache) InvalidateCurrentMonth(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey(shared.MonthOf(c.clock()))).Err()
}
