package ledger

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "ledger:fees:version"

// FeeDetailsCache wraps Redis based caching of fee summaries with a global
// version token. Mutations bump the version instead of deleting keys, so
// stale entries age out via TTL.
type FeeDetailsCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewFeeDetailsCache instantiates the cache helper.
func NewFeeDetailsCache(client *redis.Client, ttl time.Duration) *FeeDetailsCache {
	return &FeeDetailsCache{client: client, ttl: ttl}
}

// Fetch loads the cached fee details for an admission or populates them with
// the loader. Concurrent misses for the same key share one loader call.
func (c *FeeDetailsCache) Fetch(ctx context.Context, admissionID int64, loader func(context.Context) (*FeeDetails, error)) (*FeeDetails, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key, err := c.buildKey(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var details FeeDetails
		if err := json.Unmarshal(payload, &details); err == nil {
			return &details, nil
		}
	} else if err != redis.Nil {
		return nil, err
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		details, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return details, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*FeeDetails), nil
}

// Bump invalidates every cached fee summary by incrementing the version.
func (c *FeeDetailsCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *FeeDetailsCache) buildKey(ctx context.Context, admissionID int64) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return "ledger:fees:" + strconv.FormatInt(admissionID, 10) + ":" + strconv.FormatInt(ver, 10), nil
}

func (c *FeeDetailsCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}
