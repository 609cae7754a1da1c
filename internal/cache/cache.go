// Package cache implements the cache-aside read path shared by the
// request pipeline: check the store, fall back to the producer on a
// miss, then populate the store with the resource's TTL.
//
// Entries are advisory. A miss, a store error, or a corrupt entry all
// degrade to calling the producer; absence of a key never implies the
// resource does not exist.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"guild-gateway/internal/common/logging"
)

// Store is the key-value contract the cache-aside helper needs.
// A nil Store is valid and behaves as an always-miss cache.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
}

// Fetch runs the cache-aside flow for key: on a hit the cached JSON is
// decoded into T, on a miss produce is called and its result stored
// with the given TTL. Store failures are logged and degrade to a miss;
// they never fail the request.
func Fetch[T any](ctx context.Context, store Store, key string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	var zero T

	if store != nil {
		cached, found, err := store.Get(ctx, key)
		if err != nil {
			logging.Warn("Cache read failed",
				logging.String("key", key),
				logging.NamedError("error", err),
			)
		} else if found {
			var value T
			if err := json.Unmarshal([]byte(cached), &value); err == nil {
				return value, nil
			}
			// Corrupt entry, refetch and overwrite
			logging.Warn("Cache entry could not be decoded",
				logging.String("key", key),
			)
		}
	}

	value, err := produce(ctx)
	if err != nil {
		return zero, err
	}

	if store != nil {
		if data, err := json.Marshal(value); err == nil {
			if err := store.SetWithExpiry(ctx, key, string(data), ttl); err != nil {
				logging.Warn("Cache write failed",
					logging.String("key", key),
					logging.NamedError("error", err),
				)
			}
		}
	}

	return value, nil
}
