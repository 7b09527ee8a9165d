package redis

import (
	"context"
	"time"
)

// Ping checks if the Redis server is reachable and responsive.
// It returns an error if the connection fails.
func (r *RedisClient) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Ping(ctx).Err()
}

// Get retrieves the value associated with the given key.
// Returns Nil if the key does not exist.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Get(ctx, key).Result()
	r.observeOperation("get", key, "", time.Since(start), err, int64(len(result)), nil)
	return result, translateError(err)
}

// GetDel atomically retrieves the value for a key and deletes it.
// Returns Nil if the key does not exist. Used by the analytics flusher
// to drain counter deltas without losing concurrent increments.
func (r *RedisClient) GetDel(ctx context.Context, key string) (string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.GetDel(ctx, key).Result()
	r.observeOperation("getdel", key, "", time.Since(start), err, int64(len(result)), nil)
	return result, translateError(err)
}

// MGet retrieves the values for multiple keys in a single round trip.
// Missing keys yield nil entries in the returned slice.
func (r *RedisClient) MGet(ctx context.Context, keys ...string) ([]interface{}, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.MGet(ctx, keys...).Result()
	resource := ""
	if len(keys) > 0 {
		resource = keys[0]
	}
	r.observeOperation("mget", resource, "", time.Since(start), err, int64(len(keys)), nil)
	return result, translateError(err)
}

// Incr increments the integer value of a key by one.
// If the key does not exist it is set to 0 before performing the operation.
func (r *RedisClient) Incr(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Incr(ctx, key).Result()
	r.observeOperation("incr", key, "", time.Since(start), err, 0, nil)
	return result, translateError(err)
}

// IncrBy increments the integer value of a key by the given amount.
func (r *RedisClient) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.IncrBy(ctx, key, value).Result()
	r.observeOperation("incrby", key, "", time.Since(start), err, 0, nil)
	return result, translateError(err)
}

// Keys returns all keys matching the given pattern.
// The counter keyspace this service uses stays small (one key per viewed
// content path), so KEYS is acceptable here.
func (r *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Keys(ctx, pattern).Result()
	r.observeOperation("keys", pattern, "", time.Since(start), err, int64(len(result)), nil)
	return result, translateError(err)
}

// Delete removes the given keys. Returns the number of keys that were removed.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Del(ctx, keys...).Result()
	resource := ""
	if len(keys) > 0 {
		resource = keys[0]
	}
	r.observeOperation("del", resource, "", time.Since(start), err, result, nil)
	return result, translateError(err)
}

// Exists checks how many of the given keys exist.
func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Exists(ctx, keys...).Result()
	return result, translateError(err)
}
