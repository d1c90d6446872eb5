package preload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLayer is the shared remote tier. Objects live under
// object:<id>:data with a size sidecar key, both with the same TTL.
type RedisLayer struct {
	client *redis.Client
	source Source
	ttl    time.Duration
}

func NewRedisLayer(client *redis.Client, source Source, ttl time.Duration) *RedisLayer {
	return &RedisLayer{client: client, source: source, ttl: ttl}
}

func (r *RedisLayer) Name() string { return "REDIS" }

func dataKey(id uuid.UUID) string { return "object:" + id.String() + ":data" }
func sizeKey(id uuid.UUID) string { return "object:" + id.String() + ":size" }

func (r *RedisLayer) Warm(ctx context.Context, id uuid.UUID) (WarmResult, error) {
	exists, err := r.client.Exists(ctx, dataKey(id)).Result()
	if err != nil {
		return WarmResult{}, fmt.Errorf("redis exists: %w", err)
	}
	if exists > 0 {
		size, _ := r.client.StrLen(ctx, dataKey(id)).Result()
		return WarmResult{Status: StatusSkipped, SizeBytes: size}, nil
	}

	data, err := r.source.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return WarmResult{Status: StatusSkipped}, nil
		}
		return WarmResult{}, err
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, dataKey(id), data, r.ttl)
	pipe.Set(ctx, sizeKey(id), fmt.Sprintf("%d", len(data)), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return WarmResult{}, fmt.Errorf("redis store: %w", err)
	}

	return WarmResult{Status: StatusWarmed, SizeBytes: int64(len(data))}, nil
}

func (r *RedisLayer) Stats(ctx context.Context) (objects int, bytes int64, err error) {
	keys, err := r.client.Keys(ctx, "object:*:data").Result()
	if err != nil {
		return 0, 0, err
	}
	for _, key := range keys {
		size, err := r.client.StrLen(ctx, key).Result()
		if err != nil {
			continue
		}
		bytes += size
	}
	return len(keys), bytes, nil
}

func (r *RedisLayer) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "object:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}
