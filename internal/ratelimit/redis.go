package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the cross-instance Store, for horizontally scaled
// deployments where the in-memory window's per-instance reset is not
// acceptable. Each key is a sorted set of request timestamps scored by
// unix milliseconds.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr, password string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %v", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, error) {
	cutoff := now.Add(-window).UnixMilli()

	var count *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", cutoff))
		count = pipe.ZCard(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("couldn't prune rate window: %v", err)
	}

	if count.Val() >= int64(max) {
		return false, nil
	}

	member := fmt.Sprintf("%d-%d", now.UnixNano(), count.Val())
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("couldn't record rate window entry: %v", err)
	}
	return true, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
