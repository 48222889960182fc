package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "copywriter:user:"

// RedisKey is the key a user's snapshot is stored under.
func RedisKey(userID string) string {
	return redisKeyPrefix + userID
}

// Redis stores each snapshot as one JSON string value without expiry.
type Redis struct {
	client *redis.Client
}

func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Load(ctx context.Context, userID string) (Snapshot, bool, error) {
	if err := checkUserID(userID); err != nil {
		return Snapshot{}, false, err
	}
	data, err := r.client.Get(ctx, RedisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis get: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return snap, true, nil
}

func (r *Redis) Save(ctx context.Context, userID string, snap Snapshot) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, RedisKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
