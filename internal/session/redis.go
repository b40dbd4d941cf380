package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/models"
	"github.com/redis/go-redis/v9"
)

// Session entries outlive the lunch week by a margin and then expire
// on their own; the weekly reset clears the record-id keys earlier.
const entryTTL = 8 * 24 * time.Hour

// redisStore is the Redis-backed session cache.
type redisStore struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// Ping verifies the Redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func myRecordKey(sessionID string) string {
	return "honbob:session:" + sessionID + ":my_record"
}

func editingKey(sessionID string) string {
	return "honbob:session:" + sessionID + ":editing"
}

func (s *redisStore) MyRecordID(ctx context.Context, sessionID string) (string, error) {
	val, err := s.client.Get(ctx, myRecordKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *redisStore) SetMyRecordID(ctx context.Context, sessionID, recordID string) error {
	return s.client.Set(ctx, myRecordKey(sessionID), recordID, entryTTL).Err()
}

func (s *redisStore) ClearMyRecordID(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, myRecordKey(sessionID)).Err()
}

func (s *redisStore) Editing(ctx context.Context, sessionID string) (*models.EditState, error) {
	val, err := s.client.Get(ctx, editingKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state models.EditState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to decode editing state: %w", err)
	}
	return &state, nil
}

func (s *redisStore) SetEditing(ctx context.Context, sessionID string, state *models.EditState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode editing state: %w", err)
	}
	return s.client.Set(ctx, editingKey(sessionID), data, entryTTL).Err()
}

func (s *redisStore) ClearEditing(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, editingKey(sessionID)).Err()
}

// ClearAllMyRecords scans for every cached record-id key and deletes
// them. Editing snapshots are left alone; they point at handles that
// no longer exist and expire on their own.
func (s *redisStore) ClearAllMyRecords(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, "honbob:session:*:my_record", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
