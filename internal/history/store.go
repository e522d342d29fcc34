// Package history keeps a capped list of recently executed commands in Redis.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-assistant/internal/models"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "commands:recent"

// Store records executed commands.
type Store interface {
	Record(ctx context.Context, rec models.CommandRecord) error
	Recent(ctx context.Context, limit int) ([]models.CommandRecord, error)
}

// RedisStore keeps the newest records at the head of a Redis list.
type RedisStore struct {
	client redis.Cmdable
	key    string
	size   int
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, size int, ttl time.Duration) *RedisStore {
	if size <= 0 {
		size = 50
	}
	return &RedisStore{client: client, key: defaultKey, size: size, ttl: ttl}
}

func (s *RedisStore) Record(ctx context.Context, rec models.CommandRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal command record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, int64(s.size-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. limit is clamped to the
// configured size.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]models.CommandRecord, error) {
	if limit <= 0 || limit > s.size {
		limit = s.size
	}

	raw, err := s.client.LRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read command history: %w", err)
	}

	records := make([]models.CommandRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.CommandRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// NoopStore discards records.
type NoopStore struct{}

func (NoopStore) Record(context.Context, models.CommandRecord) error { return nil }

func (NoopStore) Recent(context.Context, int) ([]models.CommandRecord, error) {
	return []models.CommandRecord{}, nil
}
