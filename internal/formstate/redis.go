package formstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 24 * time.Hour,
	}
}

// RedisStore keeps each session's form values in one hash so Clear is a
// single DEL.
type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string, dest any) (bool, error) {
	data, err := s.client.HGet(ctx, storeKey(sessionID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis hget failed: %w", err)
	}

	if err2 := json.Unmarshal(data, dest); err2 != nil {
		// Corrupt entry: drop it and treat as absence.
		log.Printf("form state for session %s key %s is corrupt, dropping: %v", sessionID, key, err2)
		if delErr := s.client.HDel(ctx, storeKey(sessionID), key).Err(); delErr != nil {
			log.Printf("failed to drop corrupt form state: %v", delErr)
		}
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key string, value any) error {
	if value == nil {
		if err := s.client.HDel(ctx, storeKey(sessionID), key).Err(); err != nil {
			return fmt.Errorf("redis hdel failed: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal form state failed: %w", err)
	}

	if err := s.client.HSet(ctx, storeKey(sessionID), key, data).Err(); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	if err := s.client.Expire(ctx, storeKey(sessionID), s.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis expire failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, storeKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func storeKey(sessionID string) string {
	return fmt.Sprintf("formstate:%s", sessionID)
}
