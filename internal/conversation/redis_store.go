package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps conversation instances in Redis so in-flight flows
// survive a process restart. Instances are stored as JSON under
// conv:<actor>:<chat> with no TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(actorID, chatID int64) string {
	return fmt.Sprintf("conv:%d:%d", actorID, chatID)
}

func (s *RedisStore) Get(ctx context.Context, actorID, chatID int64) (*Instance, error) {
	raw, err := s.client.Get(ctx, redisKey(actorID, chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conversation state: %w", err)
	}

	var inst Instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("failed to decode conversation state: %w", err)
	}
	return &inst, nil
}

func (s *RedisStore) Put(ctx context.Context, actorID, chatID int64, inst *Instance) error {
	raw, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to encode conversation state: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(actorID, chatID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write conversation state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, actorID, chatID int64) error {
	if err := s.client.Del(ctx, redisKey(actorID, chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}
