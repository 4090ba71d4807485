package users

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each user document as a Redis hash named "Users:{id}".
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed user store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func documentKey(id string) string {
	return Collection + ":" + id
}

// Save replaces the hash atomically so fields dropped from the user do not linger.
func (s *RedisStore) Save(ctx context.Context, user User) error {
	if user.ID == "" {
		return ErrInvalidID
	}
	key := documentKey(user.ID)
	fields := make(map[string]interface{}, 6)
	for k, v := range user.ToDocument() {
		fields[k] = v
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Fetch loads the hash stored for id.
func (s *RedisStore) Fetch(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidID
	}
	fields, err := s.client.HGetAll(ctx, documentKey(id)).Result()
	if err != nil {
		return User{}, readFailed(id, err)
	}
	if len(fields) == 0 {
		return User{}, notFound(id)
	}
	return FromDocument(Document(fields))
}
