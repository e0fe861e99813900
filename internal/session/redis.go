package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed session store. Key TTLs handle expiry;
// revocation deletes the key, which Redis's single-threaded command
// execution makes immediately visible to concurrent Finds.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(addr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client}
}

func sessionKey(token string) string { return "session:" + token }
func ownerKey(email string) string   { return "sessions:" + email }

// Save stores the session under its token key and indexes it per owner.
func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.Token), data, ttl)
	pipe.SAdd(ctx, ownerKey(sess.Email), sess.Token)
	// keep the owner index alive at least as long as its newest session
	pipe.Expire(ctx, ownerKey(sess.Email), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Find returns the session for the token.
func (s *RedisStore) Find(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Revoke deletes the session key. Tokens are random and never reissued, so
// deletion is equivalent to a terminal revoked state.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	sess, err := s.Find(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, ownerKey(sess.Email), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeOwner deletes every session owned by the email.
func (s *RedisStore) RevokeOwner(ctx context.Context, email string) error {
	tokens, err := s.client.SMembers(ctx, ownerKey(email)).Result()
	if err != nil {
		return fmt.Errorf("failed to list owner sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKey(token))
	}
	pipe.Del(ctx, ownerKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke owner sessions: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
