package sessionstore

import (
	"context"
	"time"

	"nazca360/internal/infra"
	"nazca360/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store keeps server-side session records alongside the JWT so that logout
// and inactivity expiry are enforceable. The key TTL is the sliding
// inactivity window; Touch renews it on every authenticated request.
type Store struct {
	client  *redis.Client
	timeout time.Duration
}

func NewStore(client *redis.Client, cfg config.SessionConfig) *Store {
	return &Store{client: client, timeout: cfg.InactivityTimeout}
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func sessionKey(token string) string {
	return "session:" + token
}

func userSessionsKey(userID uuid.UUID) string {
	return "sessions:user:" + userID.String()
}

func (s *Store) Save(ctx context.Context, token string, userID uuid.UUID) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(token), userID.String(), s.timeout)
	pipe.SAdd(ctx, userSessionsKey(userID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return infra.WrapRepoErr("failed to save session", err, infra.KindUpstream)
	}
	return nil
}

// Touch checks the session exists and renews the inactivity window. Returns
// false when the session was revoked or idle past the timeout.
func (s *Store) Touch(ctx context.Context, token string) (bool, error) {
	ok, err := s.client.Expire(ctx, sessionKey(token), s.timeout).Result()
	if err != nil {
		return false, infra.WrapRepoErr("failed to touch session", err, infra.KindUpstream)
	}
	return ok, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return infra.WrapRepoErr("failed to delete session", err, infra.KindUpstream)
	}
	return nil
}

// DeleteAllForUser revokes every live session of a user, used after a
// password reset.
func (s *Store) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	tokens, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return infra.WrapRepoErr("failed to list user sessions", err, infra.KindUpstream)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, userSessionsKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return infra.WrapRepoErr("failed to revoke user sessions", err, infra.KindUpstream)
	}
	return nil
}
