package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	errx "github.com/chatgpt-twitter-bot/server/internal/core/error"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

// RedisRepository stores interactions and the cross-run state under a key
// namespace.
type RedisRepository struct {
	rdb       redis.Cmdable
	namespace string
	ttl       time.Duration
}

func NewRedisRepository(rdb redis.Cmdable, namespace string, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, namespace: namespace, ttl: ttl}
}

func (r *RedisRepository) interactionKey(mentionID string) string {
	return fmt.Sprintf("%s:interaction:%s", r.namespace, mentionID)
}

func (r *RedisRepository) sinceKey() string {
	return fmt.Sprintf("%s:since_mention_id", r.namespace)
}

func (r *RedisRepository) refreshTokenKey() string {
	return fmt.Sprintf("%s:refresh_token", r.namespace)
}

func (r *RedisRepository) PutInteraction(ctx context.Context, mentionID string, in *model.Interaction) error {
	b, err := json.Marshal(in)
	if err != nil {
		logx.Error().Err(err).Str("mention_id", mentionID).Msg("failed to marshal interaction")
		return fmt.Errorf("marshal interaction: %w", err)
	}
	key := r.interactionKey(mentionID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store interaction in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// GetInteraction returns nil, nil when nothing is stored for mentionID.
func (r *RedisRepository) GetInteraction(ctx context.Context, mentionID string) (*model.Interaction, error) {
	key := r.interactionKey(mentionID)
	s, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load interaction from redis")
		return nil, errx.WrapRedis(err)
	}

	var in model.Interaction
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, fmt.Errorf("unmarshal interaction %s: %w", mentionID, err)
	}
	return &in, nil
}

func (r *RedisRepository) SinceMentionID(ctx context.Context) (string, error) {
	return r.get(ctx, r.sinceKey())
}

func (r *RedisRepository) SetSinceMentionID(ctx context.Context, id string) error {
	return r.set(ctx, r.sinceKey(), id)
}

func (r *RedisRepository) RefreshToken(ctx context.Context) (string, error) {
	return r.get(ctx, r.refreshTokenKey())
}

func (r *RedisRepository) SetRefreshToken(ctx context.Context, token string) error {
	return r.set(ctx, r.refreshTokenKey(), token)
}

func (r *RedisRepository) get(ctx context.Context, key string) (string, error) {
	s, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read state from redis")
		return "", errx.WrapRedis(err)
	}
	return s, nil
}

// state keys never expire
func (r *RedisRepository) set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var (
	_ model.InteractionRepository = (*RedisRepository)(nil)
	_ model.StateRepository       = (*RedisRepository)(nil)
)
