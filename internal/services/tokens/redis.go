package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/ecovision/internal/config"
	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps tokens as keys with a TTL so they expire on their own.
type RedisStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	now         func() time.Time
	newID       func() string
}

func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) *RedisStore {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisStore(redisClient, ttl)
}

func newRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{redisClient: client, ttl: ttl, now: time.Now, newID: uuid.NewString}
}

func (s *RedisStore) Issue(ctx context.Context) (models.AccessToken, error) {
	token := s.newID()
	if err := s.redisClient.Set(ctx, TokenKeyPrefix+token, "1", s.ttl).Err(); err != nil {
		return models.AccessToken{}, fmt.Errorf("failed to store token: %w", err)
	}
	return models.AccessToken{Token: token, ExpiresAt: s.now().Add(s.ttl)}, nil
}

func (s *RedisStore) Validate(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	n, err := s.redisClient.Exists(ctx, TokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidToken
		}
		return fmt.Errorf("token lookup error: %w", err)
	}
	if n == 0 {
		return ErrInvalidToken
	}
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) string {
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return models.HealthUnhealthy + ": " + err.Error()
	}
	return models.HealthHealthy
}

func (s *RedisStore) Close() error {
	return s.redisClient.Close()
}
