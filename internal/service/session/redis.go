package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/kapu/attendee-profile-web/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps sessions in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewSessionError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewRedisStoreFromClient(client, cfg.TTL, logger), nil
}

// NewRedisStoreFromClient wraps an existing client without pinging it.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.SessionConfig.TTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisStore) Load(ctx context.Context, sessionID, shortID string) (domain.SessionState, bool, error) {
	key := storageKey(sessionID, shortID)

	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return domain.SessionState{}, false, nil // Key doesn't exist - not an error
	}
	if err != nil {
		r.logger.Error("Session get failed", zap.String("key", key), zap.Error(err))
		return domain.SessionState{}, false, errors.NewSessionError("get failed", "load", key, err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(value, &state); err != nil {
		r.logger.Error("Session unmarshal failed", zap.String("key", key), zap.Error(err))
		return domain.SessionState{}, false, errors.NewSessionError("unmarshal failed", "load", key, err)
	}

	return state, true, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, state domain.SessionState) error {
	key := storageKey(sessionID, state.ShortID)

	jsonData, err := json.Marshal(state)
	if err != nil {
		return errors.NewSessionError("marshal failed", "save", key, err)
	}

	if err := r.client.Set(ctx, key, jsonData, r.ttl).Err(); err != nil {
		r.logger.Error("Session set failed", zap.String("key", key), zap.Error(err))
		return errors.NewSessionError("set failed", "save", key, err)
	}

	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewSessionError("ping failed", "ping", "", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
