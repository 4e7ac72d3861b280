package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"leadsync/internal/models"
)

const keyPrefix = "leadsync"

type CacheService interface {
	// Session mirror
	SetSession(ctx context.Context, record *models.SessionRecord, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Dashboard metrics caching
	GetMetrics(ctx context.Context, scope string) (*models.DashboardMetrics, error)
	SetMetrics(ctx context.Context, scope string, metrics *models.DashboardMetrics, ttl time.Duration) error
	InvalidateMetrics(ctx context.Context, scope string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client redis.UniversalClient
	logger *zap.Logger
}

func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(pingErr))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}

	return NewCacheServiceWithClient(client, logger)
}

// NewCacheServiceWithClient wraps an existing client
func NewCacheServiceWithClient(client redis.UniversalClient, logger *zap.Logger) CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisCacheService{client: client, logger: logger}
}

// SessionKey is the fixed key the session mirror lives under
func SessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, sessionID)
}

func metricsKey(scope string) string {
	return fmt.Sprintf("%s:metrics:%s", keyPrefix, scope)
}

func (r *redisCacheService) SetSession(ctx context.Context, record *models.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, SessionKey(record.SessionID), data, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	data, err := r.client.Get(ctx, SessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // not found
		}
		return nil, err
	}

	var record models.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		r.logger.Warn("discarding unreadable session mirror", zap.String("session_id", sessionID), zap.Error(err))
		return nil, nil
	}
	return &record, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, SessionKey(sessionID)).Err()
}

func (r *redisCacheService) GetMetrics(ctx context.Context, scope string) (*models.DashboardMetrics, error) {
	data, err := r.client.Get(ctx, metricsKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var metrics models.DashboardMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (r *redisCacheService) SetMetrics(ctx context.Context, scope string, metrics *models.DashboardMetrics, ttl time.Duration) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, metricsKey(scope), data, ttl).Err()
}

func (r *redisCacheService) InvalidateMetrics(ctx context.Context, scope string) error {
	return r.client.Del(ctx, metricsKey(scope)).Err()
}

// IsRateLimited counts one hit in a fixed window starting at the first hit
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, cacheKey)
		pipe.ExpireNX(ctx, cacheKey, window)
		return nil
	})
	if err != nil {
		return true, err
	}
	return incr.Val() > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
