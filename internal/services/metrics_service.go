package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadsync/internal/caching"
	"leadsync/internal/models"
)

// DefaultMetricsTTL matches the dashboard polling interval
const DefaultMetricsTTL = 30 * time.Second

// MetricsService serves the dashboard's aggregate widgets
type MetricsService interface {
	// Get returns cached metrics when fresh, otherwise refreshes them
	Get(ctx context.Context, sess *Session) (*models.DashboardMetrics, error)
	// Refresh always hits the backend and rewrites the cache
	Refresh(ctx context.Context, sess *Session) (*models.DashboardMetrics, error)
}

type metricsService struct {
	cache  caching.CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewMetricsService creates the metrics service. cache may be nil.
func NewMetricsService(cache caching.CacheService, ttl time.Duration, logger *zap.Logger) MetricsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultMetricsTTL
	}
	return &metricsService{cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

func (s *metricsService) Get(ctx context.Context, sess *Session) (*models.DashboardMetrics, error) {
	if s.cache != nil {
		cached, err := s.cache.GetMetrics(ctx, metricsScope(sess))
		if err != nil {
			s.logger.Warn("metrics cache read failed", zap.String("session_id", sess.ID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.Refresh(ctx, sess)
}

func (s *metricsService) Refresh(ctx context.Context, sess *Session) (*models.DashboardMetrics, error) {
	var stats, weekly, traffic json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = sess.Backend.FetchStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = sess.Backend.FetchWeeklyLeadCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		traffic, err = sess.Backend.FetchTraffic(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics := &models.DashboardMetrics{
		Stats:     stats,
		Weekly:    weekly,
		Traffic:   traffic,
		FetchedAt: s.now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.SetMetrics(ctx, metricsScope(sess), metrics, s.ttl); err != nil {
			s.logger.Warn("metrics cache write failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	return metrics, nil
}

// The backend scopes aggregates by its own session, so the cache does too
func metricsScope(sess *Session) string {
	return sess.ID
}
