package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadsync/internal/models"
	"leadsync/internal/services"
)

// SessionLister yields the sessions worth refreshing
type SessionLister interface {
	Active() []*services.Session
}

// MetricsRefresher reloads a session's dashboard widgets
type MetricsRefresher interface {
	Refresh(ctx context.Context, sess *services.Session) (*models.DashboardMetrics, error)
}

// PollResult summarizes one polling tick
type PollResult struct {
	Sessions      int
	LeadFailures  int
	MetricsErrors int
	Duration      time.Duration
}

// DashboardPoller refreshes leads and metrics for every live session
type DashboardPoller struct {
	sessions    SessionLister
	metrics     MetricsRefresher
	concurrency int
	tickTimeout time.Duration
	logger      *zap.Logger
}

func NewDashboardPoller(sessions SessionLister, metrics MetricsRefresher, concurrency int, tickTimeout time.Duration, logger *zap.Logger) *DashboardPoller {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardPoller{
		sessions:    sessions,
		metrics:     metrics,
		concurrency: concurrency,
		tickTimeout: tickTimeout,
		logger:      logger,
	}
}

// Poll runs one tick. Per-session failures are counted and logged; they
// never stop the other sessions from refreshing.
func (p *DashboardPoller) Poll(ctx context.Context) PollResult {
	start := time.Now()
	if p.tickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.tickTimeout)
		defer cancel()
	}

	active := p.sessions.Active()
	var leadFailures, metricsErrors atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for _, sess := range active {
		g.Go(func() error {
			state := sess.Leads.Fetch(ctx)
			if state.State == services.LeadsError {
				leadFailures.Add(1)
			}
			if p.metrics != nil {
				if _, err := p.metrics.Refresh(ctx, sess); err != nil {
					metricsErrors.Add(1)
					p.logger.Debug("metrics refresh failed", zap.String("session_id", sess.ID), zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	result := PollResult{
		Sessions:      len(active),
		LeadFailures:  int(leadFailures.Load()),
		MetricsErrors: int(metricsErrors.Load()),
		Duration:      time.Since(start),
	}
	if result.Sessions > 0 {
		p.logger.Info("dashboard poll completed",
			zap.Int("sessions", result.Sessions),
			zap.Int("lead_failures", result.LeadFailures),
			zap.Int("metrics_errors", result.MetricsErrors),
			zap.Duration("duration", result.Duration))
	}
	return result
}
