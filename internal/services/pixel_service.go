package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadsync/internal/caching"
	"leadsync/internal/models"
	"leadsync/internal/pixel"
)

var (
	ErrRateLimited = errors.New("too many pixel events")
	ErrInvalidURL  = errors.New("a valid http(s) url is required")
)

// PageViewTracker relays page views to the pixel endpoint
type PageViewTracker interface {
	Track(ctx context.Context, view models.PageView) (*pixel.Result, error)
}

// PixelService covers the snippet, the event relay and the install check
type PixelService interface {
	Snippet(customerID string) (string, error)
	// EmbedTag is the snippet wrapped in a script tag for pasting into a site
	EmbedTag(customerID string) (string, error)
	Relay(ctx context.Context, view models.PageView) (*pixel.Result, error)
	Verify(ctx context.Context, sess *Session, pageURL string) (*models.PixelVerification, error)
}

type pixelService struct {
	endpoint string
	tracker  PageViewTracker
	cache    caching.CacheService
	limit    int
	window   time.Duration
	notifier NotificationService
	logger   *zap.Logger
}

// NewPixelService creates the pixel service. cache may be nil, which disables
// per-customer rate limiting.
func NewPixelService(
	endpoint string,
	tracker PageViewTracker,
	cache caching.CacheService,
	limit int,
	window time.Duration,
	notifier NotificationService,
	logger *zap.Logger,
) PixelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pixelService{
		endpoint: endpoint,
		tracker:  tracker,
		cache:    cache,
		limit:    limit,
		window:   window,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *pixelService) Snippet(customerID string) (string, error) {
	return pixel.Snippet(s.endpoint, customerID)
}

func (s *pixelService) EmbedTag(customerID string) (string, error) {
	return pixel.EmbedTag(s.endpoint, customerID)
}

func (s *pixelService) Relay(ctx context.Context, view models.PageView) (*pixel.Result, error) {
	view.CustomerID = strings.TrimSpace(view.CustomerID)
	if view.CustomerID == "" {
		return nil, pixel.ErrMissingCustomerID
	}

	if s.cache != nil && s.limit > 0 {
		limited, err := s.cache.IsRateLimited(ctx, "pixel:"+view.CustomerID, s.limit, s.window)
		if err != nil {
			// Relay anyway when redis is unavailable
			s.logger.Warn("pixel rate limit check failed", zap.String("customer_id", view.CustomerID), zap.Error(err))
		} else if limited {
			return nil, ErrRateLimited
		}
	}

	return s.tracker.Track(ctx, view)
}

func (s *pixelService) Verify(ctx context.Context, sess *Session, pageURL string) (*models.PixelVerification, error) {
	pageURL = strings.TrimSpace(pageURL)
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	account := sess.Account()
	customerID := account.CustomerID
	if customerID == "" {
		customerID = account.ID
	}

	result, err := sess.Backend.VerifyPixel(ctx, pageURL, customerID)
	if err != nil {
		if s.notifier != nil {
			s.notifier.Error(sess.ID, "Pixel check failed: "+errorMessage(err))
		}
		return nil, err
	}

	if s.notifier != nil {
		if result.PixelInstalled {
			s.notifier.Success(sess.ID, "Pixel detected on "+parsed.Host)
		} else {
			s.notifier.Info(sess.ID, "Pixel not found on "+parsed.Host)
		}
	}
	return result, nil
}
