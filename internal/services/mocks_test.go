package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"leadsync/internal/apiclient"
	"leadsync/internal/models"
	"leadsync/internal/pixel"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchLeads(ctx context.Context) (apiclient.Payload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(apiclient.Payload), args.Error(1)
}

func (m *MockBackend) UpdateLead(ctx context.Context, id string, status models.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBackend) Login(ctx context.Context, req models.LoginRequest) (*models.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, req models.RegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockBackend) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) FetchCustomers(ctx context.Context) ([]models.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockBackend) FetchStats(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBackend) FetchWeeklyLeadCount(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBackend) FetchTraffic(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBackend) VerifyPixel(ctx context.Context, pageURL, customerID string) (*models.PixelVerification, error) {
	args := m.Called(ctx, pageURL, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PixelVerification), args.Error(1)
}

func (m *MockBackend) GrantAccess(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBackend) RevokeAccess(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBackend) Cookies() []models.StoredCookie {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.StoredCookie)
}

func (m *MockBackend) SetCookies(stored []models.StoredCookie) {
	m.Called(stored)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) SetSession(ctx context.Context, record *models.SessionRecord, ttl time.Duration) error {
	args := m.Called(ctx, record, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionRecord), args.Error(1)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCacheService) GetMetrics(ctx context.Context, scope string) (*models.DashboardMetrics, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardMetrics), args.Error(1)
}

func (m *MockCacheService) SetMetrics(ctx context.Context, scope string, metrics *models.DashboardMetrics, ttl time.Duration) error {
	args := m.Called(ctx, scope, metrics, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateMetrics(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockLeadAuditRepository struct {
	mock.Mock
}

func (m *MockLeadAuditRepository) Create(ctx context.Context, change *models.LeadStatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockLeadAuditRepository) List(ctx context.Context, filters *models.LeadStatusChangeFilters) ([]*models.LeadStatusChange, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeadStatusChange), args.Error(1)
}

func (m *MockLeadAuditRepository) Count(ctx context.Context, filters *models.LeadStatusChangeFilters) (int, error) {
	args := m.Called(ctx, filters)
	return args.Int(0), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockMinioService) RemoveOlderThan(ctx context.Context, bucketName, prefix string, cutoff time.Time) (int, error) {
	args := m.Called(ctx, bucketName, prefix, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockMinioService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, view models.PageView) (*pixel.Result, error) {
	args := m.Called(ctx, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pixel.Result), args.Error(1)
}

// payload normalizes a literal backend body the way the client would
func payload(status int, body string) apiclient.Payload {
	return apiclient.Normalize(status, []byte(body))
}

func newTestSession(backend *MockBackend, account models.Account) *Session {
	return &Session{
		ID:        "s1",
		Backend:   backend,
		Leads:     NewLeadsService(backend, nil, nil, nil, LeadsOptions{SessionID: "s1"}),
		CreatedAt: time.Now(),
		account:   account,
		lastSeen:  time.Now(),
	}
}
