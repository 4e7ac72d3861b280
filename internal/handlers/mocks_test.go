package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"leadsync/internal/apiclient"
	"leadsync/internal/jobs/background"
	"leadsync/internal/leadview"
	"leadsync/internal/middleware"
	"leadsync/internal/models"
	"leadsync/internal/pixel"
	"leadsync/internal/services"
)

type MockLeadsBackend struct {
	mock.Mock
}

func (m *MockLeadsBackend) FetchLeads(ctx context.Context) (apiclient.Payload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(apiclient.Payload), args.Error(1)
}

func (m *MockLeadsBackend) UpdateLead(ctx context.Context, id string, status models.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Login(ctx context.Context, req models.LoginRequest) (*services.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockSessionService) Register(ctx context.Context, req models.RegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSessionService) Logout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) Resolve(ctx context.Context, sessionID string) (*services.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockSessionService) Lookup(sessionID string) (*services.Session, bool) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*services.Session), args.Bool(1)
}

func (m *MockSessionService) Active() []*services.Session {
	args := m.Called()
	return args.Get(0).([]*services.Session)
}

func (m *MockSessionService) Sweep(idle time.Duration) int {
	args := m.Called(idle)
	return args.Int(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, sessionID string, account *models.Account) (*models.TokenResponse, error) {
	args := m.Called(ctx, sessionID, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockTokenService) Validate(ctx context.Context, token string) (*services.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, claims *services.TokenClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockTokenService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenService) Keyfunc(token *jwt.Token) (interface{}, error) {
	args := m.Called(token)
	return args.Get(0), args.Error(1)
}

func (m *MockTokenService) Close() {}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, change *models.LeadStatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filters *models.LeadStatusChangeFilters) ([]*models.LeadStatusChange, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeadStatusChange), args.Error(1)
}

func (m *MockAuditRepository) Count(ctx context.Context, filters *models.LeadStatusChangeFilters) (int, error) {
	args := m.Called(ctx, filters)
	return args.Int(0), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, sess *services.Session, q leadview.Query) (*models.LeadExport, error) {
	args := m.Called(ctx, sess, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeadExport), args.Error(1)
}

func (m *MockExportService) Prune(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) Get(ctx context.Context, sess *services.Session) (*models.DashboardMetrics, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardMetrics), args.Error(1)
}

func (m *MockMetricsService) Refresh(ctx context.Context, sess *services.Session) (*models.DashboardMetrics, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardMetrics), args.Error(1)
}

type MockPixelService struct {
	mock.Mock
}

func (m *MockPixelService) Snippet(customerID string) (string, error) {
	args := m.Called(customerID)
	return args.String(0), args.Error(1)
}

func (m *MockPixelService) EmbedTag(customerID string) (string, error) {
	args := m.Called(customerID)
	return args.String(0), args.Error(1)
}

func (m *MockPixelService) Relay(ctx context.Context, view models.PageView) (*pixel.Result, error) {
	args := m.Called(ctx, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pixel.Result), args.Error(1)
}

func (m *MockPixelService) Verify(ctx context.Context, sess *services.Session, pageURL string) (*models.PixelVerification, error) {
	args := m.Called(ctx, sess, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PixelVerification), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListCustomers(ctx context.Context, sess *services.Session) ([]models.Customer, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockAdminService) GrantAccess(ctx context.Context, sess *services.Session, userID string) error {
	args := m.Called(ctx, sess, userID)
	return args.Error(0)
}

func (m *MockAdminService) RevokeAccess(ctx context.Context, sess *services.Session, userID string) error {
	args := m.Called(ctx, sess, userID)
	return args.Error(0)
}

type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) RunNow(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockJobRunner) GetJobStatus() []background.JobStatus {
	args := m.Called()
	return args.Get(0).([]background.JobStatus)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

// newContext builds an echo context for a handler call. sess is attached the
// way the session middleware would.
func newContext(method, target, body string, sess *services.Session) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if sess != nil {
		middleware.SetSession(c, sess)
	}
	return c, rec
}

func customerSession(leads services.LeadsService) *services.Session {
	account := models.Account{ID: "u1", Role: models.RoleCustomer, Status: models.SubscriptionActive, CustomerID: "c1"}
	return services.NewSession("s1", nil, leads, account, time.Now())
}

func adminSession() *services.Session {
	account := models.Account{ID: "a1", Role: models.RoleAdmin, Status: models.SubscriptionActive}
	return services.NewSession("s9", nil, nil, account, time.Now())
}

func leadsPayload(body string) apiclient.Payload {
	return apiclient.Normalize(http.StatusOK, []byte(body))
}
