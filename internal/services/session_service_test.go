package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"leadsync/internal/apiclient"
	"leadsync/internal/models"
)

type SessionServiceTestSuite struct {
	suite.Suite
	backend  *MockBackend
	cache    *MockCacheService
	notifier NotificationService
	service  SessionService
	ctx      context.Context
	cookies  []models.StoredCookie
	account  *models.Account
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.backend = &MockBackend{}
	suite.cache = &MockCacheService{}
	suite.notifier = NewNotificationService(nil)
	factory := func() (Backend, error) { return suite.backend, nil }
	suite.service = NewSessionService(factory, suite.cache, suite.notifier, nil, time.Hour, nil)
	suite.ctx = context.Background()
	suite.cookies = []models.StoredCookie{{Name: "PHPSESSID", Value: "abc", Path: "/"}}
	suite.account = &models.Account{ID: "u1", Email: "ann@acme.io", Role: models.RoleCustomer, Status: models.SubscriptionActive, CustomerID: "c1"}
	suite.backend.On("FetchLeads", mock.Anything).Return(payload(200, twoLeads), nil).Maybe()
}

func (suite *SessionServiceTestSuite) TearDownTest() {
	suite.backend.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (suite *SessionServiceTestSuite) login() *Session {
	req := models.LoginRequest{Email: "ann@acme.io", Password: "pw"}
	suite.backend.On("Login", mock.Anything, req).Return(suite.account, nil).Once()
	suite.backend.On("Cookies").Return(suite.cookies).Once()
	suite.cache.On("SetSession", mock.Anything, mock.MatchedBy(func(r *models.SessionRecord) bool {
		return r.Account.ID == "u1" && len(r.Cookies) == 1 && r.Cookies[0].Value == "abc"
	}), time.Hour).Return(nil).Once()

	sess, err := suite.service.Login(suite.ctx, req)
	require.NoError(suite.T(), err)
	sess.WaitForLeads(suite.ctx)
	return sess
}

func (suite *SessionServiceTestSuite) TestLogin_RegistersSession() {
	sess := suite.login()

	assert.NotEmpty(suite.T(), sess.ID)
	assert.Equal(suite.T(), "u1", sess.Account().ID)

	resolved, err := suite.service.Resolve(suite.ctx, sess.ID)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), sess, resolved)

	found, loading := suite.service.Lookup(sess.ID)
	assert.Same(suite.T(), sess, found)
	assert.False(suite.T(), loading)
	assert.Len(suite.T(), suite.service.Active(), 1)
}

func (suite *SessionServiceTestSuite) TestLogin_LoadsLeads() {
	sess := suite.login()

	state := sess.Leads.State()
	assert.Equal(suite.T(), LeadsLoaded, state.State)
	assert.Equal(suite.T(), 2, state.Count)
	assert.NotNil(suite.T(), state.FetchedAt)
	assert.Equal(suite.T(), models.LeadStats{Total: 2, New: 1, Contacted: 1}, sess.Leads.Stats())

	suite.backend.On("UpdateLead", mock.Anything, "l1", models.LeadStatusQualified).Return(nil).Once()
	updated, err := sess.Leads.UpdateStatus(suite.ctx, "l1", "qualified")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.LeadStatusQualified, updated.Status)
}

func (suite *SessionServiceTestSuite) TestLogin_AdminSkipsLeadFetch() {
	admin := &models.Account{ID: "a1", Role: models.RoleAdmin, Status: models.SubscriptionActive}
	req := models.LoginRequest{Email: "root@leadsync.io", Password: "pw"}
	suite.backend.On("Login", mock.Anything, req).Return(admin, nil).Once()
	suite.backend.On("Cookies").Return(suite.cookies).Once()
	suite.cache.On("SetSession", mock.Anything, mock.Anything, time.Hour).Return(nil).Once()

	sess, err := suite.service.Login(suite.ctx, req)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), LeadsLoading, sess.WaitForLeads(suite.ctx).State)
	suite.backend.AssertNotCalled(suite.T(), "FetchLeads", mock.Anything)
}

func (suite *SessionServiceTestSuite) TestLogin_BackendRejects() {
	req := models.LoginRequest{Email: "ann@acme.io", Password: "bad"}
	suite.backend.On("Login", mock.Anything, req).
		Return(nil, &apiclient.Error{Kind: apiclient.KindDomain, Message: "Invalid credentials"}).Once()

	sess, err := suite.service.Login(suite.ctx, req)
	assert.Nil(suite.T(), sess)
	assert.Equal(suite.T(), "Invalid credentials", apiclient.UserMessage(err))
	assert.Empty(suite.T(), suite.service.Active())
}

func (suite *SessionServiceTestSuite) TestLogin_MirrorFailureIsNotFatal() {
	req := models.LoginRequest{Email: "ann@acme.io", Password: "pw"}
	suite.backend.On("Login", mock.Anything, req).Return(suite.account, nil).Once()
	suite.backend.On("Cookies").Return(suite.cookies).Once()
	suite.cache.On("SetSession", mock.Anything, mock.Anything, time.Hour).Return(errors.New("redis down")).Once()

	sess, err := suite.service.Login(suite.ctx, req)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), sess)
	assert.Equal(suite.T(), LeadsLoaded, sess.WaitForLeads(suite.ctx).State)
}

func (suite *SessionServiceTestSuite) TestResolve_RestoresFromMirror() {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	suite.cache.On("GetSession", mock.Anything, "sid-1").Return(&models.SessionRecord{
		SessionID: "sid-1",
		Account:   suite.account,
		Cookies:   suite.cookies,
		CreatedAt: created,
	}, nil).Once()
	suite.backend.On("SetCookies", suite.cookies).Once()

	sess, err := suite.service.Resolve(suite.ctx, "sid-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "sid-1", sess.ID)
	assert.Equal(suite.T(), "c1", sess.Account().CustomerID)
	assert.Equal(suite.T(), created, sess.CreatedAt)
	assert.Equal(suite.T(), LeadsLoaded, sess.WaitForLeads(suite.ctx).State)

	// Second resolve is served from memory
	again, err := suite.service.Resolve(suite.ctx, "sid-1")
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), sess, again)
}

func (suite *SessionServiceTestSuite) TestResolve_UnknownSession() {
	suite.cache.On("GetSession", mock.Anything, "nope").Return(nil, nil).Once()

	_, err := suite.service.Resolve(suite.ctx, "nope")
	assert.ErrorIs(suite.T(), err, ErrSessionNotFound)

	_, err = suite.service.Resolve(suite.ctx, "")
	assert.ErrorIs(suite.T(), err, ErrSessionNotFound)
}

func (suite *SessionServiceTestSuite) TestResolve_MirrorError() {
	suite.cache.On("GetSession", mock.Anything, "sid-2").Return(nil, errors.New("timeout")).Once()

	_, err := suite.service.Resolve(suite.ctx, "sid-2")
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrSessionNotFound)
}

func (suite *SessionServiceTestSuite) TestLookup_UnknownIsNotLoading() {
	sess, loading := suite.service.Lookup("missing")
	assert.Nil(suite.T(), sess)
	assert.False(suite.T(), loading)
}

func (suite *SessionServiceTestSuite) TestLogout_ClearsEverything() {
	sess := suite.login()
	suite.notifier.Info(sess.ID, "hello")

	suite.backend.On("Logout", mock.Anything).Return(nil).Once()
	suite.cache.On("DeleteSession", mock.Anything, sess.ID).Return(nil).Once()

	require.NoError(suite.T(), suite.service.Logout(suite.ctx, sess.ID))

	found, _ := suite.service.Lookup(sess.ID)
	assert.Nil(suite.T(), found)
	assert.Zero(suite.T(), suite.notifier.Pending(sess.ID))
	assert.Equal(suite.T(), LeadsLoading, sess.Leads.State().State)
}

func (suite *SessionServiceTestSuite) TestLogout_BackendFailureStillClearsLocalState() {
	sess := suite.login()

	suite.backend.On("Logout", mock.Anything).Return(&apiclient.Error{Kind: apiclient.KindNetwork, Message: apiclient.MsgUnreachable}).Once()
	suite.cache.On("DeleteSession", mock.Anything, sess.ID).Return(nil).Once()

	require.NoError(suite.T(), suite.service.Logout(suite.ctx, sess.ID))
	assert.Empty(suite.T(), suite.service.Active())
}

func (suite *SessionServiceTestSuite) TestSweep_RemovesIdleSessions() {
	svc := suite.service.(*sessionService)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	sess := suite.login()

	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	assert.Equal(suite.T(), 0, suite.service.Sweep(time.Hour))

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Equal(suite.T(), 1, suite.service.Sweep(time.Hour))

	found, _ := suite.service.Lookup(sess.ID)
	assert.Nil(suite.T(), found)
}

func (suite *SessionServiceTestSuite) TestSweep_ClearsToastsAndEndsSession() {
	svc := suite.service.(*sessionService)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	sess := suite.login()
	suite.notifier.Info(sess.ID, "hello")
	require.Equal(suite.T(), 1, suite.notifier.Pending(sess.ID))

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Equal(suite.T(), 1, suite.service.Sweep(time.Hour))

	assert.Zero(suite.T(), suite.notifier.Pending(sess.ID))
	assert.Error(suite.T(), sess.ctx.Err())
}

func (suite *SessionServiceTestSuite) TestRegister_UsesFreshBackend() {
	req := models.RegisterRequest{Name: "Ann", Email: "ann@acme.io", Password: "pw", Website: "https://acme.io"}
	suite.backend.On("Register", mock.Anything, req).Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Register(suite.ctx, req))
}
