package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"leadsync/internal/models"
	"leadsync/internal/pixel"
)

type PixelServiceTestSuite struct {
	suite.Suite
	backend  *MockBackend
	tracker  *MockTracker
	cache    *MockCacheService
	notifier NotificationService
	service  PixelService
	sess     *Session
	ctx      context.Context
}

func (suite *PixelServiceTestSuite) SetupTest() {
	suite.backend = &MockBackend{}
	suite.tracker = &MockTracker{}
	suite.cache = &MockCacheService{}
	suite.notifier = NewNotificationService(nil)
	suite.service = NewPixelService("http://px.local/pixel.php", suite.tracker, suite.cache, 10, time.Minute, suite.notifier, nil)
	suite.sess = newTestSession(suite.backend, models.Account{ID: "u1", CustomerID: "c1"})
	suite.ctx = context.Background()
}

func (suite *PixelServiceTestSuite) TearDownTest() {
	suite.backend.AssertExpectations(suite.T())
	suite.tracker.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestPixelServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PixelServiceTestSuite))
}

func (suite *PixelServiceTestSuite) TestSnippet() {
	js, err := suite.service.Snippet("c1")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), js, `"http://px.local/pixel.php"`)
}

func (suite *PixelServiceTestSuite) TestEmbedTag() {
	tag, err := suite.service.EmbedTag("c1")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), strings.HasPrefix(tag, "<script>"))
	assert.Contains(suite.T(), tag, `"c1"`)

	_, err = suite.service.EmbedTag("")
	assert.ErrorIs(suite.T(), err, pixel.ErrMissingCustomerID)
}

func (suite *PixelServiceTestSuite) TestRelay_Allowed() {
	view := models.PageView{CustomerID: "c1", Page: "https://acme.io/"}
	suite.cache.On("IsRateLimited", mock.Anything, "pixel:c1", 10, time.Minute).Return(false, nil).Once()
	suite.tracker.On("Track", mock.Anything, view).Return(&pixel.Result{StatusCode: 200, Body: "ok"}, nil).Once()

	result, err := suite.service.Relay(suite.ctx, view)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ok", result.Body)
}

func (suite *PixelServiceTestSuite) TestRelay_RateLimited() {
	suite.cache.On("IsRateLimited", mock.Anything, "pixel:c1", 10, time.Minute).Return(true, nil).Once()

	_, err := suite.service.Relay(suite.ctx, models.PageView{CustomerID: "c1"})
	assert.ErrorIs(suite.T(), err, ErrRateLimited)
}

func (suite *PixelServiceTestSuite) TestRelay_LimiterErrorStillRelays() {
	view := models.PageView{CustomerID: "c1"}
	suite.cache.On("IsRateLimited", mock.Anything, "pixel:c1", 10, time.Minute).Return(true, errors.New("redis down")).Once()
	suite.tracker.On("Track", mock.Anything, view).Return(&pixel.Result{StatusCode: 200}, nil).Once()

	_, err := suite.service.Relay(suite.ctx, view)
	assert.NoError(suite.T(), err)
}

func (suite *PixelServiceTestSuite) TestRelay_MissingCustomer() {
	_, err := suite.service.Relay(suite.ctx, models.PageView{CustomerID: " "})
	assert.ErrorIs(suite.T(), err, pixel.ErrMissingCustomerID)
}

func (suite *PixelServiceTestSuite) TestVerify_Installed() {
	suite.backend.On("VerifyPixel", mock.Anything, "https://acme.io/", "c1").
		Return(&models.PixelVerification{URL: "https://acme.io/", CustomerID: "c1", PixelInstalled: true}, nil).Once()

	result, err := suite.service.Verify(suite.ctx, suite.sess, "https://acme.io/")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), result.PixelInstalled)

	toasts := suite.notifier.Drain(suite.sess.ID)
	require.Len(suite.T(), toasts, 1)
	assert.Equal(suite.T(), models.NotificationSuccess, toasts[0].Level)
}

func (suite *PixelServiceTestSuite) TestVerify_RejectsBadURL() {
	for _, raw := range []string{"", "acme.io", "ftp://acme.io", "https://"} {
		_, err := suite.service.Verify(suite.ctx, suite.sess, raw)
		assert.ErrorIs(suite.T(), err, ErrInvalidURL, raw)
	}
}
