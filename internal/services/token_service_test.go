package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"leadsync/internal/models"
)

type TokenServiceTestSuite struct {
	suite.Suite
	cache   *MockCacheService
	service TokenService
	account *models.Account
	ctx     context.Context
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.cache = &MockCacheService{}
	svc, err := NewTokenService(suite.cache, "test-secret", time.Hour, "", nil)
	require.NoError(suite.T(), err)
	suite.service = svc
	suite.account = &models.Account{ID: "u1", Role: models.RoleAdmin, Status: models.SubscriptionActive}
	suite.ctx = context.Background()
}

func (suite *TokenServiceTestSuite) TearDownTest() {
	suite.service.Close()
	suite.cache.AssertExpectations(suite.T())
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (suite *TokenServiceTestSuite) TestIssueAndValidate() {
	resp, err := suite.service.Issue(suite.ctx, "sid-1", suite.account)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Bearer", resp.TokenType)
	assert.Equal(suite.T(), 3600, resp.ExpiresIn)
	assert.Equal(suite.T(), "sid-1", resp.SessionID)

	suite.cache.On("GetString", mock.Anything, mock.AnythingOfType("string")).Return("", nil).Once()

	claims, err := suite.service.Validate(suite.ctx, resp.AccessToken)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "sid-1", claims.SessionID)
	assert.Equal(suite.T(), "u1", claims.UserID)
	assert.Equal(suite.T(), models.RoleAdmin, claims.Role)
	assert.NotEmpty(suite.T(), claims.ID)
}

func (suite *TokenServiceTestSuite) TestValidate_WrongSecret() {
	other, err := NewTokenService(nil, "other-secret", time.Hour, "", nil)
	require.NoError(suite.T(), err)
	resp, err := other.Issue(suite.ctx, "sid-1", suite.account)
	require.NoError(suite.T(), err)

	_, err = suite.service.Validate(suite.ctx, resp.AccessToken)
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestValidate_Expired() {
	expired, err := NewTokenService(nil, "test-secret", -time.Minute, "", nil)
	require.NoError(suite.T(), err)
	resp, err := expired.Issue(suite.ctx, "sid-1", suite.account)
	require.NoError(suite.T(), err)

	_, err = suite.service.Validate(suite.ctx, resp.AccessToken)
	assert.ErrorIs(suite.T(), err, jwt.ErrTokenExpired)
}

func (suite *TokenServiceTestSuite) TestRevoke() {
	resp, err := suite.service.Issue(suite.ctx, "sid-1", suite.account)
	require.NoError(suite.T(), err)

	suite.cache.On("GetString", mock.Anything, mock.AnythingOfType("string")).Return("", nil).Once()
	claims, err := suite.service.Validate(suite.ctx, resp.AccessToken)
	require.NoError(suite.T(), err)

	suite.cache.On("SetString", mock.Anything, "leadsync:token_revoked:"+claims.ID, "revoked", mock.AnythingOfType("time.Duration")).Return(nil).Once()
	require.NoError(suite.T(), suite.service.Revoke(suite.ctx, claims))

	suite.cache.On("GetString", mock.Anything, "leadsync:token_revoked:"+claims.ID).Return("revoked", nil).Once()
	_, err = suite.service.Validate(suite.ctx, resp.AccessToken)
	assert.ErrorIs(suite.T(), err, ErrTokenRevoked)
}

func (suite *TokenServiceTestSuite) TestIsRevoked_FailsOpenOnCacheError() {
	suite.cache.On("GetString", mock.Anything, "leadsync:token_revoked:t1").Return("", assert.AnError).Once()

	revoked, err := suite.service.IsRevoked(suite.ctx, "t1")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), revoked)
}

func (suite *TokenServiceTestSuite) TestKeyfunc_RejectsAsymmetricWithoutJWKS() {
	token := jwt.New(jwt.SigningMethodRS256)
	_, err := suite.service.Keyfunc(token)
	assert.Error(suite.T(), err)

	key, err := suite.service.Keyfunc(jwt.New(jwt.SigningMethodHS256))
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []byte("test-secret"), key)
}
