package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadsync/internal/caching"
	"leadsync/internal/models"
)

const (
	tokenIssuer   = "leadsync-bff"
	tokenAudience = "leadsync-dashboard"
)

var ErrTokenRevoked = errors.New("token has been revoked")

// TokenService issues and checks the dashboard's session tokens
type TokenService interface {
	Issue(ctx context.Context, sessionID string, account *models.Account) (*models.TokenResponse, error)
	Validate(ctx context.Context, token string) (*TokenClaims, error)
	Revoke(ctx context.Context, claims *TokenClaims) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Keyfunc resolves verification keys: HMAC for our own tokens, JWKS for
	// RSA/EC tokens minted by an external identity provider
	Keyfunc(token *jwt.Token) (interface{}, error)
	Close()
}

// TokenClaims binds a JWT to a dashboard session
type TokenClaims struct {
	SessionID  string                    `json:"sid"`
	UserID     string                    `json:"user_id"`
	Role       models.Role               `json:"role"`
	Status     models.SubscriptionStatus `json:"status"`
	CustomerID string                    `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

type tokenService struct {
	cacheSvc  caching.CacheService
	jwtSecret []byte
	tokenTTL  time.Duration
	jwks      *keyfunc.JWKS
	logger    *zap.Logger
}

// NewTokenService creates the token service. When jwksURL is set the JWKS is
// fetched once and refreshed in the background.
func NewTokenService(cacheSvc caching.CacheService, jwtSecret string, tokenTTL time.Duration, jwksURL string, logger *zap.Logger) (TokenService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &tokenService{
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("jwks refresh failed", zap.String("url", jwksURL), zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load jwks from %s: %w", jwksURL, err)
		}
		s.jwks = jwks
	}

	return s, nil
}

func (s *tokenService) Issue(ctx context.Context, sessionID string, account *models.Account) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		SessionID:  sessionID,
		UserID:     account.ID,
		Role:       account.Role,
		Status:     account.Status,
		CustomerID: account.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   account.ID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL / time.Second),
		SessionID:   sessionID,
		IssuedAt:    now,
	}, nil
}

func (s *tokenService) Validate(ctx context.Context, token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.Keyfunc,
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !parsed.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *tokenService) Revoke(ctx context.Context, claims *TokenClaims) error {
	if s.cacheSvc == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.tokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.cacheSvc.SetString(ctx, revokedKey(claims.ID), "revoked", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *tokenService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.cacheSvc == nil || tokenID == "" {
		return false, nil
	}
	val, err := s.cacheSvc.GetString(ctx, revokedKey(tokenID))
	if err != nil {
		// Redis outage: fail open, the token signature is still checked
		s.logger.Warn("revocation lookup failed", zap.String("token_id", tokenID), zap.Error(err))
		return false, nil
	}
	return val != "", nil
}

func (s *tokenService) Keyfunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return s.jwtSecret, nil
	default:
		if s.jwks == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwks.Keyfunc(token)
	}
}

func (s *tokenService) Close() {
	if s.jwks != nil {
		s.jwks.EndBackground()
	}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("leadsync:token_revoked:%s", tokenID)
}
