package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/common"
	"leadsync/internal/services"
)

const (
	tokenContextKey   = "token"
	claimsContextKey  = "claims"
	sessionContextKey = "session"
)

// SessionMiddleware authenticates requests and attaches the dashboard session
type SessionMiddleware struct {
	tokens   services.TokenService
	sessions services.SessionService
	jwt      echo.MiddlewareFunc
	logger   *zap.Logger
}

// NewSessionMiddleware accepts the token as a bearer header or as cookieName
func NewSessionMiddleware(tokens services.TokenService, sessions services.SessionService, cookieName string, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	lookup := "header:Authorization:Bearer "
	if cookieName != "" {
		lookup += ",cookie:" + cookieName
	}

	m := &SessionMiddleware{tokens: tokens, sessions: sessions, logger: logger}
	m.jwt = echojwt.WithConfig(echojwt.Config{
		ContextKey:  tokenContextKey,
		TokenLookup: lookup,
		KeyFunc:     tokens.Keyfunc,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid token")
		},
	})
	return m
}

// RequireSession rejects requests without a valid token bound to a live session
func (m *SessionMiddleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.jwt(m.loadSession(next))
	}
}

func (m *SessionMiddleware) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		claims, ok := token.Claims.(*services.TokenClaims)
		if !ok || claims.SessionID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}

		ctx := c.Request().Context()
		revoked, err := m.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Error checking token")
		}
		if revoked {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
		}

		sess, err := m.sessions.Resolve(ctx, claims.SessionID)
		if err != nil {
			if errors.Is(err, services.ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
			}
			m.logger.Error("session resolve failed", zap.String("session_id", claims.SessionID), zap.Error(err))
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Session store unavailable")
		}

		ctx = context.WithValue(ctx, common.SessionIDKey, sess.ID)
		ctx = context.WithValue(ctx, common.UserIDKey, sess.Account().ID)
		c.SetRequest(c.Request().WithContext(ctx))
		SetClaims(c, claims)
		SetSession(c, sess)

		return next(c)
	}
}

// SetSession attaches sess to the request
func SetSession(c echo.Context, sess *services.Session) {
	c.Set(sessionContextKey, sess)
}

// SetClaims attaches the verified token claims to the request
func SetClaims(c echo.Context, claims *services.TokenClaims) {
	c.Set(claimsContextKey, claims)
}

// SessionFrom returns the session attached by RequireSession
func SessionFrom(c echo.Context) (*services.Session, bool) {
	sess, ok := c.Get(sessionContextKey).(*services.Session)
	return sess, ok && sess != nil
}

// ClaimsFrom returns the token claims attached by RequireSession
func ClaimsFrom(c echo.Context) (*services.TokenClaims, bool) {
	claims, ok := c.Get(claimsContextKey).(*services.TokenClaims)
	return claims, ok && claims != nil
}
