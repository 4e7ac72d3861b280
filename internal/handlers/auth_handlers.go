package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/access"
	"leadsync/internal/common"
	"leadsync/internal/middleware"
	"leadsync/internal/models"
	"leadsync/internal/services"
)

// AuthHandlers handles sign-in, sign-up and the current user
type AuthHandlers struct {
	sessions     services.SessionService
	tokens       services.TokenService
	cookieName   string
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandlers creates a new auth handlers instance. When cookieName is
// set, login also sets the token as an HttpOnly cookie.
func NewAuthHandlers(sessions services.SessionService, tokens services.TokenService, cookieName string, secureCookie bool, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		sessions:     sessions,
		tokens:       tokens,
		cookieName:   cookieName,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// LoginResponse is the token plus the signed-in principal
type LoginResponse struct {
	models.TokenResponse
	User     *models.Account `json:"user"`
	Redirect string          `json:"redirect"`
}

// MeResponse describes the current session
type MeResponse struct {
	User      *models.Account     `json:"user"`
	SessionID string              `json:"session_id"`
	Leads     services.LeadsState `json:"leads"`
}

// Login godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}

	ctx := c.Request().Context()
	sess, err := h.sessions.Login(ctx, req)
	if err != nil {
		return backendError(c, h.logger, err, http.StatusUnauthorized)
	}

	account := sess.Account()
	token, err := h.tokens.Issue(ctx, sess.ID, account)
	if err != nil {
		h.logger.Error("failed to issue token", zap.String("session_id", sess.ID), zap.Error(err))
		return common.SendServerError(c, "Failed to generate token")
	}

	if h.cookieName != "" {
		c.SetCookie(&http.Cookie{
			Name:     h.cookieName,
			Value:    token.AccessToken,
			Path:     "/",
			Expires:  token.IssuedAt.Add(time.Duration(token.ExpiresIn) * time.Second),
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: *token,
		User:          account,
		Redirect:      access.HomeFor(account.Role),
	})
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Account"
// @Success 201 {object} map[string]string
// @Router /v1/auth/register [post]
func (h *AuthHandlers) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.Email = strings.TrimSpace(req.Email)
	for field, value := range map[string]string{"name": req.Name, "email": req.Email, "password": req.Password} {
		if err := common.ValidateRequiredString(value, field); err != nil {
			return common.SendValidationError(c, field, err.Error())
		}
	}

	if err := h.sessions.Register(c.Request().Context(), req); err != nil {
		return backendError(c, h.logger, err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Account created", "redirect": access.LoginPath})
}

// Logout godoc
// @Summary End the session
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandlers) Logout(c echo.Context) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	ctx := c.Request().Context()

	if claims, ok := middleware.ClaimsFrom(c); ok {
		if err := h.tokens.Revoke(ctx, claims); err != nil {
			h.logger.Warn("failed to revoke token", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	if err := h.sessions.Logout(ctx, sess.ID); err != nil {
		h.logger.Error("logout failed", zap.String("session_id", sess.ID), zap.Error(err))
		return common.SendServerError(c, "Failed to end session")
	}

	if h.cookieName != "" {
		c.SetCookie(&http.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookie,
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} MeResponse
// @Router /v1/me [get]
func (h *AuthHandlers) Me(c echo.Context) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, MeResponse{
		User:      sess.Account(),
		SessionID: sess.ID,
		Leads:     sess.Leads.State(),
	})
}

// Navigate godoc
// @Summary Gate decision for a dashboard page
// @Description Resolves the session, restoring it from the mirror when it is
// @Description not in memory. Reports wait while another request is restoring it.
// @Tags auth
// @Produce json
// @Param path query string true "Dashboard path"
// @Success 200 {object} access.Decision
// @Router /v1/navigate [get]
func (h *AuthHandlers) Navigate(c echo.Context) error {
	path := c.QueryParam("path")
	if !strings.HasPrefix(path, "/") {
		return common.SendValidationError(c, "path", "path must start with /")
	}

	in := access.Input{
		CurrentPath:  path,
		RequiredRole: access.RequiredRoleFor(access.DefaultRules, path),
	}

	if claims, ok := h.claims(c); ok {
		sess, loading := h.sessions.Lookup(claims.SessionID)
		if sess == nil && !loading {
			sess, _ = h.sessions.Resolve(c.Request().Context(), claims.SessionID)
		}
		switch {
		case sess != nil:
			account := sess.Account()
			in.IsAuthenticated = true
			in.Role = account.Role
			in.Status = account.Status
		case loading:
			in.Loading = true
		}
	}

	return c.JSON(http.StatusOK, access.Decide(in))
}

// claims reads the token without requiring one. Navigate is public so that an
// anonymous visitor gets a login redirect rather than a 401.
func (h *AuthHandlers) claims(c echo.Context) (*services.TokenClaims, bool) {
	raw := ""
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimPrefix(auth, "Bearer ")
	} else if h.cookieName != "" {
		if cookie, err := c.Cookie(h.cookieName); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return nil, false
	}
	claims, err := h.tokens.Validate(c.Request().Context(), raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}
