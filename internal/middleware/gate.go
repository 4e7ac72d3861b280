package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"leadsync/internal/access"
	"leadsync/internal/common"
)

// Gate applies the route gate to API routes. The API path, minus its version
// prefix, is matched against the same rules as the dashboard pages.
func Gate(rules []access.Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			path := pagePath(c.Path())
			account := sess.Account()
			decision := access.Decide(access.Input{
				IsAuthenticated: true,
				Role:            account.Role,
				Status:          account.Status,
				RequiredRole:    access.RequiredRoleFor(rules, path),
				CurrentPath:     path,
			})

			// RequireSession has already resolved the session, so the
			// decision is never Wait
			if decision.Outcome == access.Render {
				return next(c)
			}
			return denied(c, decision.Location)
		}
	}
}

func denied(c echo.Context, location string) error {
	switch location {
	case access.LoginPath:
		return common.SendRedirectError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", location)
	case access.PaywallPath:
		return common.SendRedirectError(c, http.StatusPaymentRequired, "SUBSCRIPTION_INACTIVE", "An active subscription is required", location)
	default:
		return common.SendRedirectError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", location)
	}
}

// pagePath maps /v1/leads/:id to /leads/:id
func pagePath(routePath string) string {
	trimmed := strings.TrimPrefix(routePath, "/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 && isVersionSegment(trimmed[:i]) {
		return trimmed[i:]
	}
	if isVersionSegment(trimmed) {
		return "/"
	}
	return "/" + trimmed
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
