package middleware

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion describes one version of the dashboard API
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware stamps version headers onto API responses
type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active", Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// VersionRoute creates a version-specific route group
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(vm.versionHeader(version))
	return group
}

func (vm *VersionMiddleware) versionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ver, ok := vm.supportedVersions[version]
			if !ok {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error":              "Unsupported API version",
					"supported_versions": strings.Join(vm.versions(), ", "),
				})
			}

			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if ver.Status == "deprecated" && ver.SunsetDate != nil {
				h.Set("X-API-Deprecated", "true")
				h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
				h.Set("Warning", "299 leadsync \"This API version is deprecated and will be removed on "+ver.SunsetDate.Format("2006-01-02")+"\"")
			}
			if ver.Message != "" {
				h.Set("X-API-Message", ver.Message)
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// Deprecate marks a version as deprecated from now on
func (vm *VersionMiddleware) Deprecate(version, message string, sunset time.Time) {
	vm.supportedVersions[version] = APIVersion{
		Version:    version,
		Status:     "deprecated",
		SunsetDate: &sunset,
		Message:    message,
	}
}

// GetCurrentVersion returns the default API version
func (vm *VersionMiddleware) GetCurrentVersion() string {
	return vm.defaultVersion
}

// Current describes the default API version as the health report shows it
func (vm *VersionMiddleware) Current() APIVersion {
	return vm.supportedVersions[vm.GetCurrentVersion()]
}

func (vm *VersionMiddleware) versions() []string {
	out := make([]string, 0, len(vm.supportedVersions))
	for v := range vm.supportedVersions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
