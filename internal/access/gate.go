// Package access decides whether a dashboard route may be shown for the
// current session state.
package access

import (
	"strings"

	"leadsync/internal/models"
)

const (
	LoginPath        = "/login"
	PaywallPath      = "/paywall"
	AdminHomePath    = "/admin"
	CustomerHomePath = "/dashboard"
)

// Outcome is what the client router should do
type Outcome string

const (
	Wait     Outcome = "wait"
	Redirect Outcome = "redirect"
	Render   Outcome = "render"
)

// Input is everything the gate looks at
type Input struct {
	Loading         bool
	IsAuthenticated bool
	Role            models.Role
	Status          models.SubscriptionStatus
	RequiredRole    models.Role
	CurrentPath     string
}

// Decision is the gate's answer. Location is set for redirects.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Location string  `json:"location,omitempty"`
}

// Decide evaluates the checks in order: loading, authentication, paywall,
// required role.
func Decide(in Input) Decision {
	if in.Loading {
		return Decision{Outcome: Wait}
	}
	if !in.IsAuthenticated {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	if in.Status == models.SubscriptionInactive && in.Role == models.RoleCustomer && in.CurrentPath != PaywallPath {
		return Decision{Outcome: Redirect, Location: PaywallPath}
	}
	if in.RequiredRole != "" && in.RequiredRole != in.Role {
		return Decision{Outcome: Redirect, Location: HomeFor(in.Role)}
	}
	return Decision{Outcome: Render}
}

// HomeFor is the landing page for a role
func HomeFor(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminHomePath
	}
	return CustomerHomePath
}

// Rule ties a path prefix to the role it requires
type Rule struct {
	Prefix       string
	RequiredRole models.Role
}

// DefaultRules covers the dashboard's top-level sections
var DefaultRules = []Rule{
	{Prefix: "/admin", RequiredRole: models.RoleAdmin},
	{Prefix: "/dashboard", RequiredRole: models.RoleCustomer},
	{Prefix: "/leads", RequiredRole: models.RoleCustomer},
	{Prefix: "/billing", RequiredRole: models.RoleCustomer},
	{Prefix: "/crm", RequiredRole: models.RoleCustomer},
	{Prefix: "/pixel", RequiredRole: models.RoleCustomer},
}

// RequiredRoleFor returns the role the longest matching rule requires, or ""
// when no rule matches
func RequiredRoleFor(rules []Rule, path string) models.Role {
	var (
		role    models.Role
		longest int
	)
	for _, r := range rules {
		if matchesPrefix(path, r.Prefix) && len(r.Prefix) > longest {
			role = r.RequiredRole
			longest = len(r.Prefix)
		}
	}
	return role
}

func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
