// Package route decides whether a path renders or redirects for the current auth state.
package route

import (
	"strings"

	"github.com/dtroode/account-client/internal/model"
)

// Well-known paths.
const (
	PathHome           = "/"
	PathSignIn         = "/signin"
	PathSignUp         = "/signup"
	PathTwoFactor      = "/twofa"
	PathDashboard      = "/dashboard"
	PathAdminDashboard = "/admin-dashboard"
)

// Rule is the authorization requirement of one path.
type Rule struct {
	Path         string
	RequiresAuth bool
	Role         model.Role
}

// DefaultRules is the route table of the account client.
// Public routes carry the user role.
var DefaultRules = []Rule{
	{Path: PathHome, Role: model.RoleUser},
	{Path: PathSignUp, Role: model.RoleUser},
	{Path: PathSignIn, Role: model.RoleUser},
	{Path: PathTwoFactor, Role: model.RoleUser},
	{Path: PathDashboard, RequiresAuth: true, Role: model.RoleUser},
	{Path: PathDashboard + "/security", RequiresAuth: true, Role: model.RoleUser},
	{Path: PathDashboard + "/profile", RequiresAuth: true, Role: model.RoleUser},
	{Path: PathAdminDashboard, RequiresAuth: true, Role: model.RoleAdmin},
	{Path: PathAdminDashboard + "/security", RequiresAuth: true, Role: model.RoleAdmin},
	{Path: PathAdminDashboard + "/profile", RequiresAuth: true, Role: model.RoleAdmin},
}

// Table looks up rules by normalized path.
type Table struct {
	rules map[string]Rule
}

// NewTable creates new Table instance from rules.
func NewTable(rules []Rule) *Table {
	t := &Table{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		t.rules[Normalize(r.Path)] = r
	}
	return t
}

// Lookup returns the rule for path.
func (t *Table) Lookup(path string) (Rule, bool) {
	r, ok := t.rules[Normalize(path)]
	return r, ok
}

// Normalize drops the query, the fragment and a trailing slash.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// HomeFor returns the landing path of role.
func HomeFor(role model.Role) (string, bool) {
	switch role {
	case model.RoleUser:
		return PathDashboard, true
	case model.RoleAdmin:
		return PathAdminDashboard, true
	default:
		return "", false
	}
}
