package route

import (
	"strings"

	"github.com/dtroode/account-client/internal/model"
)

// Link is one navigation entry.
type Link struct {
	Label  string
	Target string
}

// Anchor reports whether the link scrolls to a section of the home page.
func (l Link) Anchor() bool {
	return strings.HasPrefix(l.Target, "#")
}

var (
	publicNav = []Link{
		{Label: "Home", Target: PathHome},
		{Label: "Features", Target: "#features"},
		{Label: "About", Target: "#about"},
	}
	userNav  = []Link{{Label: "Dashboard", Target: PathDashboard}}
	adminNav = []Link{{Label: "Dashboard", Target: PathAdminDashboard}}
)

// NavFor returns the header navigation for state.
func NavFor(state model.AuthState) []Link {
	switch {
	case !state.Status:
		return clone(publicNav)
	case state.Role() == model.RoleAdmin:
		return clone(adminNav)
	default:
		return clone(userNav)
	}
}

// MenuFor returns the user menu entries. Any role but admin gets the user menu.
func MenuFor(role model.Role) []Link {
	home := PathDashboard
	if role == model.RoleAdmin {
		home = PathAdminDashboard
	}
	return []Link{
		{Label: "Profile", Target: home + "/profile"},
		{Label: "Security", Target: home + "/security"},
	}
}

// LogoTarget is where the header logo leads.
func LogoTarget(state model.AuthState) string {
	switch {
	case !state.Status:
		return PathHome
	case state.Role() == model.RoleAdmin:
		return PathAdminDashboard
	default:
		return PathDashboard
	}
}

func clone(links []Link) []Link {
	return append([]Link(nil), links...)
}
