package route

import (
	"context"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

// Outcome is what the gate tells the caller to do with a path.
type Outcome int

const (
	// Loading means the startup session probe has not resolved yet.
	Loading Outcome = iota
	Render
	Redirect
	NotFound
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "loading"
	}
}

// Decision is the gate's answer for one path.
type Decision struct {
	Outcome Outcome
	Target  string
}

// AuthSource is the part of the auth store the gate reads.
type AuthSource interface {
	State() model.AuthState
	Ready() <-chan struct{}
}

// Gate authorizes navigation. It never decides before the auth store is ready.
type Gate struct {
	auth   AuthSource
	table  *Table
	logger *logger.Logger
}

// NewGate creates new Gate instance.
func NewGate(auth AuthSource, table *Table, logger *logger.Logger) *Gate {
	if table == nil {
		table = NewTable(DefaultRules)
	}
	return &Gate{
		auth:   auth,
		table:  table,
		logger: logger,
	}
}

// Evaluate decides without blocking; it returns Loading until the store is ready.
func (g *Gate) Evaluate(path string) Decision {
	select {
	case <-g.auth.Ready():
		return g.decide(path)
	default:
		return Decision{Outcome: Loading}
	}
}

// Resolve waits for the store to be ready, then decides.
func (g *Gate) Resolve(ctx context.Context, path string) (Decision, error) {
	select {
	case <-g.auth.Ready():
		return g.decide(path), nil
	case <-ctx.Done():
		return Decision{Outcome: Loading}, ctx.Err()
	}
}

func (g *Gate) decide(path string) Decision {
	rule, ok := g.table.Lookup(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}

	d := Decide(g.auth.State(), rule)
	if d.Outcome == Redirect {
		g.logger.Debug("Route gate: redirecting", "path", path, "target", d.Target)
	}
	return d
}

// Decide applies rule to state. Role mismatch is checked before authentication.
func Decide(state model.AuthState, rule Rule) Decision {
	role := state.Role()

	if state.Status && role != rule.Role {
		if home, ok := HomeFor(role); ok {
			return Decision{Outcome: Redirect, Target: home}
		}
	}

	if rule.RequiresAuth {
		if !state.Status {
			return Decision{Outcome: Redirect, Target: PathSignIn}
		}
		if _, ok := HomeFor(role); !ok {
			return Decision{Outcome: Redirect, Target: PathSignIn}
		}
		return Decision{Outcome: Render}
	}

	if state.Status && role == rule.Role {
		if home, ok := HomeFor(role); ok {
			return Decision{Outcome: Redirect, Target: home}
		}
	}

	return Decision{Outcome: Render}
}
