// Package gate decides whether the privileged administrative surfaces are
// exposed to the current session. The capability is derived once per
// credential from the caller's fetched role set, never re-derived per
// request.
package gate

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ragster/console/internal/authority"
)

// AdminRoleName is the single privileged role name recognized by the gate.
// The comparison is case-insensitive.
const AdminRoleName = "admin"

// State enumerates the gate's lifecycle.
type State int

const (
	// StateUnresolved means no credential is present yet.
	StateUnresolved State = iota
	// StateLoading means the role fetch is in flight.
	StateLoading
	// StateResolved means the capability has been computed.
	StateResolved
	// StateFailed means the role fetch errored. Treated as not-admin and
	// not retried automatically.
	StateFailed
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateLoading:
		return "loading"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolution is the outcome the UI consumes.
type Resolution struct {
	State   State
	IsAdmin bool
}

// RolesFetcher fetches the caller's role memberships from the authority.
type RolesFetcher interface {
	UserRoles(ctx context.Context, credential string) ([]authority.UserRole, error)
}

// Gate derives the is-admin capability for one session's credential.
type Gate struct {
	fetcher RolesFetcher
	logger  *slog.Logger

	mu         sync.Mutex
	credential string
	state      State
	isAdmin    bool
}

// New constructs an unresolved Gate.
func New(fetcher RolesFetcher, logger *slog.Logger) *Gate {
	return &Gate{fetcher: fetcher, logger: logger}
}

// SetCredential installs the session credential. Any change (login, logout)
// resets the gate to unresolved so the capability is recomputed from
// scratch on the next Resolve.
func (g *Gate) SetCredential(credential string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.credential == credential {
		return
	}
	g.credential = credential
	g.state = StateUnresolved
	g.isAdmin = false
}

// Resolve returns the current resolution, fetching the role set when it has
// not been computed for the installed credential. A fetch failure degrades
// to not-admin rather than raising: privileged surfaces hide, the rest of
// the console stays usable.
func (g *Gate) Resolve(ctx context.Context) Resolution {
	g.mu.Lock()
	credential := g.credential
	if credential == "" {
		g.state = StateUnresolved
		g.isAdmin = false
		res := g.resolution()
		g.mu.Unlock()
		return res
	}
	if g.state == StateResolved || g.state == StateFailed {
		res := g.resolution()
		g.mu.Unlock()
		return res
	}
	g.state = StateLoading
	g.mu.Unlock()

	roles, err := g.fetcher.UserRoles(ctx, credential)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.credential != credential {
		// Credential changed while the fetch was in flight; this
		// completion is stale and must not be applied.
		return g.resolution()
	}
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("role fetch failed, degrading to not-admin", slog.Any("error", err))
		}
		g.state = StateFailed
		g.isAdmin = false
		return g.resolution()
	}
	g.state = StateResolved
	g.isAdmin = hasAdminRole(roles)
	return g.resolution()
}

// IsAdmin reports the last resolved capability without triggering a fetch.
func (g *Gate) IsAdmin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateResolved && g.isAdmin
}

func (g *Gate) resolution() Resolution {
	return Resolution{State: g.state, IsAdmin: g.state == StateResolved && g.isAdmin}
}

func hasAdminRole(roles []authority.UserRole) bool {
	for _, r := range roles {
		if strings.EqualFold(r.RoleName, AdminRoleName) {
			return true
		}
	}
	return false
}
