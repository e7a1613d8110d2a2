package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/gate"
)

type stubFetcher struct {
	roles []authority.UserRole
	err   error
	calls int
}

func (s *stubFetcher) UserRoles(ctx context.Context, credential string) ([]authority.UserRole, error) {
	s.calls++
	return s.roles, s.err
}

func TestUnresolvedWithoutCredential(t *testing.T) {
	fetcher := &stubFetcher{}
	g := gate.New(fetcher, nil)

	res := g.Resolve(context.Background())
	require.Equal(t, gate.StateUnresolved, res.State)
	require.False(t, res.IsAdmin)
	require.Zero(t, fetcher.calls)
}

func TestAdminDerivation(t *testing.T) {
	cases := []struct {
		name  string
		roles []authority.UserRole
		want  bool
	}{
		{"empty set", nil, false},
		{"no admin entry", []authority.UserRole{{RoleName: "editor"}, {RoleName: "viewer"}}, false},
		{"exact match", []authority.UserRole{{RoleName: "admin"}}, true},
		{"case-insensitive match", []authority.UserRole{{RoleName: "Admin"}}, true},
		{"mixed memberships", []authority.UserRole{{RoleName: "viewer"}, {RoleName: "ADMIN"}}, true},
		{"missing role name", []authority.UserRole{{KnowledgeBaseID: 1}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := gate.New(&stubFetcher{roles: tc.roles}, nil)
			g.SetCredential("tok")
			res := g.Resolve(context.Background())
			require.Equal(t, gate.StateResolved, res.State)
			require.Equal(t, tc.want, res.IsAdmin)
			require.Equal(t, tc.want, g.IsAdmin())
		})
	}
}

func TestResolvedOnceNotReDerived(t *testing.T) {
	fetcher := &stubFetcher{roles: []authority.UserRole{{RoleName: "Admin"}}}
	g := gate.New(fetcher, nil)
	g.SetCredential("tok")

	require.True(t, g.Resolve(context.Background()).IsAdmin)
	require.True(t, g.Resolve(context.Background()).IsAdmin)
	require.Equal(t, 1, fetcher.calls)
}

func TestFetchFailureDegradesToNotAdmin(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	g := gate.New(fetcher, nil)
	g.SetCredential("tok")

	res := g.Resolve(context.Background())
	require.Equal(t, gate.StateFailed, res.State)
	require.False(t, res.IsAdmin)

	// Not retried automatically.
	res = g.Resolve(context.Background())
	require.Equal(t, gate.StateFailed, res.State)
	require.Equal(t, 1, fetcher.calls)
}

func TestCredentialChangeResets(t *testing.T) {
	fetcher := &stubFetcher{roles: []authority.UserRole{{RoleName: "admin"}}}
	g := gate.New(fetcher, nil)
	g.SetCredential("tok-1")
	require.True(t, g.Resolve(context.Background()).IsAdmin)

	// Logout: capability disappears immediately.
	g.SetCredential("")
	res := g.Resolve(context.Background())
	require.Equal(t, gate.StateUnresolved, res.State)
	require.False(t, res.IsAdmin)

	// New login recomputes from scratch.
	fetcher.roles = []authority.UserRole{{RoleName: "viewer"}}
	g.SetCredential("tok-2")
	res = g.Resolve(context.Background())
	require.Equal(t, gate.StateResolved, res.State)
	require.False(t, res.IsAdmin)
	require.Equal(t, 2, fetcher.calls)
}

func TestSameCredentialKeepsResolution(t *testing.T) {
	fetcher := &stubFetcher{roles: []authority.UserRole{{RoleName: "admin"}}}
	g := gate.New(fetcher, nil)
	g.SetCredential("tok")
	require.True(t, g.Resolve(context.Background()).IsAdmin)

	g.SetCredential("tok")
	require.True(t, g.IsAdmin())
	require.Equal(t, 1, fetcher.calls)
}
