package reconcile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/reconcile"
)

type stubAuthority struct {
	catalog    []authority.Permission
	assigned   map[int64]map[int64]struct{}
	lastSubmit []int64
	saves      int
}

func newStubAuthority(catalog []authority.Permission) *stubAuthority {
	return &stubAuthority{catalog: catalog, assigned: make(map[int64]map[int64]struct{})}
}

func (s *stubAuthority) seed(roleID int64, ids ...int64) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.assigned[roleID] = set
}

func (s *stubAuthority) ListPermissions(ctx context.Context, credential string) ([]authority.Permission, error) {
	return s.catalog, nil
}

func (s *stubAuthority) RolePermissions(ctx context.Context, credential string, roleID int64) ([]authority.Permission, error) {
	var out []authority.Permission
	for _, p := range s.catalog {
		if _, ok := s.assigned[roleID][p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubAuthority) AssignPermissions(ctx context.Context, credential string, roleID int64, permissionIDs []int64) error {
	s.saves++
	s.lastSubmit = append([]int64(nil), permissionIDs...)
	set := s.assigned[roleID]
	if set == nil {
		set = make(map[int64]struct{})
		s.assigned[roleID] = set
	}
	// Add-only, like the real endpoint.
	for _, id := range permissionIDs {
		set[id] = struct{}{}
	}
	return nil
}

func catalog(ids ...int64) []authority.Permission {
	out := make([]authority.Permission, len(ids))
	for i, id := range ids {
		out[i] = authority.Permission{ID: id}
	}
	return out
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	e := reconcile.NewEditor(1, []int64{2, 3})

	require.False(t, e.IsSelected(7))
	e.Toggle(7)
	require.True(t, e.IsSelected(7))
	e.Toggle(7)
	require.False(t, e.IsSelected(7))
	require.Equal(t, []int64{2, 3}, e.Selected())

	// Same for an ID seeded from the baseline.
	e.Toggle(2)
	require.Equal(t, []int64{3}, e.Selected())
	e.Toggle(2)
	require.Equal(t, []int64{2, 3}, e.Selected())
}

func TestSubmissionIsUnion(t *testing.T) {
	cases := []struct {
		name     string
		existing []int64
		toggles  []int64
		want     []int64
	}{
		{"no edits", []int64{1, 2}, nil, []int64{1, 2}},
		{"pure addition", []int64{1}, []int64{4}, []int64{1, 4}},
		{"deselection does not remove baseline", []int64{2, 3}, []int64{2}, []int64{2, 3}},
		{"empty baseline", nil, []int64{5, 6}, []int64{5, 6}},
		{"deselect everything", []int64{8, 9}, []int64{8, 9}, []int64{8, 9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := reconcile.NewEditor(1, tc.existing)
			for _, id := range tc.toggles {
				e.Toggle(id)
			}
			require.Equal(t, tc.want, e.Submission())
		})
	}
}

// The documented scenario: role 5 holds {2,3}; the operator keeps only 1
// selected from {1,2}; the save still submits {1,2,3}.
func TestDeselectedBaselineIsReAdded(t *testing.T) {
	stub := newStubAuthority(catalog(1, 2, 3))
	stub.seed(5, 2, 3)

	e, available, err := reconcile.Open(context.Background(), stub, "token", 5)
	require.NoError(t, err)
	require.Len(t, available, 3)
	require.Equal(t, []int64{2, 3}, e.Existing())
	require.Equal(t, []int64{2, 3}, e.Selected())

	e.Toggle(1) // select 1
	e.Toggle(2) // deselect 2
	e.Toggle(3) // deselect 3
	e.Toggle(3) // ...and change their mind about 3
	require.Equal(t, []int64{1, 3}, e.Selected())

	result, err := e.Save(context.Background(), stub, "token")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, stub.lastSubmit)
	require.Len(t, result, 3)
}

func TestSaveIsIdempotent(t *testing.T) {
	stub := newStubAuthority(catalog(1, 2, 3, 4))
	stub.seed(7, 1)

	e, _, err := reconcile.Open(context.Background(), stub, "token", 7)
	require.NoError(t, err)
	e.Toggle(4)

	first, err := e.Save(context.Background(), stub, "token")
	require.NoError(t, err)
	second, err := e.Save(context.Background(), stub, "token")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 2, stub.saves)
	require.Equal(t, []int64{1, 4}, stub.lastSubmit)
}

func TestEditorTokensDistinguishSessions(t *testing.T) {
	a := reconcile.NewEditor(1, nil)
	b := reconcile.NewEditor(1, nil)
	require.NotEmpty(t, a.Token())
	require.NotEqual(t, a.Token(), b.Token())
}

func TestOpenPropagatesAuthorityErrors(t *testing.T) {
	_, _, err := reconcile.Open(context.Background(), failingAuthority{}, "token", 1)
	require.ErrorIs(t, err, authority.ErrUnavailable)
}

type failingAuthority struct{}

func (failingAuthority) ListPermissions(ctx context.Context, credential string) ([]authority.Permission, error) {
	return nil, authority.ErrUnavailable
}

func (failingAuthority) RolePermissions(ctx context.Context, credential string, roleID int64) ([]authority.Permission, error) {
	return nil, authority.ErrUnavailable
}

func (failingAuthority) AssignPermissions(ctx context.Context, credential string, roleID int64, permissionIDs []int64) error {
	return authority.ErrUnavailable
}
