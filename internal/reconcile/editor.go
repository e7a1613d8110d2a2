// Package reconcile mediates role-permission edits: it merges the set the
// operator toggled in the editor with the baseline fetched when the editor
// opened, and submits the merged set to the authority.
package reconcile

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ragster/console/internal/authority"
)

// Authority is the slice of the authority client the reconciler needs.
type Authority interface {
	ListPermissions(ctx context.Context, credential string) ([]authority.Permission, error)
	RolePermissions(ctx context.Context, credential string, roleID int64) ([]authority.Permission, error)
	AssignPermissions(ctx context.Context, credential string, roleID int64, permissionIDs []int64) error
}

// Editor is one in-progress assignment editing session for a single role.
// It is owned by exactly one active view; it is not safe for concurrent
// use.
type Editor struct {
	roleID   int64
	token    string
	existing map[int64]struct{}
	selected map[int64]struct{}
}

// NewEditor seeds an editing session from the role's freshly fetched
// assignment baseline. The selection starts equal to the baseline.
func NewEditor(roleID int64, existing []int64) *Editor {
	e := &Editor{
		roleID:   roleID,
		token:    uuid.NewString(),
		existing: make(map[int64]struct{}, len(existing)),
		selected: make(map[int64]struct{}, len(existing)),
	}
	for _, id := range existing {
		e.existing[id] = struct{}{}
		e.selected[id] = struct{}{}
	}
	return e
}

// Open fetches the full permission catalog and the role's current
// assignment in parallel, and returns an editor seeded from the latter.
func Open(ctx context.Context, client Authority, credential string, roleID int64) (*Editor, []authority.Permission, error) {
	var (
		available []authority.Permission
		assigned  []authority.Permission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		available, err = client.ListPermissions(gctx, credential)
		return err
	})
	g.Go(func() error {
		var err error
		assigned, err = client.RolePermissions(gctx, credential, roleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	ids := make([]int64, len(assigned))
	for i, p := range assigned {
		ids[i] = p.ID
	}
	return NewEditor(roleID, ids), available, nil
}

// RoleID returns the role this editor belongs to.
func (e *Editor) RoleID() int64 {
	return e.roleID
}

// Token identifies this editing session. Callers compare it against the
// currently open editor before applying a completion, so a response
// arriving after the editor was replaced or closed is discarded.
func (e *Editor) Token() string {
	return e.token
}

// Toggle flips the presence of a permission in the selection. Purely
// local: nothing reaches the network until Save.
func (e *Editor) Toggle(id int64) {
	if _, ok := e.selected[id]; ok {
		delete(e.selected, id)
		return
	}
	e.selected[id] = struct{}{}
}

// IsSelected reports whether the permission is currently toggled on.
func (e *Editor) IsSelected(id int64) bool {
	_, ok := e.selected[id]
	return ok
}

// Selected returns the toggled-on permission IDs in ascending order.
func (e *Editor) Selected() []int64 {
	return sortedIDs(e.selected)
}

// Existing returns the baseline permission IDs in ascending order.
func (e *Editor) Existing() []int64 {
	return sortedIDs(e.existing)
}

// Submission computes the set that Save sends: the union of the baseline
// and the current selection. Deselecting an ID that was part of the
// baseline therefore does not remove it; the persisted request can only
// add. This mirrors the authority's add-only assign endpoint.
func (e *Editor) Submission() []int64 {
	union := make(map[int64]struct{}, len(e.existing)+len(e.selected))
	for id := range e.existing {
		union[id] = struct{}{}
	}
	for id := range e.selected {
		union[id] = struct{}{}
	}
	return sortedIDs(union)
}

// Save submits the merged set and returns the authoritative assignment
// re-fetched from the authority. Errors follow the authority taxonomy and
// are never retried here.
func (e *Editor) Save(ctx context.Context, client Authority, credential string) ([]authority.Permission, error) {
	if err := client.AssignPermissions(ctx, credential, e.roleID, e.Submission()); err != nil {
		return nil, err
	}
	return client.RolePermissions(ctx, credential, e.roleID)
}

// Save reconciles a selection against a baseline and submits in one shot,
// for callers that carry the two sets across a request boundary instead of
// holding an Editor. Semantics are identical to Editor.Save.
func Save(ctx context.Context, client Authority, credential string, roleID int64, selected, existing []int64) ([]authority.Permission, error) {
	e := NewEditor(roleID, existing)
	keep := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		keep[id] = struct{}{}
	}
	for _, id := range e.Existing() {
		if _, ok := keep[id]; !ok {
			e.Toggle(id)
		}
	}
	for _, id := range selected {
		if !e.IsSelected(id) {
			e.Toggle(id)
		}
	}
	return e.Save(ctx, client, credential)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
