package authority

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListRoles returns all roles.
func (c *Client) ListRoles(ctx context.Context, credential string) ([]Role, error) {
	var roles []Role
	if err := c.do(ctx, http.MethodGet, "/role/", credential, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole fetches a single role by ID.
func (c *Client) GetRole(ctx context.Context, credential string, id int64) (Role, error) {
	var role Role
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/role/%d", id), credential, nil, &role); err != nil {
		return Role{}, err
	}
	return role, nil
}

// CreateRole creates a role. Name is the business key and can only be set here.
func (c *Client) CreateRole(ctx context.Context, credential string, in RoleCreate) (Role, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.DisplayName) == "" {
		return Role{}, fmt.Errorf("%w: name and display_name are required", ErrValidation)
	}
	var role Role
	if err := c.do(ctx, http.MethodPost, "/role/", credential, in, &role); err != nil {
		return Role{}, err
	}
	return role, nil
}

// UpdateRole edits the mutable fields of a role. The payload type carries no
// name field, so the business key cannot change through this contract.
func (c *Client) UpdateRole(ctx context.Context, credential string, id int64, in RoleUpdate) (Role, error) {
	var role Role
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/role/%d", id), credential, in, &role); err != nil {
		return Role{}, err
	}
	return role, nil
}

// DeleteRole removes a role. Deleting a nonexistent ID fails with ErrNotFound.
func (c *Client) DeleteRole(ctx context.Context, credential string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/role/%d", id), credential, nil, nil)
}
