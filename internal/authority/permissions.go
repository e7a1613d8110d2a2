package authority

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListPermissions returns all permissions.
func (c *Client) ListPermissions(ctx context.Context, credential string) ([]Permission, error) {
	var perms []Permission
	if err := c.do(ctx, http.MethodGet, "/permission/", credential, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// GetPermission fetches a single permission by ID.
func (c *Client) GetPermission(ctx context.Context, credential string, id int64) (Permission, error) {
	var perm Permission
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/permission/%d", id), credential, nil, &perm); err != nil {
		return Permission{}, err
	}
	return perm, nil
}

// CreatePermission creates a permission. Code is the business key and can
// only be set here.
func (c *Client) CreatePermission(ctx context.Context, credential string, in PermissionCreate) (Permission, error) {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.DisplayName) == "" {
		return Permission{}, fmt.Errorf("%w: code and display_name are required", ErrValidation)
	}
	var perm Permission
	if err := c.do(ctx, http.MethodPost, "/permission/", credential, in, &perm); err != nil {
		return Permission{}, err
	}
	return perm, nil
}

// UpdatePermission edits the mutable fields of a permission; the code stays
// fixed for the lifetime of the record.
func (c *Client) UpdatePermission(ctx context.Context, credential string, id int64, in PermissionUpdate) (Permission, error) {
	var perm Permission
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/permission/%d", id), credential, in, &perm); err != nil {
		return Permission{}, err
	}
	return perm, nil
}

// DeletePermission removes a permission. Deleting a nonexistent ID fails
// with ErrNotFound.
func (c *Client) DeletePermission(ctx context.Context, credential string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/permission/%d", id), credential, nil, nil)
}
