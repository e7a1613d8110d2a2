package authority

import (
	"context"
	"fmt"
	"net/http"
)

// RolePermissions returns the permissions currently assigned to the role.
func (c *Client) RolePermissions(ctx context.Context, credential string, roleID int64) ([]Permission, error) {
	var perms []Permission
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/role-permission/%d", roleID), credential, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// AssignPermissions attaches the given permissions to the role. The
// authority only ever adds: IDs already assigned stay assigned and IDs
// absent from the payload are not detached.
func (c *Client) AssignPermissions(ctx context.Context, credential string, roleID int64, permissionIDs []int64) error {
	body := struct {
		RoleID        int64   `json:"role_id"`
		PermissionIDs []int64 `json:"permission_ids"`
	}{RoleID: roleID, PermissionIDs: permissionIDs}
	return c.do(ctx, http.MethodPost, "/role-permission/assign", credential, body, nil)
}

// AssignUserRole grants a user the given role within a knowledge base,
// replacing any prior role for that user and knowledge base.
func (c *Client) AssignUserRole(ctx context.Context, credential string, userID, knowledgeBaseID, roleID int64) error {
	body := struct {
		UserID          int64 `json:"user_id"`
		KnowledgeBaseID int64 `json:"knowledge_base_id"`
		RoleID          int64 `json:"role_id"`
	}{UserID: userID, KnowledgeBaseID: knowledgeBaseID, RoleID: roleID}
	return c.do(ctx, http.MethodPost, "/role-assignment/assign", credential, body, nil)
}

// RemoveUserRole deletes a user's role assignment within a knowledge base.
func (c *Client) RemoveUserRole(ctx context.Context, credential string, userID, knowledgeBaseID int64) error {
	path := fmt.Sprintf("/role-assignment/delete?user_id=%d&knowledge_base_id=%d", userID, knowledgeBaseID)
	return c.do(ctx, http.MethodDelete, path, credential, nil, nil)
}
