package authority

import "time"

// Role is a named permission grouping. Name is the business key and is fixed
// at creation time.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// Permission is an atomic capability. Code is the business key and is fixed
// at creation time.
type Permission struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// KnowledgeBase is a tenant document collection managed through the console.
type KnowledgeBase struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is an operator account. Accounts are owned by the identity subsystem
// and are read-only from the console's perspective.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
}

// UserRole describes one role membership of the authenticated caller,
// scoped to a knowledge base.
type UserRole struct {
	KnowledgeBaseID   int64  `json:"knowledge_base_id"`
	KnowledgeBaseName string `json:"knowledge_base_name,omitempty"`
	RoleID            int64  `json:"role_id,omitempty"`
	RoleName          string `json:"role_name,omitempty"`
	RoleDisplayName   string `json:"role_display_name,omitempty"`
}

// RoleCreate carries the fields accepted when creating a role.
type RoleCreate struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// RoleUpdate carries the fields accepted when editing a role. The business
// key is deliberately absent: an update cannot transmit it.
type RoleUpdate struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// PermissionCreate carries the fields accepted when creating a permission.
type PermissionCreate struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// PermissionUpdate carries the fields accepted when editing a permission.
// Code is absent for the same reason as RoleUpdate.Name.
type PermissionUpdate struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// KnowledgeBaseCreate carries the fields accepted when creating a knowledge base.
type KnowledgeBaseCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// KnowledgeBaseUpdate carries the fields accepted when editing a knowledge base.
type KnowledgeBaseUpdate struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
