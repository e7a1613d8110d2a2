package authority

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers returns all operator accounts. Accounts are created and deleted
// by the identity subsystem; the console only reads them.
func (c *Client) ListUsers(ctx context.Context, credential string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/user/", credential, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single account by ID.
func (c *Client) GetUser(ctx context.Context, credential string, id int64) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/%d", id), credential, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
