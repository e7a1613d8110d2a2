package authority

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Login exchanges operator credentials for a bearer token using the
// password grant. Rejected credentials surface as ErrValidation carrying the
// authority's own message so the login form can display it verbatim.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", "password")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("authority: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := decodeDetail(res.Body)
		if detail == "" {
			detail = "login failed"
		}
		if res.StatusCode >= 500 {
			return "", wrapDetail(ErrUnavailable, detail)
		}
		return "", wrapDetail(ErrValidation, detail)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeJSONBody(res.Body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUnavailable)
	}
	return out.AccessToken, nil
}

// UserRoles returns the role memberships of the credential's owner. The
// authorization gate consumes this to decide admin capability.
func (c *Client) UserRoles(ctx context.Context, credential string) ([]UserRole, error) {
	var roles []UserRole
	if err := c.do(ctx, http.MethodGet, "/user/roles", credential, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
