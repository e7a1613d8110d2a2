package authority_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ragster/console/internal/authority"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Not authenticated"}`, authority.ErrUnauthenticated},
		{"forbidden", http.StatusForbidden, `{"detail":"Insufficient role"}`, authority.ErrUnauthenticated},
		{"not found", http.StatusNotFound, `{"detail":"Role not found"}`, authority.ErrNotFound},
		{"conflict", http.StatusConflict, `{"detail":"Role name already exists"}`, authority.ErrConflict},
		{"bad request", http.StatusBadRequest, `{"detail":"invalid payload"}`, authority.ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, authority.ErrValidation},
		{"server error", http.StatusInternalServerError, ``, authority.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := authority.NewClient(srv.URL, nil)
			_, err := client.ListRoles(context.Background(), "token")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidationDetailSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"display_name must not be empty"}]}`))
	}))
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)
	_, err := client.CreateRole(context.Background(), "token", authority.RoleCreate{Name: "editor", DisplayName: "Editor"})
	require.ErrorIs(t, err, authority.ErrValidation)
	require.Contains(t, err.Error(), "display_name must not be empty")
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := authority.NewClient(srv.URL, nil)
	_, err := client.ListPermissions(context.Background(), "token")
	require.ErrorIs(t, err, authority.ErrUnavailable)
}

func TestBearerCredentialAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)
	_, err := client.UserRoles(context.Background(), "tok-123")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", got)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/user/login", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostFormValue("username") == "ops" && r.PostFormValue("password") == "secret" {
			_, _ = w.Write([]byte(`{"access_token":"tok-abc"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"Incorrect username or password"}]}`))
	}))
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)

	token, err := client.Login(context.Background(), "ops", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-abc", token)

	_, err = client.Login(context.Background(), "ops", "wrong")
	require.ErrorIs(t, err, authority.ErrValidation)
	require.Contains(t, err.Error(), "Incorrect username or password")
}

// stubAuthority is a minimal in-memory role collection behind the wire
// contract, enough for round-trip tests.
type stubAuthority struct {
	nextID int64
	roles  map[int64]authority.Role
}

func newStubAuthority() *stubAuthority {
	return &stubAuthority{nextID: 1, roles: make(map[int64]authority.Role)}
}

func (s *stubAuthority) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/role/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/role/")
		switch {
		case rest == "" && r.Method == http.MethodGet:
			out := make([]authority.Role, 0, len(s.roles))
			for _, role := range s.roles {
				out = append(out, role)
			}
			_ = json.NewEncoder(w).Encode(out)
		case rest == "" && r.Method == http.MethodPost:
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			for _, role := range s.roles {
				if role.Name == in["name"] {
					w.WriteHeader(http.StatusConflict)
					_, _ = w.Write([]byte(`{"detail":"Role name already exists"}`))
					return
				}
			}
			role := authority.Role{ID: s.nextID, Name: in["name"], DisplayName: in["display_name"], Description: in["description"]}
			s.nextID++
			s.roles[role.ID] = role
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(role)
		case r.Method == http.MethodPut:
			id, _ := strconv.ParseInt(rest, 10, 64)
			role, ok := s.roles[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if _, present := in["name"]; present {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"detail":"name is immutable"}`))
				return
			}
			role.DisplayName = in["display_name"]
			role.Description = in["description"]
			s.roles[id] = role
			_ = json.NewEncoder(w).Encode(role)
		case r.Method == http.MethodDelete:
			id, _ := strconv.ParseInt(rest, 10, 64)
			if _, ok := s.roles[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"detail":"Role not found"}`))
				return
			}
			delete(s.roles, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func TestRoleRoundTrip(t *testing.T) {
	stub := newStubAuthority()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)
	ctx := context.Background()

	created, err := client.CreateRole(ctx, "token", authority.RoleCreate{Name: "editor", DisplayName: "Editor"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "editor", created.Name)

	roles, err := client.ListRoles(ctx, "token")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, "Editor", roles[0].DisplayName)

	_, err = client.CreateRole(ctx, "token", authority.RoleCreate{Name: "editor", DisplayName: "Editor Again"})
	require.ErrorIs(t, err, authority.ErrConflict)

	require.NoError(t, client.DeleteRole(ctx, "token", created.ID))

	roles, err = client.ListRoles(ctx, "token")
	require.NoError(t, err)
	require.Empty(t, roles)

	err = client.DeleteRole(ctx, "token", created.ID)
	require.ErrorIs(t, err, authority.ErrNotFound)
}

// The update payload type has no business key field, so even a stub
// authority that rejects key changes never sees one.
func TestUpdateNeverTransmitsBusinessKey(t *testing.T) {
	stub := newStubAuthority()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)
	ctx := context.Background()

	created, err := client.CreateRole(ctx, "token", authority.RoleCreate{Name: "viewer", DisplayName: "Viewer"})
	require.NoError(t, err)

	updated, err := client.UpdateRole(ctx, "token", created.ID, authority.RoleUpdate{DisplayName: "Read Only", Description: "list screens only"})
	require.NoError(t, err)
	require.Equal(t, "viewer", updated.Name)
	require.Equal(t, "Read Only", updated.DisplayName)
}

func TestCreateRequiresBusinessKey(t *testing.T) {
	client := authority.NewClient("http://127.0.0.1:0", nil)

	_, err := client.CreateRole(context.Background(), "token", authority.RoleCreate{DisplayName: "No Key"})
	require.ErrorIs(t, err, authority.ErrValidation)

	_, err = client.CreatePermission(context.Background(), "token", authority.PermissionCreate{DisplayName: "No Code"})
	require.ErrorIs(t, err, authority.ErrValidation)
}

func TestAssignPermissionsBody(t *testing.T) {
	var body struct {
		RoleID        int64   `json:"role_id"`
		PermissionIDs []int64 `json:"permission_ids"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/role-permission/assign", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":"Permissions assigned"}`))
	}))
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)
	err := client.AssignPermissions(context.Background(), "token", 5, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, int64(5), body.RoleID)
	require.Equal(t, []int64{1, 2, 3}, body.PermissionIDs)
}

func TestRemoveUserRoleQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = fmt.Sprintf("%s?%s", r.URL.Path, r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := authority.NewClient(srv.URL, nil)
	require.NoError(t, client.RemoveUserRole(context.Background(), "token", 7, 3))
	require.Equal(t, "/role-assignment/delete?user_id=7&knowledge_base_id=3", gotQuery)
}
