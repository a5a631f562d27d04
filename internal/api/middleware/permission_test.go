package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	apiContext "confmgr/internal/api/context"
	"confmgr/internal/engine/access"
	"confmgr/internal/platform/auth"
)

// stubStore serves a single scenario: room_r1 in org_acme, alice holding
// moderator with MODERATE_CHAT through a direct grant.
type stubStore struct{}

func (s *stubStore) RoomOrganization(ctx context.Context, roomID string) (string, error) {
	if roomID != "room_r1" {
		return "", access.ErrNotFound
	}
	return "org_acme", nil
}

func (s *stubStore) IsOrganizationOwner(ctx context.Context, userID, orgID string) (bool, error) {
	return false, nil
}

func (s *stubStore) IsOrganizationAdmin(ctx context.Context, userID, orgID string) (bool, error) {
	return false, nil
}

func (s *stubStore) UserMemberships(ctx context.Context, userID string) ([]access.Membership, error) {
	return nil, nil
}

func (s *stubStore) OwnerOrganizations(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (s *stubStore) AdminOrganizations(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (s *stubStore) GroupRoleGrants(ctx context.Context, roomID string, groupIDs []string) ([]access.RoleRef, error) {
	return nil, nil
}

func (s *stubStore) UserRoleGrants(ctx context.Context, roomID, userID string) ([]access.RoleRef, error) {
	if userID == "usr_alice" {
		return []access.RoleRef{{RoleID: "rol_moderator", OrganizationID: "org_acme"}}, nil
	}
	return nil, nil
}

func (s *stubStore) RolePermissions(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 1 && roleIDs[0] == "rol_moderator" {
		return []string{access.PermModerateChat}, nil
	}
	return nil, nil
}

func (s *stubStore) Permissions(ctx context.Context) ([]access.Permission, error) {
	return []access.Permission{
		{ID: "perm_MODERATE_CHAT", Name: access.PermModerateChat},
		{ID: "perm_SEND_CHAT", Name: access.PermSendChat},
	}, nil
}

func roomRequest(t *testing.T, userID, roomID string) *http.Request {
	t.Helper()
	req, _ := http.NewRequest("DELETE", "/api/v1/rooms/"+roomID+"/chat", nil)
	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, apiContext.Claims, &auth.Claims{UserID: userID})
	}
	ctx = context.WithValue(ctx, apiContext.Params, httprouter.Params{{Key: "room_id", Value: roomID}})
	return req.WithContext(ctx)
}

func TestRequirePermission(t *testing.T) {
	store := &stubStore{}
	catalog, err := access.LoadCatalog(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	authz := access.NewAuthorizer(store, catalog)

	cases := []struct {
		name       string
		userID     string
		roomID     string
		permission string
		wantStatus int
		wantNext   bool
	}{
		{"Allowed", "usr_alice", "room_r1", access.PermModerateChat, http.StatusOK, true},
		{"Denied", "usr_bob", "room_r1", access.PermModerateChat, http.StatusForbidden, false},
		{"Missing room", "usr_alice", "room_missing", access.PermModerateChat, http.StatusNotFound, false},
		{"Unknown permission", "usr_alice", "room_r1", "FLY_TO_MOON", http.StatusBadRequest, false},
		{"No claims", "", "room_r1", access.PermModerateChat, http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := RequirePermission(authz, tc.permission)(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, roomRequest(t, tc.userID, tc.roomID))

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if called != tc.wantNext {
				t.Errorf("Expected next called=%v, got %v", tc.wantNext, called)
			}
		})
	}
}
