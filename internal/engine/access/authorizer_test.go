package access

import (
	"context"
	"errors"
	"testing"
)

// acmeFixture wires the end-to-end scenario: organization acme with group
// support containing alice, role moderator carrying MODERATE_CHAT, room r1
// granting moderator to support, carol as organization owner.
func acmeFixture() *fakeStore {
	store := newFakeStore()
	store.addRoom("room_r1", "org_acme")
	store.addMember("usr_alice", "grp_support", "org_acme")
	store.setRolePermissions("rol_moderator", PermModerateChat)
	store.grantGroupRole("room_r1", "grp_support", "rol_moderator", "org_acme")
	store.addOwner("usr_carol", "org_acme")
	return store
}

func newTestAuthorizer(t *testing.T, store *fakeStore) *Authorizer {
	t.Helper()
	catalog, err := LoadCatalog(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return NewAuthorizer(store, catalog)
}

func TestAuthorize_RoleGrant(t *testing.T) {
	authz := newTestAuthorizer(t, acmeFixture())
	ctx := context.Background()

	dec, err := authz.Authorize(ctx, "usr_alice", "room_r1", PermModerateChat)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !dec.Allowed || dec.Basis != BasisRoleGrant {
		t.Errorf("Expected allowed via role grant, got %+v", dec)
	}

	// moderator does not carry CREATE_ROOM
	dec, err = authz.Authorize(ctx, "usr_alice", "room_r1", PermCreateRoom)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if dec.Allowed || dec.Basis != BasisDenied {
		t.Errorf("Expected denied, got %+v", dec)
	}
}

func TestAuthorize_FailClosedDefault(t *testing.T) {
	authz := newTestAuthorizer(t, acmeFixture())

	// bob is not in support and has no direct grant
	dec, err := authz.Authorize(context.Background(), "usr_bob", "room_r1", PermModerateChat)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if dec.Allowed {
		t.Errorf("Expected denied for user with no grant path, got %+v", dec)
	}
	if dec.Basis != BasisDenied {
		t.Errorf("Expected basis denied, got %s", dec.Basis)
	}
}

func TestAuthorize_OwnerBypassTotality(t *testing.T) {
	store := acmeFixture()
	authz := newTestAuthorizer(t, store)
	ctx := context.Background()

	// owners are allowed for every permission in the catalog, regardless
	// of role grants
	for _, perm := range authz.Catalog().Names() {
		dec, err := authz.Authorize(ctx, "usr_carol", "room_r1", perm)
		if err != nil {
			t.Fatalf("Authorize(%s): %v", perm, err)
		}
		if !dec.Allowed || dec.Basis != BasisOwnerBypass {
			t.Errorf("Expected owner bypass for %s, got %+v", perm, dec)
		}
	}
}

func TestAuthorize_AdminBypass(t *testing.T) {
	store := acmeFixture()
	store.addAdmin("usr_dave", "org_acme")
	authz := newTestAuthorizer(t, store)

	for _, perm := range authz.Catalog().Names() {
		dec, err := authz.Authorize(context.Background(), "usr_dave", "room_r1", perm)
		if err != nil {
			t.Fatalf("Authorize(%s): %v", perm, err)
		}
		if !dec.Allowed || dec.Basis != BasisAdminBypass {
			t.Errorf("Expected admin bypass for %s, got %+v", perm, dec)
		}
	}
}

func TestAuthorize_GroupRoleMonotonicity(t *testing.T) {
	store := acmeFixture()
	store.addMember("usr_bob", "grp_sales", "org_acme")
	authz := newTestAuthorizer(t, store)
	ctx := context.Background()

	dec, _ := authz.Authorize(ctx, "usr_bob", "room_r1", PermModerateChat)
	if dec.Allowed {
		t.Fatal("Expected bob denied before the group grant")
	}

	store.grantGroupRole("room_r1", "grp_sales", "rol_moderator", "org_acme")

	dec, err := authz.Authorize(ctx, "usr_bob", "room_r1", PermModerateChat)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !dec.Allowed || dec.Basis != BasisRoleGrant {
		t.Errorf("Expected bob allowed after group grant, got %+v", dec)
	}
}

func TestAuthorize_RevocationImmediacy(t *testing.T) {
	store := acmeFixture()
	store.setRolePermissions("rol_presenter", PermShareScreen)
	store.grantUserRole("room_r1", "usr_bob", "rol_presenter", "org_acme")
	authz := newTestAuthorizer(t, store)
	ctx := context.Background()

	dec, _ := authz.Authorize(ctx, "usr_bob", "room_r1", PermShareScreen)
	if !dec.Allowed {
		t.Fatal("Expected bob allowed via direct grant")
	}

	store.revokeUserRole("room_r1", "usr_bob", "rol_presenter")

	// no caching: the next call must observe the revocation
	dec, err := authz.Authorize(ctx, "usr_bob", "room_r1", PermShareScreen)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if dec.Allowed {
		t.Errorf("Expected revocation to take effect immediately, got %+v", dec)
	}
}

func TestAuthorize_CrossOrganizationIsolation(t *testing.T) {
	store := acmeFixture()
	// stale grant referencing a role of another organization, carrying
	// the very permission being asked for
	store.setRolePermissions("rol_foreign", PermModerateChat)
	store.grantUserRole("room_r1", "usr_bob", "rol_foreign", "org_globex")
	authz := newTestAuthorizer(t, store)

	dec, err := authz.Authorize(context.Background(), "usr_bob", "room_r1", PermModerateChat)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if dec.Allowed {
		t.Errorf("Cross-organization role must not grant access, got %+v", dec)
	}
}

func TestAuthorize_MissingRoom(t *testing.T) {
	authz := newTestAuthorizer(t, acmeFixture())

	_, err := authz.Authorize(context.Background(), "usr_alice", "room_missing", PermSendChat)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing room, got %v", err)
	}
}

func TestAuthorize_UnknownPermission(t *testing.T) {
	authz := newTestAuthorizer(t, acmeFixture())

	_, err := authz.Authorize(context.Background(), "usr_alice", "room_r1", "LAUNCH_MISSILES")
	if !errors.Is(err, ErrUnknownPermission) {
		t.Errorf("Expected ErrUnknownPermission, got %v", err)
	}
}

func TestAuthorize_StoreFailureIsNeverAnAllow(t *testing.T) {
	store := acmeFixture()
	authz := newTestAuthorizer(t, store)
	store.failErr = errors.New("database is on fire")

	dec, err := authz.Authorize(context.Background(), "usr_carol", "room_r1", PermSendChat)
	if err == nil {
		t.Fatal("Expected store failure to propagate")
	}
	if dec.Allowed {
		t.Error("Store failure must never produce an allow")
	}
}

func TestAuthorizeAll_RoleGrant(t *testing.T) {
	store := acmeFixture()
	store.setRolePermissions("rol_moderator", PermModerateChat, PermSendChat)
	authz := newTestAuthorizer(t, store)

	perms, err := authz.AuthorizeAll(context.Background(), "usr_alice", "room_r1")
	if err != nil {
		t.Fatalf("AuthorizeAll: %v", err)
	}
	if len(perms) != 2 {
		t.Fatalf("Expected 2 permissions, got %d", len(perms))
	}
	if _, ok := perms[PermModerateChat]; !ok {
		t.Error("Expected MODERATE_CHAT in permission set")
	}
}

func TestAuthorizeAll_OwnerGetsFullCatalog(t *testing.T) {
	authz := newTestAuthorizer(t, acmeFixture())

	perms, err := authz.AuthorizeAll(context.Background(), "usr_carol", "room_r1")
	if err != nil {
		t.Fatalf("AuthorizeAll: %v", err)
	}
	if len(perms) != authz.Catalog().Len() {
		t.Errorf("Expected owner to hold all %d permissions, got %d", authz.Catalog().Len(), len(perms))
	}
}

func TestAuthorizeAll_MissingRoom(t *testing.T) {
	authz := newTestAuthorizer(t, acmeFixture())

	_, err := authz.AuthorizeAll(context.Background(), "usr_alice", "room_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
