package access

import (
	"context"
	"fmt"
)

// Basis records why an authorization decision came out the way it did.
type Basis string

const (
	BasisOwnerBypass Basis = "owner_bypass"
	BasisAdminBypass Basis = "admin_bypass"
	BasisRoleGrant   Basis = "role_grant"
	BasisDenied      Basis = "denied"
)

// Decision is the outcome of one authorization call. It is not persisted;
// every call recomputes from current store state so revocations take
// effect immediately.
type Decision struct {
	Allowed bool  `json:"allowed"`
	Basis   Basis `json:"basis"`
}

// Authorizer is the single entry point for room authorization checks.
// Organization owners and admins bypass the room-scoped role machinery
// entirely; everyone else goes through the role aggregator and permission
// evaluator. The default is fail-closed: no grant path means Denied, and
// a store failure is an error, never an implicit allow.
type Authorizer struct {
	store   Store
	catalog *Catalog
	members *MembershipResolver
	roles   *RoleAggregator
	perms   *PermissionEvaluator
}

func NewAuthorizer(store Store, catalog *Catalog) *Authorizer {
	return &Authorizer{
		store:   store,
		catalog: catalog,
		members: NewMembershipResolver(store),
		roles:   NewRoleAggregator(store),
		perms:   NewPermissionEvaluator(store),
	}
}

// Members exposes the resolver for organization-level checks outside the
// room machinery (e.g. gating organization management endpoints).
func (a *Authorizer) Members() *MembershipResolver {
	return a.members
}

// Catalog returns the permission catalog the authorizer validates against.
func (a *Authorizer) Catalog() *Catalog {
	return a.catalog
}

// Authorize decides whether the acting user may perform the action guarded
// by the given permission in the given room.
//
// Errors are kept distinct from denials: a missing room is ErrNotFound, a
// permission name outside the catalog is ErrUnknownPermission, and store
// failures propagate wrapped. A Decision with Allowed=false and
// BasisDenied is a successful negative outcome, not an error.
func (a *Authorizer) Authorize(ctx context.Context, userID, roomID, permission string) (Decision, error) {
	if !a.catalog.Has(permission) {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownPermission, permission)
	}

	orgID, err := a.store.RoomOrganization(ctx, roomID)
	if err != nil {
		return Decision{}, err
	}

	owner, err := a.members.IsOwner(ctx, userID, orgID)
	if err != nil {
		return Decision{}, err
	}
	if owner {
		return Decision{Allowed: true, Basis: BasisOwnerBypass}, nil
	}

	admin, err := a.members.IsAdmin(ctx, userID, orgID)
	if err != nil {
		return Decision{}, err
	}
	if admin {
		return Decision{Allowed: true, Basis: BasisAdminBypass}, nil
	}

	roles, err := a.roles.EffectiveRoles(ctx, userID, roomID)
	if err != nil {
		return Decision{}, err
	}
	has, err := a.perms.HasPermission(ctx, roles, permission)
	if err != nil {
		return Decision{}, err
	}
	if has {
		return Decision{Allowed: true, Basis: BasisRoleGrant}, nil
	}
	return Decision{Allowed: false, Basis: BasisDenied}, nil
}

// AuthorizeAll computes the user's full permission set in the room in one
// pass, so callers checking several permissions within a single request do
// not recompute the role aggregation per check. Owners and admins hold the
// entire catalog.
func (a *Authorizer) AuthorizeAll(ctx context.Context, userID, roomID string) (map[string]struct{}, error) {
	orgID, err := a.store.RoomOrganization(ctx, roomID)
	if err != nil {
		return nil, err
	}

	owner, err := a.members.IsOwner(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if !owner {
		admin, err := a.members.IsAdmin(ctx, userID, orgID)
		if err != nil {
			return nil, err
		}
		owner = admin
	}
	if owner {
		all := make(map[string]struct{}, a.catalog.Len())
		for _, name := range a.catalog.Names() {
			all[name] = struct{}{}
		}
		return all, nil
	}

	roles, err := a.roles.EffectiveRoles(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	return a.perms.PermissionsOf(ctx, roles)
}
