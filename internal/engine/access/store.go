package access

import "context"

// Membership is one group the user belongs to, together with the group's
// owning organization.
type Membership struct {
	GroupID        string
	OrganizationID string
}

// RoleRef is a role granted in a room, together with the role's owning
// organization so the aggregator can drop cross-organization grants
// without another lookup.
type RoleRef struct {
	RoleID         string
	OrganizationID string
}

// Permission is one entry of the seeded catalog.
type Permission struct {
	ID          string
	Name        string
	Description string
}

// Store is the engine's read contract against the entity store. No
// authorization logic lives behind it: every method is a plain lookup or
// relation-set enumeration. Implementations must return ErrNotFound for
// ids that do not resolve, and sets (no duplicates) for relation queries.
type Store interface {
	// RoomOrganization resolves the owning organization of a room.
	RoomOrganization(ctx context.Context, roomID string) (string, error)

	// IsOrganizationOwner and IsOrganizationAdmin are direct relation
	// membership tests, not membership scans.
	IsOrganizationOwner(ctx context.Context, userID, orgID string) (bool, error)
	IsOrganizationAdmin(ctx context.Context, userID, orgID string) (bool, error)

	// UserMemberships returns every group the user belongs to.
	UserMemberships(ctx context.Context, userID string) ([]Membership, error)

	// OwnerOrganizations and AdminOrganizations enumerate the
	// organizations where the user holds the respective status.
	OwnerOrganizations(ctx context.Context, userID string) ([]string, error)
	AdminOrganizations(ctx context.Context, userID string) ([]string, error)

	// GroupRoleGrants returns the roles granted in the room to any of the
	// given groups. An empty groupIDs slice yields an empty result.
	GroupRoleGrants(ctx context.Context, roomID string, groupIDs []string) ([]RoleRef, error)

	// UserRoleGrants returns the roles granted in the room directly to
	// the user.
	UserRoleGrants(ctx context.Context, roomID, userID string) ([]RoleRef, error)

	// RolePermissions returns the union of permission names carried by
	// the given roles.
	RolePermissions(ctx context.Context, roleIDs []string) ([]string, error)

	// Permissions enumerates the full seeded catalog.
	Permissions(ctx context.Context) ([]Permission, error)
}
