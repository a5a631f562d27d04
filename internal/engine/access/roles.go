package access

import "context"

// RoleAggregator computes the effective role set of a user in a room by
// merging group-based and direct user-based grants.
type RoleAggregator struct {
	store Store
}

func NewRoleAggregator(store Store) *RoleAggregator {
	return &RoleAggregator{store: store}
}

// EffectiveRoles returns the set of roles granted to the user in the
// room. Roles belonging to a different organization than the room are
// dropped silently: such rows are stale configuration, not a request-time
// fault. A user with no grants yields an empty set, not an error.
func (a *RoleAggregator) EffectiveRoles(ctx context.Context, userID, roomID string) (map[string]struct{}, error) {
	orgID, err := a.store.RoomOrganization(ctx, roomID)
	if err != nil {
		return nil, err
	}

	roles := make(map[string]struct{})

	memberships, err := a.store.UserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) > 0 {
		groupIDs := make([]string, 0, len(memberships))
		for _, mb := range memberships {
			groupIDs = append(groupIDs, mb.GroupID)
		}
		grants, err := a.store.GroupRoleGrants(ctx, roomID, groupIDs)
		if err != nil {
			return nil, err
		}
		for _, g := range grants {
			if g.OrganizationID != orgID {
				continue
			}
			roles[g.RoleID] = struct{}{}
		}
	}

	direct, err := a.store.UserRoleGrants(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	for _, g := range direct {
		if g.OrganizationID != orgID {
			continue
		}
		roles[g.RoleID] = struct{}{}
	}

	return roles, nil
}
