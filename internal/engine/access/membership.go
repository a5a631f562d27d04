package access

import "context"

// MembershipResolver answers organization-level membership questions:
// which groups a user is in, which organizations they belong to, and
// whether they hold owner or admin status in a given organization.
// All methods are pure functions of current store state.
type MembershipResolver struct {
	store Store
}

func NewMembershipResolver(store Store) *MembershipResolver {
	return &MembershipResolver{store: store}
}

// IsOwner reports owner status via a direct relation lookup.
func (m *MembershipResolver) IsOwner(ctx context.Context, userID, orgID string) (bool, error) {
	return m.store.IsOrganizationOwner(ctx, userID, orgID)
}

// IsAdmin reports admin status via a direct relation lookup.
func (m *MembershipResolver) IsAdmin(ctx context.Context, userID, orgID string) (bool, error) {
	return m.store.IsOrganizationAdmin(ctx, userID, orgID)
}

// GroupsOf returns the set of groups the user is a member of.
func (m *MembershipResolver) GroupsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	memberships, err := m.store.UserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups := make(map[string]struct{}, len(memberships))
	for _, mb := range memberships {
		groups[mb.GroupID] = struct{}{}
	}
	return groups, nil
}

// OrganizationsOf returns every organization the user belongs to: the
// organizations of their groups, plus any where they are owner or admin.
func (m *MembershipResolver) OrganizationsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	orgs := make(map[string]struct{})

	memberships, err := m.store.UserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, mb := range memberships {
		orgs[mb.OrganizationID] = struct{}{}
	}

	owned, err := m.store.OwnerOrganizations(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range owned {
		orgs[id] = struct{}{}
	}

	administered, err := m.store.AdminOrganizations(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range administered {
		orgs[id] = struct{}{}
	}

	return orgs, nil
}

// BelongsTo reports whether the user belongs to the organization through
// any path (group membership, ownership, or admin status).
func (m *MembershipResolver) BelongsTo(ctx context.Context, userID, orgID string) (bool, error) {
	orgs, err := m.OrganizationsOf(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := orgs[orgID]
	return ok, nil
}
