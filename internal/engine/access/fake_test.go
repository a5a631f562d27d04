package access

import "context"

// fakeStore is an in-memory Store for engine tests. Relation state is
// held the same way the schema holds it: join rows keyed by id pairs and
// triples. Setting failErr makes every method fail, for fail-closed tests.
type fakeStore struct {
	roomOrg     map[string]string
	owners      map[string]map[string]bool // orgID -> userID set
	admins      map[string]map[string]bool
	memberships map[string][]Membership // userID -> groups
	groupGrants map[string][]fakeGroupGrant
	userGrants  map[string][]fakeUserGrant
	rolePerms   map[string][]string // roleID -> permission names
	perms       []Permission

	failErr error
}

type fakeGroupGrant struct {
	groupID string
	role    RoleRef
}

type fakeUserGrant struct {
	userID string
	role   RoleRef
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roomOrg:     make(map[string]string),
		owners:      make(map[string]map[string]bool),
		admins:      make(map[string]map[string]bool),
		memberships: make(map[string][]Membership),
		groupGrants: make(map[string][]fakeGroupGrant),
		userGrants:  make(map[string][]fakeUserGrant),
		rolePerms:   make(map[string][]string),
		perms:       defaultCatalog(),
	}
}

func defaultCatalog() []Permission {
	names := []string{
		PermBypassRoomLock, PermBypassLobby, PermChangeRoomLock,
		PermPromotePeer, PermModifyRole, PermSendChat, PermModerateChat,
		PermShareAudio, PermShareVideo, PermShareScreen,
		PermShareExtraVideo, PermShareFile, PermModerateFiles,
		PermModerateRoom, PermLocalRecordRoom, PermCreateRoom,
	}
	perms := make([]Permission, 0, len(names))
	for _, n := range names {
		perms = append(perms, Permission{ID: "perm_" + n, Name: n})
	}
	return perms
}

func (f *fakeStore) addRoom(roomID, orgID string) {
	f.roomOrg[roomID] = orgID
}

func (f *fakeStore) addOwner(userID, orgID string) {
	if f.owners[orgID] == nil {
		f.owners[orgID] = make(map[string]bool)
	}
	f.owners[orgID][userID] = true
}

func (f *fakeStore) addAdmin(userID, orgID string) {
	if f.admins[orgID] == nil {
		f.admins[orgID] = make(map[string]bool)
	}
	f.admins[orgID][userID] = true
}

func (f *fakeStore) addMember(userID, groupID, orgID string) {
	f.memberships[userID] = append(f.memberships[userID], Membership{GroupID: groupID, OrganizationID: orgID})
}

func (f *fakeStore) grantGroupRole(roomID, groupID, roleID, roleOrgID string) {
	f.groupGrants[roomID] = append(f.groupGrants[roomID], fakeGroupGrant{
		groupID: groupID,
		role:    RoleRef{RoleID: roleID, OrganizationID: roleOrgID},
	})
}

func (f *fakeStore) grantUserRole(roomID, userID, roleID, roleOrgID string) {
	f.userGrants[roomID] = append(f.userGrants[roomID], fakeUserGrant{
		userID: userID,
		role:   RoleRef{RoleID: roleID, OrganizationID: roleOrgID},
	})
}

func (f *fakeStore) revokeUserRole(roomID, userID, roleID string) {
	grants := f.userGrants[roomID]
	kept := grants[:0]
	for _, g := range grants {
		if g.userID == userID && g.role.RoleID == roleID {
			continue
		}
		kept = append(kept, g)
	}
	f.userGrants[roomID] = kept
}

func (f *fakeStore) setRolePermissions(roleID string, names ...string) {
	f.rolePerms[roleID] = names
}

func (f *fakeStore) RoomOrganization(ctx context.Context, roomID string) (string, error) {
	if f.failErr != nil {
		return "", f.failErr
	}
	org, ok := f.roomOrg[roomID]
	if !ok {
		return "", ErrNotFound
	}
	return org, nil
}

func (f *fakeStore) IsOrganizationOwner(ctx context.Context, userID, orgID string) (bool, error) {
	if f.failErr != nil {
		return false, f.failErr
	}
	return f.owners[orgID][userID], nil
}

func (f *fakeStore) IsOrganizationAdmin(ctx context.Context, userID, orgID string) (bool, error) {
	if f.failErr != nil {
		return false, f.failErr
	}
	return f.admins[orgID][userID], nil
}

func (f *fakeStore) UserMemberships(ctx context.Context, userID string) ([]Membership, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.memberships[userID], nil
}

func (f *fakeStore) OwnerOrganizations(ctx context.Context, userID string) ([]string, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	var orgs []string
	for orgID, users := range f.owners {
		if users[userID] {
			orgs = append(orgs, orgID)
		}
	}
	return orgs, nil
}

func (f *fakeStore) AdminOrganizations(ctx context.Context, userID string) ([]string, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	var orgs []string
	for orgID, users := range f.admins {
		if users[userID] {
			orgs = append(orgs, orgID)
		}
	}
	return orgs, nil
}

func (f *fakeStore) GroupRoleGrants(ctx context.Context, roomID string, groupIDs []string) ([]RoleRef, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	wanted := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}
	var refs []RoleRef
	for _, g := range f.groupGrants[roomID] {
		if wanted[g.groupID] {
			refs = append(refs, g.role)
		}
	}
	return refs, nil
}

func (f *fakeStore) UserRoleGrants(ctx context.Context, roomID, userID string) ([]RoleRef, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	var refs []RoleRef
	for _, g := range f.userGrants[roomID] {
		if g.userID == userID {
			refs = append(refs, g.role)
		}
	}
	return refs, nil
}

func (f *fakeStore) RolePermissions(ctx context.Context, roleIDs []string) ([]string, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	seen := make(map[string]bool)
	var names []string
	for _, roleID := range roleIDs {
		for _, name := range f.rolePerms[roleID] {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (f *fakeStore) Permissions(ctx context.Context) ([]Permission, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.perms, nil
}
