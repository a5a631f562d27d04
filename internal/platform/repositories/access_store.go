package repositories

import (
	"context"
	"database/sql"
	"strings"

	"confmgr/internal/engine/access"
)

// AccessStore is the SQL implementation of the authorization engine's read
// contract. Each method is a single set-valued query, so one authorize
// call runs a bounded number of round trips regardless of how many groups
// or roles are involved.
type AccessStore struct {
	db *sql.DB
}

func NewAccessStore(db *sql.DB) *AccessStore {
	return &AccessStore{db: db}
}

func (s *AccessStore) RoomOrganization(ctx context.Context, roomID string) (string, error) {
	var orgID string
	err := s.db.QueryRowContext(ctx, `SELECT organization_id FROM rooms WHERE id = ?`, roomID).Scan(&orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", access.ErrNotFound
		}
		return "", err
	}
	return orgID, nil
}

func (s *AccessStore) IsOrganizationOwner(ctx context.Context, userID, orgID string) (bool, error) {
	return s.relationExists(ctx,
		`SELECT EXISTS(SELECT 1 FROM organization_owners WHERE organization_id = ? AND user_id = ?)`,
		orgID, userID)
}

func (s *AccessStore) IsOrganizationAdmin(ctx context.Context, userID, orgID string) (bool, error) {
	return s.relationExists(ctx,
		`SELECT EXISTS(SELECT 1 FROM organization_admins WHERE organization_id = ? AND user_id = ?)`,
		orgID, userID)
}

func (s *AccessStore) relationExists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists)
	return exists, err
}

func (s *AccessStore) UserMemberships(ctx context.Context, userID string) ([]access.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT gu.group_id, g.organization_id
		FROM group_users gu
		INNER JOIN groups g ON g.id = gu.group_id
		WHERE gu.user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []access.Membership
	for rows.Next() {
		var m access.Membership
		if err := rows.Scan(&m.GroupID, &m.OrganizationID); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (s *AccessStore) OwnerOrganizations(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT organization_id FROM organization_owners WHERE user_id = ?`, userID)
}

func (s *AccessStore) AdminOrganizations(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT organization_id FROM organization_admins WHERE user_id = ?`, userID)
}

func (s *AccessStore) listIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *AccessStore) GroupRoleGrants(ctx context.Context, roomID string, groupIDs []string) ([]access.RoleRef, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT rgr.role_id, r.organization_id
		FROM room_group_roles rgr
		INNER JOIN roles r ON r.id = rgr.role_id
		WHERE rgr.room_id = ? AND rgr.group_id IN (?` + strings.Repeat(", ?", len(groupIDs)-1) + `)`

	args := make([]interface{}, 0, len(groupIDs)+1)
	args = append(args, roomID)
	for _, id := range groupIDs {
		args = append(args, id)
	}
	return s.listRoleRefs(ctx, query, args...)
}

func (s *AccessStore) UserRoleGrants(ctx context.Context, roomID, userID string) ([]access.RoleRef, error) {
	return s.listRoleRefs(ctx, `
		SELECT DISTINCT rur.role_id, r.organization_id
		FROM room_user_roles rur
		INNER JOIN roles r ON r.id = rur.role_id
		WHERE rur.room_id = ? AND rur.user_id = ?
	`, roomID, userID)
}

func (s *AccessStore) listRoleRefs(ctx context.Context, query string, args ...interface{}) ([]access.RoleRef, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []access.RoleRef
	for rows.Next() {
		var ref access.RoleRef
		if err := rows.Scan(&ref.RoleID, &ref.OrganizationID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (s *AccessStore) RolePermissions(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT p.name
		FROM role_permissions rp
		INNER JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id IN (?` + strings.Repeat(", ?", len(roleIDs)-1) + `)`

	args := make([]interface{}, 0, len(roleIDs))
	for _, id := range roleIDs {
		args = append(args, id)
	}
	return s.listIDs(ctx, query, args...)
}

func (s *AccessStore) Permissions(ctx context.Context) ([]access.Permission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []access.Permission
	for rows.Next() {
		var p access.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
