package repositories

import (
	"database/sql"
	"time"

	"confmgr/internal/platform/models"
)

type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	_, err := r.db.Exec(`
		INSERT INTO groups (id, organization_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, group.ID, group.OrganizationID, group.Name, group.Description, group.CreatedAt, group.UpdatedAt)
	return err
}

func (r *GroupRepository) GetByID(id string) (*models.Group, error) {
	group := &models.Group{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM groups WHERE id = ?
	`, id).Scan(&group.ID, &group.OrganizationID, &group.Name, &group.Description, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

func (r *GroupRepository) ListByOrganization(orgID string) ([]*models.Group, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM groups WHERE organization_id = ? ORDER BY name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.OrganizationID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *GroupRepository) Update(group *models.Group) error {
	_, err := r.db.Exec(`
		UPDATE groups SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, group.Name, group.Description, time.Now().Unix(), group.ID)
	return err
}

func (r *GroupRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM groups WHERE id = ?`, id)
	return err
}

// AddMember is idempotent: re-adding an existing member is a no-op.
func (r *GroupRepository) AddMember(groupID, userID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO group_users (group_id, user_id) VALUES (?, ?)
	`, groupID, userID)
	return err
}

func (r *GroupRepository) RemoveMember(groupID, userID string) error {
	_, err := r.db.Exec(`
		DELETE FROM group_users WHERE group_id = ? AND user_id = ?
	`, groupID, userID)
	return err
}

func (r *GroupRepository) ListMembers(groupID string) ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM users u
		INNER JOIN group_users gu ON gu.user_id = u.id
		WHERE gu.group_id = ? ORDER BY u.email
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
