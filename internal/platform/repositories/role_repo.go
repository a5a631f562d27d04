package repositories

import (
	"database/sql"
	"time"

	"confmgr/internal/platform/models"
)

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(role *models.Role) error {
	_, err := r.db.Exec(`
		INSERT INTO roles (id, organization_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, role.ID, role.OrganizationID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	return err
}

func (r *RoleRepository) GetByID(id string) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM roles WHERE id = ?
	`, id).Scan(&role.ID, &role.OrganizationID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// GetByName looks a role up by its name within one organization.
func (r *RoleRepository) GetByName(orgID, name string) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM roles WHERE organization_id = ? AND name = ?
	`, orgID, name).Scan(&role.ID, &role.OrganizationID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) ListByOrganization(orgID string) ([]*models.Role, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM roles WHERE organization_id = ? ORDER BY name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.OrganizationID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) Update(role *models.Role) error {
	_, err := r.db.Exec(`
		UPDATE roles SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, role.Name, role.Description, time.Now().Unix(), role.ID)
	return err
}

func (r *RoleRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM roles WHERE id = ?`, id)
	return err
}

// AddPermission assigns a catalog permission to a role. Idempotent.
func (r *RoleRepository) AddPermission(roleID, permissionID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO role_permissions (role_id, permission_id) VALUES (?, ?)
	`, roleID, permissionID)
	return err
}

func (r *RoleRepository) RemovePermission(roleID, permissionID string) error {
	_, err := r.db.Exec(`
		DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?
	`, roleID, permissionID)
	return err
}

func (r *RoleRepository) ListPermissions(roleID string) ([]*models.Permission, error) {
	rows, err := r.db.Query(`
		SELECT p.id, p.name, p.description
		FROM permissions p
		INNER JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ? ORDER BY p.name
	`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*models.Permission
	for rows.Next() {
		p := &models.Permission{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// ListCatalog returns the full seeded permission catalog.
func (r *RoleRepository) ListCatalog() ([]*models.Permission, error) {
	rows, err := r.db.Query(`SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*models.Permission
	for rows.Next() {
		p := &models.Permission{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GetPermissionByName resolves a catalog entry by its well-known name.
func (r *RoleRepository) GetPermissionByName(name string) (*models.Permission, error) {
	p := &models.Permission{}
	err := r.db.QueryRow(`SELECT id, name, description FROM permissions WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
