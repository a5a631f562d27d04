package repositories

import (
	"database/sql"
	"time"

	"confmgr/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	_, err := r.db.Exec(`
		INSERT INTO organizations (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Description, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Description, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, description, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

// GetByFQDN resolves an organization from a domain allow-list entry.
func (r *OrganizationRepository) GetByFQDN(fqdn string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT o.id, o.name, o.description, o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN organization_fqdns f ON f.organization_id = o.id
		WHERE f.fqdn = ?
	`, fqdn).Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Update(org *models.Organization) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, org.Name, org.Description, time.Now().Unix(), org.ID)
	return err
}

// Delete removes the organization. Groups, roles, rooms, owner/admin links,
// FQDN entries and all dependent grant rows go with it via cascades.
func (r *OrganizationRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM organizations WHERE id = ?`, id)
	return err
}

func (r *OrganizationRepository) AddOwner(orgID, userID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO organization_owners (organization_id, user_id) VALUES (?, ?)
	`, orgID, userID)
	return err
}

func (r *OrganizationRepository) AddOwnerTx(tx *sql.Tx, orgID, userID string) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO organization_owners (organization_id, user_id) VALUES (?, ?)
	`, orgID, userID)
	return err
}

func (r *OrganizationRepository) RemoveOwner(orgID, userID string) error {
	_, err := r.db.Exec(`
		DELETE FROM organization_owners WHERE organization_id = ? AND user_id = ?
	`, orgID, userID)
	return err
}

func (r *OrganizationRepository) ListOwners(orgID string) ([]string, error) {
	return r.listUserRelation(`SELECT user_id FROM organization_owners WHERE organization_id = ?`, orgID)
}

func (r *OrganizationRepository) AddAdmin(orgID, userID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO organization_admins (organization_id, user_id) VALUES (?, ?)
	`, orgID, userID)
	return err
}

func (r *OrganizationRepository) RemoveAdmin(orgID, userID string) error {
	_, err := r.db.Exec(`
		DELETE FROM organization_admins WHERE organization_id = ? AND user_id = ?
	`, orgID, userID)
	return err
}

func (r *OrganizationRepository) ListAdmins(orgID string) ([]string, error) {
	return r.listUserRelation(`SELECT user_id FROM organization_admins WHERE organization_id = ?`, orgID)
}

func (r *OrganizationRepository) listUserRelation(query, orgID string) ([]string, error) {
	rows, err := r.db.Query(query, orgID)
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

func (r *OrganizationRepository) AddFQDN(entry *models.OrganizationFQDN) error {
	_, err := r.db.Exec(`
		INSERT INTO organization_fqdns (id, organization_id, fqdn, description)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.OrganizationID, entry.FQDN, entry.Description)
	return err
}

func (r *OrganizationRepository) RemoveFQDN(orgID, fqdnID string) error {
	_, err := r.db.Exec(`
		DELETE FROM organization_fqdns WHERE id = ? AND organization_id = ?
	`, fqdnID, orgID)
	return err
}

func (r *OrganizationRepository) ListFQDNs(orgID string) ([]*models.OrganizationFQDN, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, fqdn, description
		FROM organization_fqdns WHERE organization_id = ?
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.OrganizationFQDN
	for rows.Next() {
		e := &models.OrganizationFQDN{}
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.FQDN, &e.Description); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
