package repositories

import (
	"database/sql"
	"time"

	"confmgr/internal/platform/models"
)

// InfraRepository manages media-plane registrations: locations and the
// service nodes (media, recorder, tracker) deployed at them.
type InfraRepository struct {
	db *sql.DB
}

func NewInfraRepository(db *sql.DB) *InfraRepository {
	return &InfraRepository{db: db}
}

func (r *InfraRepository) CreateLocation(loc *models.Location) error {
	_, err := r.db.Exec(`
		INSERT INTO locations (id, name, description, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
	`, loc.ID, loc.Name, loc.Description, loc.Latitude, loc.Longitude)
	return err
}

func (r *InfraRepository) GetLocation(id string) (*models.Location, error) {
	loc := &models.Location{}
	err := r.db.QueryRow(`
		SELECT id, name, description, latitude, longitude FROM locations WHERE id = ?
	`, id).Scan(&loc.ID, &loc.Name, &loc.Description, &loc.Latitude, &loc.Longitude)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return loc, nil
}

func (r *InfraRepository) ListLocations() ([]*models.Location, error) {
	rows, err := r.db.Query(`SELECT id, name, description, latitude, longitude FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []*models.Location
	for rows.Next() {
		loc := &models.Location{}
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Description, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

// DeleteLocation removes the location; nodes deployed there cascade.
func (r *InfraRepository) DeleteLocation(id string) error {
	_, err := r.db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	return err
}

const nodeColumns = `id, kind, hostname, port, secret, location_id, created_at, updated_at`

func (r *InfraRepository) CreateNode(node *models.ServiceNode) error {
	_, err := r.db.Exec(`
		INSERT INTO service_nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, node.ID, node.Kind, node.Hostname, node.Port, node.Secret, node.LocationID,
		node.CreatedAt, node.UpdatedAt)
	return err
}

func (r *InfraRepository) GetNode(id string) (*models.ServiceNode, error) {
	node := &models.ServiceNode{}
	err := r.db.QueryRow(`SELECT `+nodeColumns+` FROM service_nodes WHERE id = ?`, id).Scan(
		&node.ID, &node.Kind, &node.Hostname, &node.Port, &node.Secret,
		&node.LocationID, &node.CreatedAt, &node.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return node, nil
}

// ListNodes returns all nodes, or only those of one kind when kind is
// non-empty.
func (r *InfraRepository) ListNodes(kind string) ([]*models.ServiceNode, error) {
	query := `SELECT ` + nodeColumns + ` FROM service_nodes ORDER BY hostname`
	args := []interface{}{}
	if kind != "" {
		query = `SELECT ` + nodeColumns + ` FROM service_nodes WHERE kind = ? ORDER BY hostname`
		args = append(args, kind)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*models.ServiceNode
	for rows.Next() {
		node := &models.ServiceNode{}
		if err := rows.Scan(&node.ID, &node.Kind, &node.Hostname, &node.Port, &node.Secret,
			&node.LocationID, &node.CreatedAt, &node.UpdatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (r *InfraRepository) UpdateNode(node *models.ServiceNode) error {
	_, err := r.db.Exec(`
		UPDATE service_nodes SET hostname = ?, port = ?, secret = ?, location_id = ?, updated_at = ?
		WHERE id = ?
	`, node.Hostname, node.Port, node.Secret, node.LocationID, time.Now().Unix(), node.ID)
	return err
}

func (r *InfraRepository) DeleteNode(id string) error {
	_, err := r.db.Exec(`DELETE FROM service_nodes WHERE id = ?`, id)
	return err
}
