package repositories

import (
	"database/sql"
	"time"

	"confmgr/internal/platform/models"
)

type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const roomColumns = `id, organization_id, creator_id, personal_owner_id, name, description,
	logo, background, max_active_videos, locked, chat_enabled, raise_hand_enabled,
	filesharing_enabled, local_recording_enabled, created_at, updated_at`

func (r *RoomRepository) CreateTx(tx *sql.Tx, room *models.Room) error {
	_, err := tx.Exec(`
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, room.ID, room.OrganizationID, room.CreatorID, room.PersonalOwnerID, room.Name,
		room.Description, room.Logo, room.Background, room.MaxActiveVideos, room.Locked,
		room.ChatEnabled, room.RaiseHandEnabled, room.FilesharingEnabled,
		room.LocalRecordingEnabled, room.CreatedAt, room.UpdatedAt)
	return err
}

func (r *RoomRepository) GetByID(id string) (*models.Room, error) {
	row := r.db.QueryRow(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

func (r *RoomRepository) ListByOrganization(orgID string) ([]*models.Room, error) {
	rows, err := r.db.Query(`
		SELECT `+roomColumns+` FROM rooms WHERE organization_id = ? ORDER BY name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepository) Update(room *models.Room) error {
	_, err := r.db.Exec(`
		UPDATE rooms SET name = ?, description = ?, logo = ?, background = ?,
			max_active_videos = ?, locked = ?, chat_enabled = ?, raise_hand_enabled = ?,
			filesharing_enabled = ?, local_recording_enabled = ?, updated_at = ?
		WHERE id = ?
	`, room.Name, room.Description, room.Logo, room.Background, room.MaxActiveVideos,
		room.Locked, room.ChatEnabled, room.RaiseHandEnabled, room.FilesharingEnabled,
		room.LocalRecordingEnabled, time.Now().Unix(), room.ID)
	return err
}

func (r *RoomRepository) SetLocked(id string, locked bool) error {
	_, err := r.db.Exec(`UPDATE rooms SET locked = ?, updated_at = ? WHERE id = ?`,
		locked, time.Now().Unix(), id)
	return err
}

// Delete removes the room; dependent grant rows cascade with it.
func (r *RoomRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	return err
}

// GrantGroupRole grants a role to every member of a group within the room.
// Idempotent: duplicates are ignored, so the relation stays a set.
func (r *RoomRepository) GrantGroupRole(roomID, groupID, roleID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO room_group_roles (room_id, group_id, role_id) VALUES (?, ?, ?)
	`, roomID, groupID, roleID)
	return err
}

func (r *RoomRepository) RevokeGroupRole(roomID, groupID, roleID string) error {
	_, err := r.db.Exec(`
		DELETE FROM room_group_roles WHERE room_id = ? AND group_id = ? AND role_id = ?
	`, roomID, groupID, roleID)
	return err
}

func (r *RoomRepository) ListGroupRoles(roomID string) ([]*models.RoomGroupRole, error) {
	rows, err := r.db.Query(`
		SELECT room_id, group_id, role_id FROM room_group_roles WHERE room_id = ?
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*models.RoomGroupRole
	for rows.Next() {
		g := &models.RoomGroupRole{}
		if err := rows.Scan(&g.RoomID, &g.GroupID, &g.RoleID); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// GrantUserRole grants a role to one user within the room. Idempotent.
func (r *RoomRepository) GrantUserRole(roomID, userID, roleID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO room_user_roles (room_id, user_id, role_id) VALUES (?, ?, ?)
	`, roomID, userID, roleID)
	return err
}

func (r *RoomRepository) GrantUserRoleTx(tx *sql.Tx, roomID, userID, roleID string) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO room_user_roles (room_id, user_id, role_id) VALUES (?, ?, ?)
	`, roomID, userID, roleID)
	return err
}

func (r *RoomRepository) RevokeUserRole(roomID, userID, roleID string) error {
	_, err := r.db.Exec(`
		DELETE FROM room_user_roles WHERE room_id = ? AND user_id = ? AND role_id = ?
	`, roomID, userID, roleID)
	return err
}

func (r *RoomRepository) ListUserRoles(roomID string) ([]*models.RoomUserRole, error) {
	rows, err := r.db.Query(`
		SELECT room_id, user_id, role_id FROM room_user_roles WHERE room_id = ?
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*models.RoomUserRole
	for rows.Next() {
		g := &models.RoomUserRole{}
		if err := rows.Scan(&g.RoomID, &g.UserID, &g.RoleID); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func scanRoom(s interface {
	Scan(dest ...interface{}) error
}) (*models.Room, error) {
	room := &models.Room{}
	err := s.Scan(
		&room.ID, &room.OrganizationID, &room.CreatorID, &room.PersonalOwnerID,
		&room.Name, &room.Description, &room.Logo, &room.Background,
		&room.MaxActiveVideos, &room.Locked, &room.ChatEnabled, &room.RaiseHandEnabled,
		&room.FilesharingEnabled, &room.LocalRecordingEnabled,
		&room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}
