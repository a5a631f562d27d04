package repositories

import (
	"testing"
	"time"

	"confmgr/internal/platform/models"
)

func TestRoomRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	seedAcme(t, db)
	repo := NewRoomRepository(db)

	now := time.Now().Unix()
	room := &models.Room{
		ID:              "room_new",
		OrganizationID:  "org_acme",
		CreatorID:       "usr_carol",
		Name:            "standup",
		MaxActiveVideos: 9,
		ChatEnabled:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tx, err := repo.BeginTx()
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := repo.CreateTx(tx, room); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	fetched, err := repo.GetByID("room_new")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.Name != "standup" || fetched.MaxActiveVideos != 9 {
		t.Errorf("Unexpected room %+v", fetched)
	}

	missing, err := repo.GetByID("room_nope")
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing room")
	}
}

func TestRoomRepository_GrantIdempotency(t *testing.T) {
	db := setupTestDB(t)
	seedAcme(t, db)
	repo := NewRoomRepository(db)

	// granting the same triple twice leaves a single row
	for i := 0; i < 2; i++ {
		if err := repo.GrantUserRole("room_r1", "usr_alice", "rol_moderator"); err != nil {
			t.Fatalf("GrantUserRole: %v", err)
		}
		if err := repo.GrantGroupRole("room_r1", "grp_support", "rol_moderator"); err != nil {
			t.Fatalf("GrantGroupRole: %v", err)
		}
	}

	userGrants, err := repo.ListUserRoles("room_r1")
	if err != nil {
		t.Fatalf("ListUserRoles: %v", err)
	}
	if len(userGrants) != 1 {
		t.Errorf("Expected 1 user grant, got %d", len(userGrants))
	}

	groupGrants, err := repo.ListGroupRoles("room_r1")
	if err != nil {
		t.Fatalf("ListGroupRoles: %v", err)
	}
	if len(groupGrants) != 1 {
		t.Errorf("Expected 1 group grant, got %d", len(groupGrants))
	}
}

func TestRoomRepository_DeleteCascadesGrants(t *testing.T) {
	db := setupTestDB(t)
	seedAcme(t, db)
	repo := NewRoomRepository(db)

	if err := repo.GrantUserRole("room_r1", "usr_alice", "rol_moderator"); err != nil {
		t.Fatalf("GrantUserRole: %v", err)
	}
	if err := repo.Delete("room_r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM room_user_roles WHERE room_id = 'room_r1'`).Scan(&count); err != nil {
		t.Fatalf("count user grants: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected user grants cascaded, found %d rows", count)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM room_group_roles WHERE room_id = 'room_r1'`).Scan(&count); err != nil {
		t.Fatalf("count group grants: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected group grants cascaded, found %d rows", count)
	}
}

func TestRoomRepository_RevokeUserRole(t *testing.T) {
	db := setupTestDB(t)
	seedAcme(t, db)
	repo := NewRoomRepository(db)

	if err := repo.GrantUserRole("room_r1", "usr_bob", "rol_moderator"); err != nil {
		t.Fatalf("GrantUserRole: %v", err)
	}
	if err := repo.RevokeUserRole("room_r1", "usr_bob", "rol_moderator"); err != nil {
		t.Fatalf("RevokeUserRole: %v", err)
	}

	grants, err := repo.ListUserRoles("room_r1")
	if err != nil {
		t.Fatalf("ListUserRoles: %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("Expected no grants after revoke, got %d", len(grants))
	}
}

func TestRoomRepository_SetLocked(t *testing.T) {
	db := setupTestDB(t)
	seedAcme(t, db)
	repo := NewRoomRepository(db)

	if err := repo.SetLocked("room_r1", true); err != nil {
		t.Fatalf("SetLocked: %v", err)
	}
	room, err := repo.GetByID("room_r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !room.Locked {
		t.Error("Expected room locked")
	}
}
