package repositories

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB opens an in-memory database with the schema subset these
// tests touch, permission catalog seeded.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		last_login_at INTEGER,
		created_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE groups (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE group_users (
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE (group_id, user_id)
	);
	CREATE TABLE organization_owners (
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE (organization_id, user_id)
	);
	CREATE TABLE organization_admins (
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE (organization_id, user_id)
	);
	CREATE TABLE organization_fqdns (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		fqdn TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE roles (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE permissions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE role_permissions (
		role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		permission_id TEXT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		UNIQUE (role_id, permission_id)
	);
	CREATE TABLE rooms (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		creator_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		personal_owner_id TEXT REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		logo TEXT NOT NULL DEFAULT '',
		background TEXT NOT NULL DEFAULT '',
		max_active_videos INTEGER NOT NULL DEFAULT 12,
		locked INTEGER NOT NULL DEFAULT 0,
		chat_enabled INTEGER NOT NULL DEFAULT 1,
		raise_hand_enabled INTEGER NOT NULL DEFAULT 1,
		filesharing_enabled INTEGER NOT NULL DEFAULT 1,
		local_recording_enabled INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE room_group_roles (
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		UNIQUE (room_id, group_id, role_id)
	);
	CREATE TABLE room_user_roles (
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		UNIQUE (room_id, user_id, role_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	seedPermissions(t, db)
	return db
}

func seedPermissions(t *testing.T, db *sql.DB) {
	t.Helper()
	names := []string{
		"BYPASS_ROOM_LOCK", "BYPASS_LOBBY", "CHANGE_ROOM_LOCK", "PROMOTE_PEER",
		"MODIFY_ROLE", "SEND_CHAT", "MODERATE_CHAT", "SHARE_AUDIO",
		"SHARE_VIDEO", "SHARE_SCREEN", "SHARE_EXTRA_VIDEO", "SHARE_FILE",
		"MODERATE_FILES", "MODERATE_ROOM", "LOCAL_RECORD_ROOM", "CREATE_ROOM",
	}
	for _, name := range names {
		if _, err := db.Exec(`INSERT INTO permissions (id, name) VALUES (?, ?)`, "perm_"+name, name); err != nil {
			t.Fatalf("Failed to seed permission %s: %v", name, err)
		}
	}
}

// exec fails the test on error; for fixture setup.
func exec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("Fixture exec failed: %v\nquery: %s", err, query)
	}
}
