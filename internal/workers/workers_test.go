package workers

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupWorkerDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE organizations (id TEXT PRIMARY KEY, name TEXT NOT NULL);
	CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE);
	CREATE TABLE groups (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL
	);
	CREATE TABLE roles (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL
	);
	CREATE TABLE rooms (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL
	);
	CREATE TABLE room_user_roles (
		room_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		UNIQUE (room_id, user_id, role_id)
	);
	CREATE TABLE room_group_roles (
		room_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		UNIQUE (room_id, group_id, role_id)
	);
	CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("Fixture exec failed: %v", err)
	}
}

func TestSweepOrphanedGrants(t *testing.T) {
	db := setupWorkerDB(t)

	mustExec(t, db, `INSERT INTO organizations (id, name) VALUES ('org_a', 'A'), ('org_b', 'B')`)
	mustExec(t, db, `INSERT INTO rooms (id, organization_id, name) VALUES ('room_1', 'org_a', 'r1')`)
	mustExec(t, db, `INSERT INTO roles (id, organization_id, name) VALUES
		('rol_local', 'org_a', 'local'), ('rol_foreign', 'org_b', 'foreign')`)
	mustExec(t, db, `INSERT INTO room_user_roles VALUES
		('room_1', 'usr_1', 'rol_local'), ('room_1', 'usr_1', 'rol_foreign')`)
	mustExec(t, db, `INSERT INTO room_group_roles VALUES
		('room_1', 'grp_1', 'rol_local'), ('room_1', 'grp_1', 'rol_foreign')`)

	if err := SweepOrphanedGrants(db); err != nil {
		t.Fatalf("SweepOrphanedGrants: %v", err)
	}

	var roleID string
	if err := db.QueryRow(`SELECT role_id FROM room_user_roles`).Scan(&roleID); err != nil {
		t.Fatalf("query user grants: %v", err)
	}
	if roleID != "rol_local" {
		t.Errorf("Expected only local user grant to survive, got %s", roleID)
	}
	if err := db.QueryRow(`SELECT role_id FROM room_group_roles`).Scan(&roleID); err != nil {
		t.Fatalf("query group grants: %v", err)
	}
	if roleID != "rol_local" {
		t.Errorf("Expected only local group grant to survive, got %s", roleID)
	}
}

func TestSweepOrphanedGrants_NothingToDo(t *testing.T) {
	db := setupWorkerDB(t)

	mustExec(t, db, `INSERT INTO organizations (id, name) VALUES ('org_a', 'A')`)
	mustExec(t, db, `INSERT INTO rooms (id, organization_id, name) VALUES ('room_1', 'org_a', 'r1')`)
	mustExec(t, db, `INSERT INTO roles (id, organization_id, name) VALUES ('rol_local', 'org_a', 'local')`)
	mustExec(t, db, `INSERT INTO room_user_roles VALUES ('room_1', 'usr_1', 'rol_local')`)

	if err := SweepOrphanedGrants(db); err != nil {
		t.Fatalf("SweepOrphanedGrants: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM room_user_roles`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected valid grant untouched, got %d rows", count)
	}
}

func TestPruneAuditLogs(t *testing.T) {
	db := setupWorkerDB(t)

	old := time.Now().AddDate(0, 0, -120).Unix()
	recent := time.Now().Unix()
	mustExec(t, db, `INSERT INTO audit_logs (id, action, resource_type, resource_id, created_at) VALUES
		('audit_old', 'room.create', 'room', 'room_1', ?),
		('audit_new', 'room.delete', 'room', 'room_1', ?)`, old, recent)

	if err := PruneAuditLogs(db, 90); err != nil {
		t.Fatalf("PruneAuditLogs: %v", err)
	}

	var id string
	if err := db.QueryRow(`SELECT id FROM audit_logs`).Scan(&id); err != nil {
		t.Fatalf("query: %v", err)
	}
	if id != "audit_new" {
		t.Errorf("Expected recent entry to survive, got %s", id)
	}

	// retention disabled means nothing is deleted
	if err := PruneAuditLogs(db, 0); err != nil {
		t.Fatalf("PruneAuditLogs disabled: %v", err)
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM audit_logs`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected no deletions with retention disabled, got %d rows", count)
	}
}
