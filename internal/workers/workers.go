package workers

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
)

// SweepOrphanedGrants removes grant rows whose role no longer belongs to
// the room's organization. Such rows appear when a role is moved or an
// organization is restructured; the authorization engine already ignores
// them at read time, this keeps the tables from accumulating dead weight.
func SweepOrphanedGrants(db *sql.DB) error {
	userRes, err := db.Exec(`
		DELETE FROM room_user_roles WHERE rowid IN (
			SELECT rur.rowid
			FROM room_user_roles rur
			INNER JOIN rooms rm ON rm.id = rur.room_id
			INNER JOIN roles r ON r.id = rur.role_id
			WHERE r.organization_id != rm.organization_id
		)
	`)
	if err != nil {
		return err
	}

	groupRes, err := db.Exec(`
		DELETE FROM room_group_roles WHERE rowid IN (
			SELECT rgr.rowid
			FROM room_group_roles rgr
			INNER JOIN rooms rm ON rm.id = rgr.room_id
			INNER JOIN roles r ON r.id = rgr.role_id
			WHERE r.organization_id != rm.organization_id
		)
	`)
	if err != nil {
		return err
	}

	userN, _ := userRes.RowsAffected()
	groupN, _ := groupRes.RowsAffected()
	if userN+groupN > 0 {
		log.Info().
			Int64("user_grants", userN).
			Int64("group_grants", groupN).
			Msg("Swept orphaned grants")
	}
	return nil
}

// PruneAuditLogs deletes audit entries older than the retention window.
func PruneAuditLogs(db *sql.DB, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()

	res, err := db.Exec(`DELETE FROM audit_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("entries", n).Msg("Pruned expired audit logs")
	}
	return nil
}
