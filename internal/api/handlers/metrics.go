package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
)

// MetricsHandler exports a small plaintext gauge set. Entity counts come
// straight from the tables; cheap enough at this scale to skip a
// collector registry.
type MetricsHandler struct {
	db *sql.DB
}

func NewMetricsHandler(db *sql.DB) *MetricsHandler {
	return &MetricsHandler{db: db}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	fmt.Fprintf(w, "# HELP confmgr_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE confmgr_up gauge\n")
	fmt.Fprintf(w, "confmgr_up 1\n")

	gauges := []struct {
		name  string
		table string
	}{
		{"confmgr_organizations", "organizations"},
		{"confmgr_users", "users"},
		{"confmgr_rooms", "rooms"},
		{"confmgr_service_nodes", "service_nodes"},
	}
	for _, g := range gauges {
		var count int
		if err := h.db.QueryRow(`SELECT COUNT(*) FROM ` + g.table).Scan(&count); err != nil {
			continue
		}
		fmt.Fprintf(w, "# TYPE %s gauge\n", g.name)
		fmt.Fprintf(w, "%s %d\n", g.name, count)
	}
}
