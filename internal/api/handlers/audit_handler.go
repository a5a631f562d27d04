package handlers

import (
	"net/http"
	"strconv"

	"confmgr/internal/engine/access"
	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/audit"
)

type AuditHandler struct {
	auditor *audit.Logger
	members *access.MembershipResolver
}

func NewAuditHandler(auditor *audit.Logger, members *access.MembershipResolver) *AuditHandler {
	return &AuditHandler{auditor: auditor, members: members}
}

// List returns recent audit entries for one organization, owners and
// admins only.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	orgID := param(r, "org_id")

	owner, err := h.members.IsOwner(r.Context(), claims.UserID, orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !owner {
		admin, err := h.members.IsAdmin(r.Context(), claims.UserID, orgID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if !admin {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
			return
		}
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.auditor.ListByOrganization(orgID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
