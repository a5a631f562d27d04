package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"confmgr/internal/engine/access"
	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/audit"
	"confmgr/internal/platform/models"
	"confmgr/internal/platform/repositories"
)

type OrgHandler struct {
	orgRepo *repositories.OrganizationRepository
	members *access.MembershipResolver
	auditor *audit.Logger
}

func NewOrgHandler(orgRepo *repositories.OrganizationRepository, members *access.MembershipResolver, auditor *audit.Logger) *OrgHandler {
	return &OrgHandler{
		orgRepo: orgRepo,
		members: members,
		auditor: auditor,
	}
}

// requireManager resolves the acting user's standing in the organization.
// Owners pass always; admins pass unless ownerOnly is set. Writes the
// error response itself and reports whether the caller may proceed.
func (h *OrgHandler) requireManager(w http.ResponseWriter, r *http.Request, orgID string, ownerOnly bool) bool {
	claims := claimsFrom(r)
	if claims == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return false
	}

	owner, err := h.members.IsOwner(r.Context(), claims.UserID, orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return false
	}
	if owner {
		return true
	}
	if !ownerOnly {
		admin, err := h.members.IsAdmin(r.Context(), claims.UserID, orgID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return false
		}
		if admin {
			return true
		}
	}

	errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
	return false
}

type CreateOrgRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create provisions an organization with the caller as its first owner,
// atomically so a failed owner insert never leaves an unmanageable
// organization behind.
func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req CreateOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization name is required", nil)
		return
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:          "org_" + uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := h.orgRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	if err := h.orgRepo.CreateTx(tx, org); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create organization", nil)
		return
	}
	if err := h.orgRepo.AddOwnerTx(tx, org.ID, claims.UserID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to assign owner", nil)
		return
	}
	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, org.ID, "organization.create", "organization", org.ID, nil)

	writeJSON(w, http.StatusCreated, org)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")

	org, err := h.orgRepo.GetByID(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, false) {
		return
	}

	org, err := h.orgRepo.GetByID(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	var req CreateOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != "" {
		org.Name = req.Name
	}
	org.Description = req.Description

	if err := h.orgRepo.Update(org); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update organization", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, "organization.update", "organization", orgID, nil)

	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, true) {
		return
	}

	if err := h.orgRepo.Delete(orgID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete organization", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, "organization.delete", "organization", orgID, nil)

	w.WriteHeader(http.StatusNoContent)
}

type userRelationRequest struct {
	UserID string `json:"user_id"`
}

func (h *OrgHandler) AddOwner(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, true, "organization.owner.add", h.orgRepo.AddOwner)
}

func (h *OrgHandler) RemoveOwner(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, true, "organization.owner.remove", h.orgRepo.RemoveOwner)
}

func (h *OrgHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, false, "organization.admin.add", h.orgRepo.AddAdmin)
}

func (h *OrgHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, false, "organization.admin.remove", h.orgRepo.RemoveAdmin)
}

// mutateRelation handles all four owner/admin membership mutations. Owner
// changes demand owner standing; admin changes accept admins too.
func (h *OrgHandler) mutateRelation(w http.ResponseWriter, r *http.Request, ownerOnly bool, action string, op func(orgID, userID string) error) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, ownerOnly) {
		return
	}

	var req userRelationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "user_id is required", nil)
		return
	}

	if err := op(orgID, req.UserID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, action, "user", req.UserID, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	h.listRelation(w, r, h.orgRepo.ListOwners)
}

func (h *OrgHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	h.listRelation(w, r, h.orgRepo.ListAdmins)
}

func (h *OrgHandler) listRelation(w http.ResponseWriter, r *http.Request, op func(orgID string) ([]string, error)) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, false) {
		return
	}

	ids, err := op(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"user_ids": ids})
}

type addFQDNRequest struct {
	FQDN        string `json:"fqdn"`
	Description string `json:"description"`
}

func (h *OrgHandler) AddFQDN(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, false) {
		return
	}

	var req addFQDNRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fqdn := strings.ToLower(strings.TrimSpace(req.FQDN))
	if fqdn == "" || !strings.Contains(fqdn, ".") {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "A valid fqdn is required", nil)
		return
	}

	entry := &models.OrganizationFQDN{
		ID:             "fqdn_" + uuid.NewString(),
		OrganizationID: orgID,
		FQDN:           fqdn,
		Description:    req.Description,
	}
	if err := h.orgRepo.AddFQDN(entry); err != nil {
		// UNIQUE violation: the domain is claimed already
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Domain already registered", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, "organization.fqdn.add", "fqdn", entry.ID, map[string]interface{}{"fqdn": fqdn})

	writeJSON(w, http.StatusCreated, entry)
}

func (h *OrgHandler) RemoveFQDN(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, false) {
		return
	}

	fqdnID := param(r, "fqdn_id")
	if err := h.orgRepo.RemoveFQDN(orgID, fqdnID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, "organization.fqdn.remove", "fqdn", fqdnID, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) ListFQDNs(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID, false) {
		return
	}

	entries, err := h.orgRepo.ListFQDNs(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if entries == nil {
		entries = []*models.OrganizationFQDN{}
	}

	writeJSON(w, http.StatusOK, entries)
}
