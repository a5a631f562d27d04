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

type RoleHandler struct {
	roleRepo *repositories.RoleRepository
	members  *access.MembershipResolver
	catalog  *access.Catalog
	auditor  *audit.Logger
}

func NewRoleHandler(roleRepo *repositories.RoleRepository, members *access.MembershipResolver, catalog *access.Catalog, auditor *audit.Logger) *RoleHandler {
	return &RoleHandler{
		roleRepo: roleRepo,
		members:  members,
		catalog:  catalog,
		auditor:  auditor,
	}
}

func (h *RoleHandler) requireManager(w http.ResponseWriter, r *http.Request, orgID string) bool {
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
	if !owner {
		admin, err := h.members.IsAdmin(r.Context(), claims.UserID, orgID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return false
		}
		if !admin {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
			return false
		}
	}
	return true
}

func (h *RoleHandler) loadRole(w http.ResponseWriter, roleID string) *models.Role {
	role, err := h.roleRepo.GetByID(roleID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return nil
	}
	if role == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Role not found", nil)
		return nil
	}
	return role
}

// ListCatalog exposes the fixed permission catalog. Authenticated read,
// no organization standing required.
func (h *RoleHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	perms, err := h.roleRepo.ListCatalog()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	writeJSON(w, http.StatusOK, perms)
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID) {
		return
	}

	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Role name is required", nil)
		return
	}

	existing, err := h.roleRepo.GetByName(orgID, req.Name)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Role name already in use", nil)
		return
	}

	now := time.Now().Unix()
	role := &models.Role{
		ID:             "rol_" + uuid.NewString(),
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.roleRepo.Create(role); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create role", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, "role.create", "role", role.ID, nil)

	writeJSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID) {
		return
	}

	roles, err := h.roleRepo.ListByOrganization(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if roles == nil {
		roles = []*models.Role{}
	}

	writeJSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	role := h.loadRole(w, param(r, "role_id"))
	if role == nil {
		return
	}
	if !h.requireManager(w, r, role.OrganizationID) {
		return
	}

	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	role := h.loadRole(w, param(r, "role_id"))
	if role == nil {
		return
	}
	if !h.requireManager(w, r, role.OrganizationID) {
		return
	}

	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != "" {
		role.Name = req.Name
	}
	role.Description = req.Description

	if err := h.roleRepo.Update(role); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update role", nil)
		return
	}

	h.auditor.Log(r.Context(), r, role.OrganizationID, "role.update", "role", role.ID, nil)

	writeJSON(w, http.StatusOK, role)
}

// Delete removes the role. Room grants referencing it cascade, so users
// holding it through any room lose those permissions at once.
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	role := h.loadRole(w, param(r, "role_id"))
	if role == nil {
		return
	}
	if !h.requireManager(w, r, role.OrganizationID) {
		return
	}

	if err := h.roleRepo.Delete(role.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete role", nil)
		return
	}

	h.auditor.Log(r.Context(), r, role.OrganizationID, "role.delete", "role", role.ID, nil)

	w.WriteHeader(http.StatusNoContent)
}

type rolePermissionRequest struct {
	Permission string `json:"permission"`
}

// AddPermission assigns a catalog permission to the role. Names outside
// the catalog are caller errors, not silent no-ops.
func (h *RoleHandler) AddPermission(w http.ResponseWriter, r *http.Request) {
	role := h.loadRole(w, param(r, "role_id"))
	if role == nil {
		return
	}
	if !h.requireManager(w, r, role.OrganizationID) {
		return
	}

	var req rolePermissionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	perm, ok := h.catalog.Get(req.Permission)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown permission: "+req.Permission, nil)
		return
	}

	if err := h.roleRepo.AddPermission(role.ID, perm.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, role.OrganizationID, "role.permission.add", "role", role.ID,
		map[string]interface{}{"permission": perm.Name})

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	role := h.loadRole(w, param(r, "role_id"))
	if role == nil {
		return
	}
	if !h.requireManager(w, r, role.OrganizationID) {
		return
	}

	name := param(r, "permission")
	perm, ok := h.catalog.Get(name)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown permission: "+name, nil)
		return
	}

	if err := h.roleRepo.RemovePermission(role.ID, perm.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, role.OrganizationID, "role.permission.remove", "role", role.ID,
		map[string]interface{}{"permission": perm.Name})

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	role := h.loadRole(w, param(r, "role_id"))
	if role == nil {
		return
	}
	if !h.requireManager(w, r, role.OrganizationID) {
		return
	}

	perms, err := h.roleRepo.ListPermissions(role.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if perms == nil {
		perms = []*models.Permission{}
	}

	writeJSON(w, http.StatusOK, perms)
}
