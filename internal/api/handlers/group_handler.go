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

type GroupHandler struct {
	groupRepo *repositories.GroupRepository
	userRepo  *repositories.UserRepository
	members   *access.MembershipResolver
	auditor   *audit.Logger
}

func NewGroupHandler(groupRepo *repositories.GroupRepository, userRepo *repositories.UserRepository, members *access.MembershipResolver, auditor *audit.Logger) *GroupHandler {
	return &GroupHandler{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		members:   members,
		auditor:   auditor,
	}
}

func (h *GroupHandler) requireManager(w http.ResponseWriter, r *http.Request, orgID string) bool {
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

// loadGroup fetches the group or writes the 404 itself.
func (h *GroupHandler) loadGroup(w http.ResponseWriter, groupID string) *models.Group {
	group, err := h.groupRepo.GetByID(groupID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return nil
	}
	if group == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Group not found", nil)
		return nil
	}
	return group
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID) {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Group name is required", nil)
		return
	}

	now := time.Now().Unix()
	group := &models.Group{
		ID:             "grp_" + uuid.NewString(),
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.groupRepo.Create(group); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create group", nil)
		return
	}

	h.auditor.Log(r.Context(), r, orgID, "group.create", "group", group.ID, nil)

	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := param(r, "org_id")
	if !h.requireManager(w, r, orgID) {
		return
	}

	groups, err := h.groupRepo.ListByOrganization(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	group := h.loadGroup(w, param(r, "group_id"))
	if group == nil {
		return
	}
	if !h.requireManager(w, r, group.OrganizationID) {
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	group := h.loadGroup(w, param(r, "group_id"))
	if group == nil {
		return
	}
	if !h.requireManager(w, r, group.OrganizationID) {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != "" {
		group.Name = req.Name
	}
	group.Description = req.Description

	if err := h.groupRepo.Update(group); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update group", nil)
		return
	}

	h.auditor.Log(r.Context(), r, group.OrganizationID, "group.update", "group", group.ID, nil)

	writeJSON(w, http.StatusOK, group)
}

// Delete removes the group. Memberships and room grants referencing it
// cascade, so affected users lose group-derived roles immediately.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	group := h.loadGroup(w, param(r, "group_id"))
	if group == nil {
		return
	}
	if !h.requireManager(w, r, group.OrganizationID) {
		return
	}

	if err := h.groupRepo.Delete(group.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete group", nil)
		return
	}

	h.auditor.Log(r.Context(), r, group.OrganizationID, "group.delete", "group", group.ID, nil)

	w.WriteHeader(http.StatusNoContent)
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	group := h.loadGroup(w, param(r, "group_id"))
	if group == nil {
		return
	}
	if !h.requireManager(w, r, group.OrganizationID) {
		return
	}

	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userRepo.GetByID(req.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	if err := h.groupRepo.AddMember(group.ID, user.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, group.OrganizationID, "group.member.add", "user", user.ID, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	group := h.loadGroup(w, param(r, "group_id"))
	if group == nil {
		return
	}
	if !h.requireManager(w, r, group.OrganizationID) {
		return
	}

	userID := param(r, "user_id")
	if err := h.groupRepo.RemoveMember(group.ID, userID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, group.OrganizationID, "group.member.remove", "user", userID, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	group := h.loadGroup(w, param(r, "group_id"))
	if group == nil {
		return
	}
	if !h.requireManager(w, r, group.OrganizationID) {
		return
	}

	users, err := h.groupRepo.ListMembers(group.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	writeJSON(w, http.StatusOK, users)
}
