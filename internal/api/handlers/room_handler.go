package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apiContext "confmgr/internal/api/context"
	"confmgr/internal/api/middleware"
	"confmgr/internal/engine/access"
	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/audit"
	"confmgr/internal/platform/config"
	"confmgr/internal/platform/models"
	"confmgr/internal/platform/repositories"
)

type RoomHandler struct {
	roomRepo  *repositories.RoomRepository
	roleRepo  *repositories.RoleRepository
	groupRepo *repositories.GroupRepository
	userRepo  *repositories.UserRepository
	authz     *access.Authorizer
	auditor   *audit.Logger
	cfg       config.ServerConfig
}

func NewRoomHandler(
	roomRepo *repositories.RoomRepository,
	roleRepo *repositories.RoleRepository,
	groupRepo *repositories.GroupRepository,
	userRepo *repositories.UserRepository,
	authz *access.Authorizer,
	auditor *audit.Logger,
	cfg config.ServerConfig,
) *RoomHandler {
	return &RoomHandler{
		roomRepo:  roomRepo,
		roleRepo:  roleRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		authz:     authz,
		auditor:   auditor,
		cfg:       cfg,
	}
}

func (h *RoomHandler) loadRoom(w http.ResponseWriter, roomID string) *models.Room {
	room, err := h.roomRepo.GetByID(roomID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return nil
	}
	if room == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Room not found", nil)
		return nil
	}
	return room
}

type CreateRoomRequest struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Logo                  string `json:"logo"`
	Background            string `json:"background"`
	MaxActiveVideos       int    `json:"max_active_videos"`
	Locked                bool   `json:"locked"`
	ChatEnabled           *bool  `json:"chat_enabled"`
	RaiseHandEnabled      *bool  `json:"raise_hand_enabled"`
	FilesharingEnabled    *bool  `json:"filesharing_enabled"`
	LocalRecordingEnabled *bool  `json:"local_recording_enabled"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Create provisions a room in the organization the request host resolves
// to. The caller must belong to that organization; on success they are
// granted the configured default role so freshly created rooms are usable
// without a separate grant step.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	tenant, ok := r.Context().Value(apiContext.Tenant).(*middleware.TenantContext)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No tenant context", nil)
		return
	}

	belongs, err := h.authz.Members().BelongsTo(r.Context(), claims.UserID, tenant.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !belongs {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not a member of this organization", nil)
		return
	}

	var req CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Room name is required", nil)
		return
	}
	if req.MaxActiveVideos <= 0 {
		req.MaxActiveVideos = 12
	}

	now := time.Now().Unix()
	room := &models.Room{
		ID:                    "room_" + uuid.NewString(),
		OrganizationID:        tenant.OrgID,
		CreatorID:             claims.UserID,
		Name:                  req.Name,
		Description:           req.Description,
		Logo:                  req.Logo,
		Background:            req.Background,
		MaxActiveVideos:       req.MaxActiveVideos,
		Locked:                req.Locked,
		ChatEnabled:           boolOr(req.ChatEnabled, true),
		RaiseHandEnabled:      boolOr(req.RaiseHandEnabled, true),
		FilesharingEnabled:    boolOr(req.FilesharingEnabled, true),
		LocalRecordingEnabled: boolOr(req.LocalRecordingEnabled, true),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	tx, err := h.roomRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	if err := h.roomRepo.CreateTx(tx, room); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create room", nil)
		return
	}

	// Seed the creator's grant when the default role exists in this
	// organization. Absence is not an error: owners and admins do not
	// need it, and operators may opt out by clearing the setting.
	if h.cfg.DefaultRoomRole != "" {
		role, err := h.roleRepo.GetByName(tenant.OrgID, h.cfg.DefaultRoomRole)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if role != nil {
			if err := h.roomRepo.GrantUserRoleTx(tx, room.ID, claims.UserID, role.ID); err != nil {
				errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to grant creator role", nil)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, tenant.OrgID, "room.create", "room", room.ID, nil)

	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	belongs, err := h.authz.Members().BelongsTo(r.Context(), claims.UserID, room.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !belongs {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not a member of this organization", nil)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	orgID := param(r, "org_id")

	belongs, err := h.authz.Members().BelongsTo(r.Context(), claims.UserID, orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !belongs {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not a member of this organization", nil)
		return
	}

	rooms, err := h.roomRepo.ListByOrganization(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}

	writeJSON(w, http.StatusOK, rooms)
}

type UpdateRoomRequest struct {
	Name                  *string `json:"name"`
	Description           *string `json:"description"`
	Logo                  *string `json:"logo"`
	Background            *string `json:"background"`
	MaxActiveVideos       *int    `json:"max_active_videos"`
	ChatEnabled           *bool   `json:"chat_enabled"`
	RaiseHandEnabled      *bool   `json:"raise_hand_enabled"`
	FilesharingEnabled    *bool   `json:"filesharing_enabled"`
	LocalRecordingEnabled *bool   `json:"local_recording_enabled"`
}

// Update applies partial settings changes. Route access is gated on
// MODERATE_ROOM; the lock flag has its own endpoint and permission.
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	var req UpdateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.Logo != nil {
		room.Logo = *req.Logo
	}
	if req.Background != nil {
		room.Background = *req.Background
	}
	if req.MaxActiveVideos != nil && *req.MaxActiveVideos > 0 {
		room.MaxActiveVideos = *req.MaxActiveVideos
	}
	if req.ChatEnabled != nil {
		room.ChatEnabled = *req.ChatEnabled
	}
	if req.RaiseHandEnabled != nil {
		room.RaiseHandEnabled = *req.RaiseHandEnabled
	}
	if req.FilesharingEnabled != nil {
		room.FilesharingEnabled = *req.FilesharingEnabled
	}
	if req.LocalRecordingEnabled != nil {
		room.LocalRecordingEnabled = *req.LocalRecordingEnabled
	}

	if err := h.roomRepo.Update(room); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update room", nil)
		return
	}

	h.auditor.Log(r.Context(), r, room.OrganizationID, "room.update", "room", room.ID, nil)

	writeJSON(w, http.StatusOK, room)
}

// Lock and Unlock flip the room lock. Gated on CHANGE_ROOM_LOCK.
func (h *RoomHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, true, "room.lock")
}

func (h *RoomHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, false, "room.unlock")
}

func (h *RoomHandler) setLocked(w http.ResponseWriter, r *http.Request, locked bool, action string) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	if err := h.roomRepo.SetLocked(room.ID, locked); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update room lock", nil)
		return
	}
	room.Locked = locked

	h.auditor.Log(r.Context(), r, room.OrganizationID, action, "room", room.ID, nil)

	writeJSON(w, http.StatusOK, room)
}

// Delete is reserved for organization owners and admins. Room permissions
// like MODERATE_ROOM do not reach it.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	owner, err := h.authz.Members().IsOwner(r.Context(), claims.UserID, room.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !owner {
		admin, err := h.authz.Members().IsAdmin(r.Context(), claims.UserID, room.OrganizationID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if !admin {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
			return
		}
	}

	if err := h.roomRepo.Delete(room.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete room", nil)
		return
	}

	h.auditor.Log(r.Context(), r, room.OrganizationID, "room.delete", "room", room.ID, nil)

	w.WriteHeader(http.StatusNoContent)
}

type groupGrantRequest struct {
	GroupID string `json:"group_id"`
	RoleID  string `json:"role_id"`
}

// GrantGroupRole adds a group grant to the room. The role and the group
// must both belong to the room's organization; a mismatch is a caller
// error, not a silent filter.
func (h *RoomHandler) GrantGroupRole(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	var req groupGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	role := h.loadOrgRole(w, req.RoleID, room.OrganizationID)
	if role == nil {
		return
	}

	group, err := h.groupRepo.GetByID(req.GroupID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if group == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Group not found", nil)
		return
	}
	if group.OrganizationID != room.OrganizationID {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Group belongs to a different organization", nil)
		return
	}

	if err := h.roomRepo.GrantGroupRole(room.ID, group.ID, role.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, room.OrganizationID, "room.group_role.grant", "room", room.ID,
		map[string]interface{}{"group_id": group.ID, "role_id": role.ID})

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) RevokeGroupRole(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	groupID := param(r, "group_id")
	roleID := param(r, "role_id")
	if err := h.roomRepo.RevokeGroupRole(room.ID, groupID, roleID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, room.OrganizationID, "room.group_role.revoke", "room", room.ID,
		map[string]interface{}{"group_id": groupID, "role_id": roleID})

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) ListGroupRoles(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	grants, err := h.roomRepo.ListGroupRoles(room.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if grants == nil {
		grants = []*models.RoomGroupRole{}
	}

	writeJSON(w, http.StatusOK, grants)
}

type userGrantRequest struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

func (h *RoomHandler) GrantUserRole(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	var req userGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	role := h.loadOrgRole(w, req.RoleID, room.OrganizationID)
	if role == nil {
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

	if err := h.roomRepo.GrantUserRole(room.ID, user.ID, role.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, room.OrganizationID, "room.user_role.grant", "room", room.ID,
		map[string]interface{}{"user_id": user.ID, "role_id": role.ID})

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) RevokeUserRole(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	userID := param(r, "user_id")
	roleID := param(r, "role_id")
	if err := h.roomRepo.RevokeUserRole(room.ID, userID, roleID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.auditor.Log(r.Context(), r, room.OrganizationID, "room.user_role.revoke", "room", room.ID,
		map[string]interface{}{"user_id": userID, "role_id": roleID})

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	room := h.loadRoom(w, param(r, "room_id"))
	if room == nil {
		return
	}

	grants, err := h.roomRepo.ListUserRoles(room.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if grants == nil {
		grants = []*models.RoomUserRole{}
	}

	writeJSON(w, http.StatusOK, grants)
}

// loadOrgRole fetches a role and rejects roles from other organizations
// with a 400, keeping cross-organization assignments out of the tables.
func (h *RoomHandler) loadOrgRole(w http.ResponseWriter, roleID, orgID string) *models.Role {
	role, err := h.roleRepo.GetByID(roleID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return nil
	}
	if role == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Role not found", nil)
		return nil
	}
	if role.OrganizationID != orgID {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Role belongs to a different organization", nil)
		return nil
	}
	return role
}

// MyPermissions returns the caller's full effective permission set in the
// room, computed in one pass.
func (h *RoomHandler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	roomID := param(r, "room_id")

	perms, err := h.authz.AuthorizeAll(r.Context(), claims.UserID, roomID)
	if err != nil {
		errors.WriteEngineError(w, err)
		return
	}

	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_id":     roomID,
		"user_id":     claims.UserID,
		"permissions": names,
	})
}

// CheckPermission is a diagnostic endpoint answering a single permission
// question for the caller, with the decision basis included.
func (h *RoomHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	roomID := param(r, "room_id")

	permission := r.URL.Query().Get("permission")
	if permission == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "permission query parameter is required", nil)
		return
	}

	decision, err := h.authz.Authorize(r.Context(), claims.UserID, roomID, permission)
	if err != nil {
		errors.WriteEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_id":    roomID,
		"user_id":    claims.UserID,
		"permission": permission,
		"allowed":    decision.Allowed,
		"basis":      decision.Basis,
	})
}
