package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/models"
	"confmgr/internal/platform/repositories"
)

// InfraHandler manages media-plane registrations. All routes are gated on
// the super-admin API role in the router.
type InfraHandler struct {
	infraRepo *repositories.InfraRepository
}

func NewInfraHandler(infraRepo *repositories.InfraRepository) *InfraHandler {
	return &InfraHandler{infraRepo: infraRepo}
}

type locationRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (h *InfraHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Location name is required", nil)
		return
	}

	loc := &models.Location{
		ID:          "loc_" + uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := h.infraRepo.CreateLocation(loc); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create location", nil)
		return
	}

	writeJSON(w, http.StatusCreated, loc)
}

func (h *InfraHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.infraRepo.ListLocations()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if locs == nil {
		locs = []*models.Location{}
	}

	writeJSON(w, http.StatusOK, locs)
}

func (h *InfraHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.infraRepo.DeleteLocation(param(r, "location_id")); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete location", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type nodeRequest struct {
	Kind       string  `json:"kind"`
	Hostname   string  `json:"hostname"`
	Port       int     `json:"port"`
	Secret     string  `json:"secret"`
	LocationID *string `json:"location_id"`
}

func validNodeKind(kind string) bool {
	switch kind {
	case models.NodeKindMedia, models.NodeKindRecorder, models.NodeKindTracker:
		return true
	}
	return false
}

func (h *InfraHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validNodeKind(req.Kind) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown node kind: "+req.Kind, nil)
		return
	}
	if req.Hostname == "" || req.Port <= 0 || req.Port > 65535 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "A valid hostname and port are required", nil)
		return
	}

	now := time.Now().Unix()
	node := &models.ServiceNode{
		ID:         "node_" + uuid.NewString(),
		Kind:       req.Kind,
		Hostname:   req.Hostname,
		Port:       req.Port,
		Secret:     req.Secret,
		LocationID: req.LocationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if node.Secret == "" {
		node.Secret = uuid.NewString()
	}

	if err := h.infraRepo.CreateNode(node); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create node", nil)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (h *InfraHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && !validNodeKind(kind) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown node kind: "+kind, nil)
		return
	}

	nodes, err := h.infraRepo.ListNodes(kind)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if nodes == nil {
		nodes = []*models.ServiceNode{}
	}

	writeJSON(w, http.StatusOK, nodes)
}

func (h *InfraHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.infraRepo.GetNode(param(r, "node_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if node == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Node not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

func (h *InfraHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.infraRepo.GetNode(param(r, "node_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if node == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Node not found", nil)
		return
	}

	var req nodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Hostname != "" {
		node.Hostname = req.Hostname
	}
	if req.Port > 0 && req.Port <= 65535 {
		node.Port = req.Port
	}
	if req.Secret != "" {
		node.Secret = req.Secret
	}
	if req.LocationID != nil {
		node.LocationID = req.LocationID
	}

	if err := h.infraRepo.UpdateNode(node); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update node", nil)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

func (h *InfraHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.infraRepo.DeleteNode(param(r, "node_id")); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete node", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
