package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/hoot-be/internal/models"
	"github.com/isdelr/hoot-be/internal/services"
)

// HootHandler handles HTTP requests related to hoots.
type HootHandler struct {
	service services.HootServiceProvider
}

// NewHootHandler creates a new HootHandler.
func NewHootHandler(service services.HootServiceProvider) *HootHandler {
	return &HootHandler{service: service}
}

// GetAll handles the request to get all hoots, newest first.
func (h *HootHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	hoots, err := h.service.GetAllHoots(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve hoots", nil)
		return
	}
	writeJSON(w, http.StatusOK, hoots)
}

// Get handles the request to get a single hoot by its ID.
func (h *HootHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "hootId")
	hoot, err := h.service.GetHootByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to get hoot by ID", map[string]string{"hoot_id": id})
		return
	}
	writeJSON(w, http.StatusOK, hoot)
}

// Create handles the request to create a new hoot. Any author in the body is ignored.
func (h *HootHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	var content models.HootContent
	if !decodeBody(w, r, &content) {
		return
	}

	hoot, err := h.service.CreateHoot(r.Context(), content, claims.User())
	if err != nil {
		writeServiceError(w, r, err, "Failed to create hoot", map[string]string{"user_id": claims.UserID})
		return
	}
	writeJSON(w, http.StatusCreated, hoot)
}

// Update handles the request to update a hoot. Only its author may do this.
func (h *HootHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "hootId")
	var patch models.HootPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	hoot, err := h.service.UpdateHoot(r.Context(), id, patch, claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update hoot", map[string]string{"hoot_id": id, "user_id": claims.UserID})
		return
	}
	writeJSON(w, http.StatusOK, hoot)
}

// Delete handles the request to delete a hoot. Only its author may do this.
func (h *HootHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "hootId")

	hoot, err := h.service.DeleteHoot(r.Context(), id, claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to delete hoot", map[string]string{"hoot_id": id, "user_id": claims.UserID})
		return
	}
	writeJSON(w, http.StatusOK, hoot)
}
