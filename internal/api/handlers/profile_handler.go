package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

// ProfileHandler handles the patient's own profile
type ProfileHandler struct {
	tenants *services.TenantService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(tenants *services.TenantService) *ProfileHandler {
	return &ProfileHandler{tenants: tenants}
}

// Get handles GET /api/profile (patient)
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	profile, err := h.tenants.ProfileForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/profile (patient)
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var profile entities.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The profile id is the user id; the caller edits their own row
	profile.ID = session.UserID

	if err := h.tenants.UpdateProfile(r.Context(), &profile); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}
