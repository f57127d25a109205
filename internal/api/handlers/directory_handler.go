package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kllinic/marketplace/internal/application/services"
)

// DirectoryHandler serves the public clinic and pharmacy directories
// and the admin verification toggles
type DirectoryHandler struct {
	tenants *services.TenantService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(tenants *services.TenantService) *DirectoryHandler {
	return &DirectoryHandler{tenants: tenants}
}

// ListClinics handles GET /api/clinics
func (h *DirectoryHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.tenants.ListClinics(r.Context(), parseLimit(r, 50))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinics": clinics,
		"count":   len(clinics),
	})
}

// ListPharmacies handles GET /api/pharmacies
func (h *DirectoryHandler) ListPharmacies(w http.ResponseWriter, r *http.Request) {
	pharmacies, err := h.tenants.ListPharmacies(r.Context(), parseLimit(r, 50))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pharmacies": pharmacies,
		"count":      len(pharmacies),
	})
}

// VerifyClinic handles PATCH /api/admin/clinics/{id}/verify
func (h *DirectoryHandler) VerifyClinic(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.tenants.SetClinicVerified)
}

// VerifyPharmacy handles PATCH /api/admin/pharmacies/{id}/verify
func (h *DirectoryHandler) VerifyPharmacy(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.tenants.SetPharmacyVerified)
}

func (h *DirectoryHandler) verify(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, id string, verified bool) error) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "ID is required")
		return
	}

	var body struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := set(r.Context(), id, body.Verified); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"verified": body.Verified,
	})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
