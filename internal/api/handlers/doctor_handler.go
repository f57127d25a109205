package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

// DoctorHandler handles clinic doctor management HTTP requests
type DoctorHandler struct {
	doctors *services.DoctorService
	tenants *services.TenantService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctors *services.DoctorService, tenants *services.TenantService) *DoctorHandler {
	return &DoctorHandler{
		doctors: doctors,
		tenants: tenants,
	}
}

// ListForClinic handles GET /api/clinic/doctors (clinic, own roster)
func (h *DoctorHandler) ListForClinic(w http.ResponseWriter, r *http.Request) {
	clinic, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	views, err := h.doctors.ListForClinic(r.Context(), clinic.ID, false)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": views,
		"count":   len(views),
	})
}

// ListPublic handles GET /api/clinics/{id}/doctors (patients browsing;
// only doctors open for booking)
func (h *DoctorHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	views, err := h.doctors.ListForClinic(r.Context(), clinicID, true)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": views,
		"count":   len(views),
	})
}

// Add handles POST /api/clinic/doctors
func (h *DoctorHandler) Add(w http.ResponseWriter, r *http.Request) {
	clinic, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	var doctor entities.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doctor.ClinicID = clinic.ID

	if err := h.doctors.Add(r.Context(), &doctor); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, doctor)
}

// Update handles PUT /api/clinic/doctors/{id}
func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	clinic, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	var doctor entities.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doctor.ID = id

	if err := h.doctors.Update(r.Context(), clinic.ID, &doctor); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doctor)
}

// SetAvailability handles PATCH /api/clinic/doctors/{id}/availability
func (h *DoctorHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	clinic, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	var body struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.doctors.SetAvailable(r.Context(), clinic.ID, id, body.Available); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"available": body.Available,
	})
}

// Delete handles DELETE /api/clinic/doctors/{id}
func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clinic, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	if err := h.doctors.Remove(r.Context(), clinic.ID, id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListSpecialties handles GET /api/specialties
func (h *DoctorHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.doctors.Specialties(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"specialties": specialties,
		"count":       len(specialties),
	})
}

func (h *DoctorHandler) resolveClinic(w http.ResponseWriter, r *http.Request) (*entities.Clinic, bool) {
	session := middleware.SessionFromContext(r.Context())

	clinic, err := h.tenants.ClinicForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return nil, false
	}
	return clinic, true
}
