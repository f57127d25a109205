package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/domain/statemachine"
)

// AppointmentHandler handles appointment HTTP requests
type AppointmentHandler struct {
	appointments *services.AppointmentService
	tenants      *services.TenantService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointments *services.AppointmentService, tenants *services.TenantService) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		tenants:      tenants,
	}
}

// Book handles POST /api/appointments (patient)
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var appointment entities.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The caller books for themselves, whatever the body says
	appointment.PatientID = session.UserID

	if err := h.appointments.Book(r.Context(), &appointment); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// ListMine handles GET /api/appointments (patient)
func (h *AppointmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	filter := repositories.AppointmentFilter{
		Status: entities.AppointmentStatus(r.URL.Query().Get("status")),
	}

	views, err := h.appointments.ListForPatient(r.Context(), session.UserID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": views,
		"count":        len(views),
	})
}

// ListForClinic handles GET /api/clinic/appointments (clinic)
func (h *AppointmentHandler) ListForClinic(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	clinic, err := h.tenants.ClinicForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	filter := repositories.AppointmentFilter{
		Status: entities.AppointmentStatus(r.URL.Query().Get("status")),
	}

	views, err := h.appointments.ListForClinic(r.Context(), clinic.ID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": views,
		"count":        len(views),
	})
}

// UpdateStatus handles PATCH /api/clinic/appointments/{id} (clinic)
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var body struct {
		Status entities.AppointmentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clinic, err := h.tenants.ClinicForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	err = h.appointments.UpdateStatus(r.Context(), id, body.Status, statemachine.ActorClinic, clinic.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(body.Status),
	})
}
