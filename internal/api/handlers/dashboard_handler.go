package handlers

import (
	"net/http"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
)

// DashboardHandler serves the per-role dashboards
type DashboardHandler struct {
	dashboards *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// ClinicDashboard handles GET /api/dashboard/clinic
func (h *DashboardHandler) ClinicDashboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	dashboard, err := h.dashboards.ForClinic(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

// PharmacyDashboard handles GET /api/dashboard/pharmacy
func (h *DashboardHandler) PharmacyDashboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	dashboard, err := h.dashboards.ForPharmacy(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

// PatientDashboard handles GET /api/dashboard/patient
func (h *DashboardHandler) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	dashboard, err := h.dashboards.ForPatient(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}
