package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

// HealthRecordHandler handles the patient health timeline
type HealthRecordHandler struct {
	records *services.HealthRecordService
}

// NewHealthRecordHandler creates a new health record handler
func NewHealthRecordHandler(records *services.HealthRecordService) *HealthRecordHandler {
	return &HealthRecordHandler{records: records}
}

// Add handles POST /api/health-records (patient)
func (h *HealthRecordHandler) Add(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var record entities.HealthRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record.PatientID = session.UserID

	if err := h.records.Add(r.Context(), &record); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, record)
}

// Timeline handles GET /api/health-records (patient)
func (h *HealthRecordHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.records.Timeline(r.Context(), session.UserID, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}
