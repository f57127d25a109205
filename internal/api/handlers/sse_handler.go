package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
)

// SSEHandler streams tenant events over Server-Sent Events so an open
// dashboard refreshes when one of its rows changes
type SSEHandler struct {
	eventBus providers.EventBus
	tenants  *services.TenantService
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus, tenants *services.TenantService) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		tenants:  tenants,
	}
}

// StreamClinicEvents handles GET /api/stream/clinic (clinic)
func (h *SSEHandler) StreamClinicEvents(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	clinic, err := h.tenants.ClinicForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.stream(w, r, providers.ClinicChannel(clinic.ID), clinic.ID)
}

// StreamPharmacyEvents handles GET /api/stream/pharmacy (pharmacy)
func (h *SSEHandler) StreamPharmacyEvents(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	pharmacy, err := h.tenants.PharmacyForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.stream(w, r, providers.PharmacyChannel(pharmacy.ID), pharmacy.ID)
}

// StreamPatientEvents handles GET /api/stream/patient (patient)
func (h *SSEHandler) StreamPatientEvents(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	h.stream(w, r, providers.PatientChannel(session.UserID), session.UserID)
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel, tenantID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("channel", channel).Msg("Failed to subscribe")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to events")
		return
	}

	h.sendEvent(w, "connected", map[string]interface{}{
		"tenant_id": tenantID,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

// sendEvent writes a single SSE frame
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
