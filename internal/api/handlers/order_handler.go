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

// OrderHandler handles medicine order HTTP requests
type OrderHandler struct {
	orders  *services.OrderService
	tenants *services.TenantService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService, tenants *services.TenantService) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		tenants: tenants,
	}
}

// Place handles POST /api/orders (patient)
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var order entities.MedicineOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order.PatientID = session.UserID

	if err := h.orders.Place(r.Context(), &order); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, order)
}

// ListMine handles GET /api/orders (patient)
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	filter := repositories.OrderFilter{
		Status: entities.OrderStatus(r.URL.Query().Get("status")),
	}

	views, err := h.orders.ListForPatient(r.Context(), session.UserID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orders": views,
		"count":  len(views),
	})
}

// CancelMine handles POST /api/orders/{id}/cancel (patient)
func (h *OrderHandler) CancelMine(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "order ID is required")
		return
	}

	err := h.orders.UpdateStatus(r.Context(), id, entities.OrderStatusCancelled, statemachine.ActorPatient, session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(entities.OrderStatusCancelled),
	})
}

// ListForPharmacy handles GET /api/pharmacy/orders (pharmacy)
func (h *OrderHandler) ListForPharmacy(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	pharmacy, err := h.tenants.PharmacyForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	filter := repositories.OrderFilter{
		Status: entities.OrderStatus(r.URL.Query().Get("status")),
	}

	views, err := h.orders.ListForPharmacy(r.Context(), pharmacy.ID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orders": views,
		"count":  len(views),
	})
}

// PendingForPharmacy handles GET /api/pharmacy/orders/pending (pharmacy).
// The response splits urgent from regular pending orders; an order
// appears in exactly one bucket.
func (h *OrderHandler) PendingForPharmacy(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	pharmacy, err := h.tenants.PharmacyForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	urgent, regular, err := h.orders.PendingForPharmacy(r.Context(), pharmacy.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"urgent":  urgent,
		"pending": regular,
	})
}

// UpdateStatus handles PATCH /api/pharmacy/orders/{id} (pharmacy)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "order ID is required")
		return
	}

	var body struct {
		Status entities.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pharmacy, err := h.tenants.PharmacyForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	err = h.orders.UpdateStatus(r.Context(), id, body.Status, statemachine.ActorPharmacy, pharmacy.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(body.Status),
	})
}
