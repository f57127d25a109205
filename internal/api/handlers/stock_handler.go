package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

// StockHandler handles pharmacy stock HTTP requests
type StockHandler struct {
	stock   *services.StockService
	tenants *services.TenantService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stock *services.StockService, tenants *services.TenantService) *StockHandler {
	return &StockHandler{
		stock:   stock,
		tenants: tenants,
	}
}

// List handles GET /api/pharmacy/stock
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	pharmacy, ok := h.resolvePharmacy(w, r)
	if !ok {
		return
	}

	summary, err := h.stock.ListForPharmacy(r.Context(), pharmacy.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// LowStock handles GET /api/pharmacy/stock/low
func (h *StockHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	pharmacy, ok := h.resolvePharmacy(w, r)
	if !ok {
		return
	}

	items, err := h.stock.LowStockForPharmacy(r.Context(), pharmacy.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// Expiring handles GET /api/pharmacy/stock/expiring
func (h *StockHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	pharmacy, ok := h.resolvePharmacy(w, r)
	if !ok {
		return
	}

	items, err := h.stock.ExpiringForPharmacy(r.Context(), pharmacy.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// Add handles POST /api/pharmacy/stock
func (h *StockHandler) Add(w http.ResponseWriter, r *http.Request) {
	pharmacy, ok := h.resolvePharmacy(w, r)
	if !ok {
		return
	}

	var item entities.StockItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item.PharmacyID = pharmacy.ID

	if err := h.stock.Add(r.Context(), &item); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/pharmacy/stock/{id}
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	pharmacy, ok := h.resolvePharmacy(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "stock item ID is required")
		return
	}

	var item entities.StockItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item.ID = id
	item.PharmacyID = pharmacy.ID

	if err := h.stock.Update(r.Context(), pharmacy.ID, &item); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/pharmacy/stock/{id}
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pharmacy, ok := h.resolvePharmacy(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "stock item ID is required")
		return
	}

	if err := h.stock.Remove(r.Context(), pharmacy.ID, id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *StockHandler) resolvePharmacy(w http.ResponseWriter, r *http.Request) (*entities.Pharmacy, bool) {
	session := middleware.SessionFromContext(r.Context())

	pharmacy, err := h.tenants.PharmacyForUser(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return nil, false
	}
	return pharmacy, true
}
