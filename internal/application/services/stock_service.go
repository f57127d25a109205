package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// StockService handles pharmacy stock management
type StockService struct {
	repo repositories.StockRepository
	bus  providers.EventBus
}

// NewStockService creates a new stock service
func NewStockService(repo repositories.StockRepository, bus providers.EventBus) *StockService {
	return &StockService{
		repo: repo,
		bus:  bus,
	}
}

// Add inserts a new stock batch for a pharmacy
func (s *StockService) Add(ctx context.Context, item *entities.StockItem) error {
	if err := validateStockItem(item); err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}

	s.publishStockChange(ctx, item)
	return nil
}

// Update updates a stock batch. Only the owning pharmacy may touch it.
func (s *StockService) Update(ctx context.Context, pharmacyID string, item *entities.StockItem) error {
	if err := validateStockItem(item); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		return err
	}
	if existing.PharmacyID != pharmacyID {
		return apperrors.NewForbiddenError("stock item belongs to another pharmacy")
	}

	item.PharmacyID = existing.PharmacyID
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}

	s.publishStockChange(ctx, item)
	return nil
}

// Remove deletes a stock batch owned by the pharmacy
func (s *StockService) Remove(ctx context.Context, pharmacyID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.PharmacyID != pharmacyID {
		return apperrors.NewForbiddenError("stock item belongs to another pharmacy")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishStockChange(ctx, existing)
	return nil
}

// StockSummary aggregates a pharmacy's stock for its dashboard
type StockSummary struct {
	Items        []*entities.StockItem `json:"items"`
	TotalItems   int                   `json:"total_items"`
	TotalValue   float64               `json:"total_value"`
	LowStock     int                   `json:"low_stock"`
	ExpiringSoon int                   `json:"expiring_soon"`
}

// expiryHorizonDays is the window for the expiring-stock view
const expiryHorizonDays = 30

// ListForPharmacy returns the pharmacy's stock with aggregate values
// computed from the stored rows
func (s *StockService) ListForPharmacy(ctx context.Context, pharmacyID string) (*StockSummary, error) {
	items, err := s.repo.ListByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{
		Items:      items,
		TotalItems: len(items),
	}
	for _, item := range items {
		summary.TotalValue += item.StockValue()
		if item.LowStock() {
			summary.LowStock++
		}
		if item.ExpiresWithin(expiryHorizonDays) {
			summary.ExpiringSoon++
		}
	}

	return summary, nil
}

// LowStockForPharmacy returns batches at or below their reorder threshold
func (s *StockService) LowStockForPharmacy(ctx context.Context, pharmacyID string) ([]*entities.StockItem, error) {
	items, err := s.repo.ListByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}

	low := make([]*entities.StockItem, 0)
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

// ExpiringForPharmacy returns batches expiring within the horizon,
// including batches already past their expiry date
func (s *StockService) ExpiringForPharmacy(ctx context.Context, pharmacyID string) ([]*entities.StockItem, error) {
	items, err := s.repo.ListByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}

	expiring := make([]*entities.StockItem, 0)
	for _, item := range items {
		if item.ExpiresWithin(expiryHorizonDays) {
			expiring = append(expiring, item)
		}
	}
	return expiring, nil
}

func validateStockItem(item *entities.StockItem) error {
	if item.PharmacyID == "" {
		return apperrors.NewValidationError("pharmacy id is required")
	}
	if item.MedicineName == "" {
		return apperrors.NewValidationError("medicine name is required")
	}
	if item.BatchNumber == "" {
		return apperrors.NewValidationError("batch number is required")
	}
	if item.Quantity < 0 {
		return apperrors.NewValidationError("quantity cannot be negative")
	}
	if item.SellingPrice < 0 || item.PurchasePrice < 0 {
		return apperrors.NewValidationError("prices cannot be negative")
	}
	return nil
}

func (s *StockService) publishStockChange(ctx context.Context, item *entities.StockItem) {
	if s.bus == nil {
		return
	}

	event := &entities.TenantEvent{
		ID:         uuid.New().String(),
		Type:       entities.EventStockChanged,
		TenantID:   item.PharmacyID,
		EntityID:   item.ID,
		OccurredAt: time.Now(),
	}

	if err := s.bus.Publish(ctx, providers.PharmacyChannel(item.PharmacyID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to publish stock event")
	}
}
