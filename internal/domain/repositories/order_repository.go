package repositories

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// OrderRepository defines the interface for medicine-order data operations
type OrderRepository interface {
	// Create creates a new order
	Create(ctx context.Context, order *entities.MedicineOrder) error

	// GetByID retrieves an order by id
	GetByID(ctx context.Context, id string) (*entities.MedicineOrder, error)

	// UpdateStatus transitions an order. Transition validity is
	// enforced by the service.
	UpdateStatus(ctx context.Context, id string, status entities.OrderStatus) error

	// ListByPatient retrieves a patient's orders, newest first
	ListByPatient(ctx context.Context, patientID string, filter OrderFilter) ([]*entities.MedicineOrder, error)

	// ListByPharmacy retrieves a pharmacy's orders, newest first
	ListByPharmacy(ctx context.Context, pharmacyID string, filter OrderFilter) ([]*entities.MedicineOrder, error)
}

// OrderFilter defines filters for listing orders
type OrderFilter struct {
	Status entities.OrderStatus
	Limit  int
	Offset int
}
