package repositories

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// StockRepository defines the interface for pharmacy stock operations.
// Create and Update return a CONFLICT error when (pharmacy_id,
// batch_number) would be duplicated.
type StockRepository interface {
	// Create inserts a new stock item
	Create(ctx context.Context, item *entities.StockItem) error

	// GetByID retrieves a stock item by id
	GetByID(ctx context.Context, id string) (*entities.StockItem, error)

	// Update updates a stock item
	Update(ctx context.Context, item *entities.StockItem) error

	// Delete removes a stock item
	Delete(ctx context.Context, id string) error

	// ListByPharmacy retrieves a pharmacy's stock ordered by medicine name
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]*entities.StockItem, error)
}

// DoctorRepository defines the interface for clinic doctor management
type DoctorRepository interface {
	// Create adds a doctor to a clinic
	Create(ctx context.Context, doctor *entities.Doctor) error

	// GetByID retrieves a doctor by id
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)

	// GetByIDs retrieves doctors for a deduplicated id set in one query
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Doctor, error)

	// Update updates a doctor
	Update(ctx context.Context, doctor *entities.Doctor) error

	// Delete removes a doctor
	Delete(ctx context.Context, id string) error

	// SetAvailable toggles booking availability
	SetAvailable(ctx context.Context, id string, available bool) error

	// ListByClinic retrieves a clinic's doctors ordered by name.
	// availableOnly restricts to doctors open for booking.
	ListByClinic(ctx context.Context, clinicID string, availableOnly bool) ([]*entities.Doctor, error)
}

// SpecialtyRepository defines the interface for the specialty reference table
type SpecialtyRepository interface {
	// List retrieves all specialties ordered by name
	List(ctx context.Context) ([]*entities.Specialty, error)

	// GetByIDs retrieves specialties for a deduplicated id set in one query
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Specialty, error)
}
