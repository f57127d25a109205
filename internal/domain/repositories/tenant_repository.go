package repositories

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// ProfileRepository defines the interface for patient profile operations
type ProfileRepository interface {
	// Create creates a profile; its id equals the owning user id
	Create(ctx context.Context, profile *entities.Profile) error

	// GetByID retrieves a profile by id
	GetByID(ctx context.Context, id string) (*entities.Profile, error)

	// GetByIDs retrieves profiles for a deduplicated id set in one query
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Profile, error)

	// Update updates a profile
	Update(ctx context.Context, profile *entities.Profile) error
}

// ClinicRepository defines the interface for clinic tenant profiles
type ClinicRepository interface {
	// Create creates a clinic profile
	Create(ctx context.Context, clinic *entities.Clinic) error

	// GetByID retrieves a clinic by id
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)

	// GetByIDs retrieves clinics for a deduplicated id set in one query
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Clinic, error)

	// GetByUserID resolves the clinic owned by an account. Seed rows
	// with a NULL user_id never match.
	GetByUserID(ctx context.Context, userID string) (*entities.Clinic, error)

	// List retrieves clinics ordered by name
	List(ctx context.Context, limit int) ([]*entities.Clinic, error)

	// SetVerified toggles the verified flag
	SetVerified(ctx context.Context, id string, verified bool) error
}

// PharmacyRepository defines the interface for pharmacy tenant profiles
type PharmacyRepository interface {
	// Create creates a pharmacy profile
	Create(ctx context.Context, pharmacy *entities.Pharmacy) error

	// GetByID retrieves a pharmacy by id
	GetByID(ctx context.Context, id string) (*entities.Pharmacy, error)

	// GetByIDs retrieves pharmacies for a deduplicated id set in one query
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Pharmacy, error)

	// GetByUserID resolves the pharmacy owned by an account. Seed rows
	// with a NULL user_id never match.
	GetByUserID(ctx context.Context, userID string) (*entities.Pharmacy, error)

	// List retrieves pharmacies ordered by name
	List(ctx context.Context, limit int) ([]*entities.Pharmacy, error)

	// SetVerified toggles the verified flag
	SetVerified(ctx context.Context, id string, verified bool) error
}
