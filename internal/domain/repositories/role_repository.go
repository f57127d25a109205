package repositories

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// RoleRepository defines the interface for role-assignment lookups.
// Role rows are created at registration time and read-only afterwards.
type RoleRepository interface {
	// Create records a role assignment for a user
	Create(ctx context.Context, assignment *entities.RoleAssignment) error

	// GetByUserID retrieves the role assignment for a user. Returns a
	// NOT_FOUND error when no row exists, which is distinct from a
	// query failure.
	GetByUserID(ctx context.Context, userID string) (*entities.RoleAssignment, error)
}

// UserRepository defines the interface for account credentials
type UserRepository interface {
	// Create creates a new user account
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}
