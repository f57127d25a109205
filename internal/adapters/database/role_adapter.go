package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// RoleAdapter implements the RoleRepository interface
type RoleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRoleAdapter creates a new role adapter
func NewRoleAdapter(client *postgres.Client) repositories.RoleRepository {
	return &RoleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create records a role assignment for a user
func (a *RoleAdapter) Create(ctx context.Context, assignment *entities.RoleAssignment) error {
	record := goqu.Record{
		"user_id": assignment.UserID,
		"role":    assignment.Role,
	}

	query, args, err := a.db.Insert("user_roles").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("user already has a role assigned")
		}
		return apperrors.NewInternalError("failed to create role assignment", err)
	}

	return nil
}

// GetByUserID retrieves the role assignment for a user. A missing row is
// a NOT_FOUND error so callers can tell "no role" apart from a failed
// query.
func (a *RoleAdapter) GetByUserID(ctx context.Context, userID string) (*entities.RoleAssignment, error) {
	query, args, err := a.db.Select("user_id", "role").
		From("user_roles").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assignment := &entities.RoleAssignment{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&assignment.UserID,
		&assignment.Role,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no role assigned to user %s", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get role assignment", err)
	}

	return assignment, nil
}
