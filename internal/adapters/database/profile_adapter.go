package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// ProfileAdapter implements the ProfileRepository interface
type ProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProfileAdapter creates a new profile adapter
func NewProfileAdapter(client *postgres.Client) repositories.ProfileRepository {
	return &ProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a profile; its id equals the owning user id
func (a *ProfileAdapter) Create(ctx context.Context, profile *entities.Profile) error {
	record := goqu.Record{
		"id":         profile.ID,
		"full_name":  profile.FullName,
		"phone":      profile.Phone,
		"address":    profile.Address,
		"created_at": profile.CreatedAt,
		"updated_at": profile.UpdatedAt,
	}

	query, args, err := a.db.Insert("profiles").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("profile already exists for this user")
		}
		return apperrors.NewInternalError("failed to create profile", err)
	}

	return nil
}

// GetByID retrieves a profile by ID
func (a *ProfileAdapter) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	query, args, err := a.db.Select(
		"id", "full_name", "phone", "address", "created_at", "updated_at",
	).From("profiles").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.Profile{}
	var phone, address sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.FullName,
		&phone,
		&address,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get profile", err)
	}

	profile.Phone = phone.String
	profile.Address = address.String

	return profile, nil
}

// GetByIDs retrieves profiles for a set of ids in a single query. An
// empty id set returns an empty result without touching the database.
func (a *ProfileAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Profile, error) {
	if len(ids) == 0 {
		return []*entities.Profile{}, nil
	}

	query, args, err := a.db.Select(
		"id", "full_name", "phone", "address", "created_at", "updated_at",
	).From("profiles").
		Where(goqu.Ex{"id": ids}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get profiles", err)
	}
	defer rows.Close()

	var profiles []*entities.Profile
	for rows.Next() {
		profile := &entities.Profile{}
		var phone, address sql.NullString

		err := rows.Scan(
			&profile.ID,
			&profile.FullName,
			&phone,
			&address,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan profile", err)
		}

		profile.Phone = phone.String
		profile.Address = address.String

		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating profiles", err)
	}

	return profiles, nil
}

// Update updates a profile
func (a *ProfileAdapter) Update(ctx context.Context, profile *entities.Profile) error {
	profile.UpdatedAt = time.Now()

	record := goqu.Record{
		"full_name":  profile.FullName,
		"phone":      profile.Phone,
		"address":    profile.Address,
		"updated_at": profile.UpdatedAt,
	}

	query, args, err := a.db.Update("profiles").
		Set(record).
		Where(goqu.Ex{"id": profile.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update profile", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("profile with id %s not found", profile.ID))
	}

	return nil
}
