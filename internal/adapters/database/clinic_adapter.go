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

var clinicColumns = []interface{}{
	"id", "user_id", "clinic_name", "address", "phone", "email",
	"verified", "created_at", "updated_at",
}

// ClinicAdapter implements the ClinicRepository interface
type ClinicAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClinicAdapter creates a new clinic adapter
func NewClinicAdapter(client *postgres.Client) repositories.ClinicRepository {
	return &ClinicAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a clinic profile
func (a *ClinicAdapter) Create(ctx context.Context, clinic *entities.Clinic) error {
	record := goqu.Record{
		"id":          clinic.ID,
		"user_id":     clinic.UserID,
		"clinic_name": clinic.ClinicName,
		"address":     clinic.Address,
		"phone":       clinic.Phone,
		"email":       clinic.Email,
		"verified":    clinic.Verified,
		"created_at":  clinic.CreatedAt,
		"updated_at":  clinic.UpdatedAt,
	}

	query, args, err := a.db.Insert("clinics").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("clinic already exists for this user")
		}
		return apperrors.NewInternalError("failed to create clinic", err)
	}

	return nil
}

// GetByID retrieves a clinic by ID
func (a *ClinicAdapter) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	query, args, err := a.db.Select(clinicColumns...).
		From("clinics").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	clinic, err := a.scanClinicRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinic", err)
	}

	return clinic, nil
}

// GetByIDs retrieves clinics for a set of ids in a single query. An
// empty id set returns an empty result without touching the database.
func (a *ClinicAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Clinic, error) {
	if len(ids) == 0 {
		return []*entities.Clinic{}, nil
	}

	query, args, err := a.db.Select(clinicColumns...).
		From("clinics").
		Where(goqu.Ex{"id": ids}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryClinics(ctx, query, args)
}

// GetByUserID resolves the clinic owned by an account. Seed rows carry a
// NULL user_id and can never match here.
func (a *ClinicAdapter) GetByUserID(ctx context.Context, userID string) (*entities.Clinic, error) {
	query, args, err := a.db.Select(clinicColumns...).
		From("clinics").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	clinic, err := a.scanClinicRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no clinic owned by user %s", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinic", err)
	}

	return clinic, nil
}

// List retrieves clinics ordered by name
func (a *ClinicAdapter) List(ctx context.Context, limit int) ([]*entities.Clinic, error) {
	ds := a.db.Select(clinicColumns...).
		From("clinics").
		Order(goqu.I("clinic_name").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryClinics(ctx, query, args)
}

// SetVerified toggles the verified flag. Seed rows have no owning user
// and keep their imported verification state.
func (a *ClinicAdapter) SetVerified(ctx context.Context, id string, verified bool) error {
	query, args, err := a.db.Update("clinics").
		Set(goqu.Record{
			"verified":   verified,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}, goqu.C("user_id").IsNotNull()).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update clinic", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
	}

	return nil
}

func (a *ClinicAdapter) queryClinics(ctx context.Context, query string, args []interface{}) ([]*entities.Clinic, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list clinics", err)
	}
	defer rows.Close()

	var clinics []*entities.Clinic
	for rows.Next() {
		clinic, err := a.scanClinicRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan clinic", err)
		}
		clinics = append(clinics, clinic)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating clinics", err)
	}

	return clinics, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *ClinicAdapter) scanClinicRow(row rowScanner) (*entities.Clinic, error) {
	clinic := &entities.Clinic{}
	var userID, address, phone, email sql.NullString

	err := row.Scan(
		&clinic.ID,
		&userID,
		&clinic.ClinicName,
		&address,
		&phone,
		&email,
		&clinic.Verified,
		&clinic.CreatedAt,
		&clinic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		clinic.UserID = &userID.String
	}
	clinic.Address = address.String
	clinic.Phone = phone.String
	clinic.Email = email.String

	return clinic, nil
}
