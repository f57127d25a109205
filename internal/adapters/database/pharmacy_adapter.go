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

var pharmacyColumns = []interface{}{
	"id", "user_id", "pharmacy_name", "address", "phone", "email",
	"verified", "created_at", "updated_at",
}

// PharmacyAdapter implements the PharmacyRepository interface
type PharmacyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPharmacyAdapter creates a new pharmacy adapter
func NewPharmacyAdapter(client *postgres.Client) repositories.PharmacyRepository {
	return &PharmacyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a pharmacy profile
func (a *PharmacyAdapter) Create(ctx context.Context, pharmacy *entities.Pharmacy) error {
	record := goqu.Record{
		"id":            pharmacy.ID,
		"user_id":       pharmacy.UserID,
		"pharmacy_name": pharmacy.PharmacyName,
		"address":       pharmacy.Address,
		"phone":         pharmacy.Phone,
		"email":         pharmacy.Email,
		"verified":      pharmacy.Verified,
		"created_at":    pharmacy.CreatedAt,
		"updated_at":    pharmacy.UpdatedAt,
	}

	query, args, err := a.db.Insert("pharmacies").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("pharmacy already exists for this user")
		}
		return apperrors.NewInternalError("failed to create pharmacy", err)
	}

	return nil
}

// GetByID retrieves a pharmacy by ID
func (a *PharmacyAdapter) GetByID(ctx context.Context, id string) (*entities.Pharmacy, error) {
	query, args, err := a.db.Select(pharmacyColumns...).
		From("pharmacies").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pharmacy, err := a.scanPharmacyRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("pharmacy with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get pharmacy", err)
	}

	return pharmacy, nil
}

// GetByIDs retrieves pharmacies for a set of ids in a single query. An
// empty id set returns an empty result without touching the database.
func (a *PharmacyAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Pharmacy, error) {
	if len(ids) == 0 {
		return []*entities.Pharmacy{}, nil
	}

	query, args, err := a.db.Select(pharmacyColumns...).
		From("pharmacies").
		Where(goqu.Ex{"id": ids}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryPharmacies(ctx, query, args)
}

// GetByUserID resolves the pharmacy owned by an account. Seed rows carry
// a NULL user_id and can never match here.
func (a *PharmacyAdapter) GetByUserID(ctx context.Context, userID string) (*entities.Pharmacy, error) {
	query, args, err := a.db.Select(pharmacyColumns...).
		From("pharmacies").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pharmacy, err := a.scanPharmacyRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no pharmacy owned by user %s", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get pharmacy", err)
	}

	return pharmacy, nil
}

// List retrieves pharmacies ordered by name
func (a *PharmacyAdapter) List(ctx context.Context, limit int) ([]*entities.Pharmacy, error) {
	ds := a.db.Select(pharmacyColumns...).
		From("pharmacies").
		Order(goqu.I("pharmacy_name").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryPharmacies(ctx, query, args)
}

// SetVerified toggles the verified flag. Seed rows have no owning user
// and keep their imported verification state.
func (a *PharmacyAdapter) SetVerified(ctx context.Context, id string, verified bool) error {
	query, args, err := a.db.Update("pharmacies").
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
		return apperrors.NewInternalError("failed to update pharmacy", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("pharmacy with id %s not found", id))
	}

	return nil
}

func (a *PharmacyAdapter) queryPharmacies(ctx context.Context, query string, args []interface{}) ([]*entities.Pharmacy, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list pharmacies", err)
	}
	defer rows.Close()

	var pharmacies []*entities.Pharmacy
	for rows.Next() {
		pharmacy, err := a.scanPharmacyRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan pharmacy", err)
		}
		pharmacies = append(pharmacies, pharmacy)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating pharmacies", err)
	}

	return pharmacies, nil
}

func (a *PharmacyAdapter) scanPharmacyRow(row rowScanner) (*entities.Pharmacy, error) {
	pharmacy := &entities.Pharmacy{}
	var userID, address, phone, email sql.NullString

	err := row.Scan(
		&pharmacy.ID,
		&userID,
		&pharmacy.PharmacyName,
		&address,
		&phone,
		&email,
		&pharmacy.Verified,
		&pharmacy.CreatedAt,
		&pharmacy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		pharmacy.UserID = &userID.String
	}
	pharmacy.Address = address.String
	pharmacy.Phone = phone.String
	pharmacy.Email = email.String

	return pharmacy, nil
}
