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

var doctorColumns = []interface{}{
	"id", "clinic_id", "name", "specialty_id", "qualification",
	"experience_years", "available", "created_at", "updated_at",
}

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create adds a doctor to a clinic
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	record := goqu.Record{
		"id":               doctor.ID,
		"clinic_id":        doctor.ClinicID,
		"name":             doctor.Name,
		"specialty_id":     doctor.SpecialtyID,
		"qualification":    doctor.Qualification,
		"experience_years": doctor.ExperienceYears,
		"available":        doctor.Available,
		"created_at":       doctor.CreatedAt,
		"updated_at":       doctor.UpdatedAt,
	}

	query, args, err := a.db.Insert("doctors").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create doctor", err)
	}

	return nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := a.scanDoctorRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}

	return doctor, nil
}

// GetByIDs retrieves doctors for a set of ids in a single query. An
// empty id set returns an empty result without touching the database.
func (a *DoctorAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Doctor, error) {
	if len(ids) == 0 {
		return []*entities.Doctor{}, nil
	}

	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(goqu.Ex{"id": ids}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryDoctors(ctx, query, args)
}

// Update updates a doctor
func (a *DoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	doctor.UpdatedAt = time.Now()

	record := goqu.Record{
		"name":             doctor.Name,
		"specialty_id":     doctor.SpecialtyID,
		"qualification":    doctor.Qualification,
		"experience_years": doctor.ExperienceYears,
		"available":        doctor.Available,
		"updated_at":       doctor.UpdatedAt,
	}

	query, args, err := a.db.Update("doctors").
		Set(record).
		Where(goqu.Ex{"id": doctor.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update doctor", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", doctor.ID))
	}

	return nil
}

// Delete removes a doctor
func (a *DoctorAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("doctors").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete doctor", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}

	return nil
}

// SetAvailable toggles booking availability
func (a *DoctorAdapter) SetAvailable(ctx context.Context, id string, available bool) error {
	query, args, err := a.db.Update("doctors").
		Set(goqu.Record{
			"available":  available,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update doctor", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}

	return nil
}

// ListByClinic retrieves a clinic's doctors ordered by name
func (a *DoctorAdapter) ListByClinic(ctx context.Context, clinicID string, availableOnly bool) ([]*entities.Doctor, error) {
	ds := a.db.Select(doctorColumns...).
		From("doctors").
		Where(goqu.Ex{"clinic_id": clinicID})

	if availableOnly {
		ds = ds.Where(goqu.Ex{"available": true})
	}

	ds = ds.Order(goqu.I("name").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryDoctors(ctx, query, args)
}

func (a *DoctorAdapter) queryDoctors(ctx context.Context, query string, args []interface{}) ([]*entities.Doctor, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		doctor, err := a.scanDoctorRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating doctors", err)
	}

	return doctors, nil
}

func (a *DoctorAdapter) scanDoctorRow(row rowScanner) (*entities.Doctor, error) {
	doctor := &entities.Doctor{}
	var specialtyID, qualification sql.NullString

	err := row.Scan(
		&doctor.ID,
		&doctor.ClinicID,
		&doctor.Name,
		&specialtyID,
		&qualification,
		&doctor.ExperienceYears,
		&doctor.Available,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if specialtyID.Valid {
		doctor.SpecialtyID = &specialtyID.String
	}
	doctor.Qualification = qualification.String

	return doctor, nil
}
