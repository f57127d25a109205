package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// HealthRecordAdapter implements the HealthRecordRepository interface.
// Reads go through sqlx struct scanning; the multi-table insert runs in
// a single transaction so a record never appears without its sub-rows.
type HealthRecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewHealthRecordAdapter creates a new health record adapter
func NewHealthRecordAdapter(client *postgres.Client) repositories.HealthRecordRepository {
	return &HealthRecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a record with its symptoms and medicines atomically
func (a *HealthRecordAdapter) Create(ctx context.Context, record *entities.HealthRecord) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query, args, err := a.db.Insert("health_records").Rows(goqu.Record{
		"id":          record.ID,
		"patient_id":  record.PatientID,
		"title":       record.Title,
		"description": record.Description,
		"record_date": record.RecordDate,
		"doctor_name": record.DoctorName,
		"clinic_name": record.ClinicName,
		"created_at":  record.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create health record", err)
	}

	for _, symptom := range record.Symptoms {
		query, args, err := a.db.Insert("health_record_symptoms").Rows(goqu.Record{
			"id":        symptom.ID,
			"record_id": record.ID,
			"name":      symptom.Name,
			"severity":  symptom.Severity,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create symptom", err)
		}
	}

	for _, medicine := range record.Medicines {
		query, args, err := a.db.Insert("health_record_medicines").Rows(goqu.Record{
			"id":        medicine.ID,
			"record_id": record.ID,
			"name":      medicine.Name,
			"dosage":    medicine.Dosage,
			"duration":  medicine.Duration,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create medicine", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}

	return nil
}

// ListByPatient retrieves a patient's timeline newest-first with
// symptoms and medicines attached. Sub-rows for all records come back
// in one query per table.
func (a *HealthRecordAdapter) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.HealthRecord, error) {
	ds := a.db.Select(
		"id", "patient_id", "title", "description", "record_date",
		"doctor_name", "clinic_name", "created_at",
	).From("health_records").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("record_date").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	var records []*entities.HealthRecord
	if err := a.client.DBX().SelectContext(ctx, &records, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list health records", err)
	}

	if len(records) == 0 {
		return records, nil
	}

	recordIDs := make([]string, 0, len(records))
	byID := make(map[string]*entities.HealthRecord, len(records))
	for _, record := range records {
		recordIDs = append(recordIDs, record.ID)
		byID[record.ID] = record
	}

	query, args, err = a.db.Select("id", "record_id", "name", "severity").
		From("health_record_symptoms").
		Where(goqu.Ex{"record_id": recordIDs}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var symptoms []entities.HealthSymptom
	if err := a.client.DBX().SelectContext(ctx, &symptoms, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list symptoms", err)
	}
	for _, symptom := range symptoms {
		if record, ok := byID[symptom.RecordID]; ok {
			record.Symptoms = append(record.Symptoms, symptom)
		}
	}

	query, args, err = a.db.Select("id", "record_id", "name", "dosage", "duration").
		From("health_record_medicines").
		Where(goqu.Ex{"record_id": recordIDs}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var medicines []entities.HealthMedicine
	if err := a.client.DBX().SelectContext(ctx, &medicines, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list medicines", err)
	}
	for _, medicine := range medicines {
		if record, ok := byID[medicine.RecordID]; ok {
			record.Medicines = append(record.Medicines, medicine)
		}
	}

	return records, nil
}
