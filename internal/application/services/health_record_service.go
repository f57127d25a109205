package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// HealthRecordService handles the patient health timeline
type HealthRecordService struct {
	repo repositories.HealthRecordRepository
}

// NewHealthRecordService creates a new health record service
func NewHealthRecordService(repo repositories.HealthRecordRepository) *HealthRecordService {
	return &HealthRecordService{repo: repo}
}

// Add appends an entry to the patient's timeline. Symptom and medicine
// sub-rows get ids here so the insert is a single atomic unit.
func (s *HealthRecordService) Add(ctx context.Context, record *entities.HealthRecord) error {
	if record.PatientID == "" {
		return apperrors.NewValidationError("patient id is required")
	}
	if record.Title == "" {
		return apperrors.NewValidationError("title is required")
	}
	if record.RecordDate == "" {
		return apperrors.NewValidationError("record date is required")
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	for i := range record.Symptoms {
		if record.Symptoms[i].ID == "" {
			record.Symptoms[i].ID = uuid.New().String()
		}
		record.Symptoms[i].RecordID = record.ID
	}
	for i := range record.Medicines {
		if record.Medicines[i].ID == "" {
			record.Medicines[i].ID = uuid.New().String()
		}
		record.Medicines[i].RecordID = record.ID
	}

	return s.repo.Create(ctx, record)
}

// Timeline returns the patient's records newest-first
func (s *HealthRecordService) Timeline(ctx context.Context, patientID string, limit int) ([]*entities.HealthRecord, error) {
	return s.repo.ListByPatient(ctx, patientID, limit)
}
