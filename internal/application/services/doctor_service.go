package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// DoctorService handles clinic doctor management
type DoctorService struct {
	repo          repositories.DoctorRepository
	specialtyRepo repositories.SpecialtyRepository
	reconciler    *ReconcilerService
}

// NewDoctorService creates a new doctor service
func NewDoctorService(repo repositories.DoctorRepository, specialtyRepo repositories.SpecialtyRepository, reconciler *ReconcilerService) *DoctorService {
	return &DoctorService{
		repo:          repo,
		specialtyRepo: specialtyRepo,
		reconciler:    reconciler,
	}
}

// Add registers a doctor under a clinic
func (s *DoctorService) Add(ctx context.Context, doctor *entities.Doctor) error {
	if doctor.ClinicID == "" {
		return apperrors.NewValidationError("clinic id is required")
	}
	if doctor.Name == "" {
		return apperrors.NewValidationError("doctor name is required")
	}
	if doctor.ExperienceYears < 0 {
		return apperrors.NewValidationError("experience years cannot be negative")
	}

	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	doctor.Available = true
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	return s.repo.Create(ctx, doctor)
}

// Update updates a doctor owned by the clinic
func (s *DoctorService) Update(ctx context.Context, clinicID string, doctor *entities.Doctor) error {
	existing, err := s.repo.GetByID(ctx, doctor.ID)
	if err != nil {
		return err
	}
	if existing.ClinicID != clinicID {
		return apperrors.NewForbiddenError("doctor belongs to another clinic")
	}

	doctor.ClinicID = existing.ClinicID
	return s.repo.Update(ctx, doctor)
}

// Remove deletes a doctor owned by the clinic
func (s *DoctorService) Remove(ctx context.Context, clinicID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.ClinicID != clinicID {
		return apperrors.NewForbiddenError("doctor belongs to another clinic")
	}

	return s.repo.Delete(ctx, id)
}

// SetAvailable toggles whether a doctor accepts bookings
func (s *DoctorService) SetAvailable(ctx context.Context, clinicID, id string, available bool) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.ClinicID != clinicID {
		return apperrors.NewForbiddenError("doctor belongs to another clinic")
	}

	return s.repo.SetAvailable(ctx, id, available)
}

// ListForClinic returns a clinic's doctors with specialty names.
// availableOnly restricts to doctors open for booking, which is what
// patients browsing the clinic see.
func (s *DoctorService) ListForClinic(ctx context.Context, clinicID string, availableOnly bool) ([]*entities.DoctorView, error) {
	doctors, err := s.repo.ListByClinic(ctx, clinicID, availableOnly)
	if err != nil {
		return nil, err
	}
	return s.reconciler.DoctorViews(ctx, doctors)
}

// Specialties returns the specialty reference list
func (s *DoctorService) Specialties(ctx context.Context) ([]*entities.Specialty, error) {
	return s.specialtyRepo.List(ctx)
}
