package repositories

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by id
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// UpdateStatus transitions an appointment. Validity of the
	// transition is enforced by the service, not here.
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error

	// ListByPatient retrieves appointments for a patient
	ListByPatient(ctx context.Context, patientID string, filter AppointmentFilter) ([]*entities.Appointment, error)

	// ListByClinic retrieves appointments for a clinic
	ListByClinic(ctx context.Context, clinicID string, filter AppointmentFilter) ([]*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	Status entities.AppointmentStatus
	Limit  int
	Offset int
}
