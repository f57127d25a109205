package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/domain/statemachine"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// AppointmentService handles appointment booking and lifecycle
type AppointmentService struct {
	repo       repositories.AppointmentRepository
	clinicRepo repositories.ClinicRepository
	doctorRepo repositories.DoctorRepository
	machine    *statemachine.Machine
	reconciler *ReconcilerService
	bus        providers.EventBus
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	clinicRepo repositories.ClinicRepository,
	doctorRepo repositories.DoctorRepository,
	reconciler *ReconcilerService,
	bus providers.EventBus,
) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		clinicRepo: clinicRepo,
		doctorRepo: doctorRepo,
		machine:    statemachine.Appointments(),
		reconciler: reconciler,
		bus:        bus,
	}
}

// Book creates a pending appointment for a patient at a clinic
func (s *AppointmentService) Book(ctx context.Context, appointment *entities.Appointment) error {
	if appointment.PatientID == "" {
		return apperrors.NewValidationError("patient id is required")
	}
	if appointment.AppointmentDate == "" || appointment.AppointmentTime == "" {
		return apperrors.NewValidationError("appointment date and time are required")
	}

	if _, err := s.clinicRepo.GetByID(ctx, appointment.ClinicID); err != nil {
		return err
	}

	if appointment.DoctorID != nil {
		doctor, err := s.doctorRepo.GetByID(ctx, *appointment.DoctorID)
		if err != nil {
			return err
		}
		if doctor.ClinicID != appointment.ClinicID {
			return apperrors.NewValidationError("doctor does not belong to this clinic")
		}
		if !doctor.Available {
			return apperrors.NewValidationError("doctor is not accepting appointments")
		}
	}

	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	appointment.Status = entities.AppointmentStatusPending
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	if err := s.repo.Create(ctx, appointment); err != nil {
		return err
	}

	s.publishStatusChange(ctx, appointment, "", appointment.Status)
	return nil
}

// UpdateStatus transitions an appointment on behalf of an actor. The
// transition table decides what each actor may do from each status;
// anything else is rejected before touching the row.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, to entities.AppointmentStatus, actor statemachine.Actor, actorTenantID string) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if actor == statemachine.ActorClinic && appointment.ClinicID != actorTenantID {
		return apperrors.NewForbiddenError("appointment belongs to another clinic")
	}
	if actor == statemachine.ActorPatient && appointment.PatientID != actorTenantID {
		return apperrors.NewForbiddenError("appointment belongs to another patient")
	}

	from := appointment.Status
	if err := s.machine.CanTransition(string(from), string(to), actor); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}

	appointment.Status = to
	s.publishStatusChange(ctx, appointment, from, to)
	return nil
}

// ListForClinic returns a clinic's appointments with patient and doctor
// display fields attached
func (s *AppointmentService) ListForClinic(ctx context.Context, clinicID string, filter repositories.AppointmentFilter) ([]*entities.AppointmentView, error) {
	appointments, err := s.repo.ListByClinic(ctx, clinicID, filter)
	if err != nil {
		return nil, err
	}
	return s.reconciler.AppointmentViews(ctx, appointments)
}

// ListForPatient returns a patient's appointments with clinic and
// doctor display fields attached
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string, filter repositories.AppointmentFilter) ([]*entities.AppointmentView, error) {
	appointments, err := s.repo.ListByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, err
	}
	return s.reconciler.PatientAppointmentViews(ctx, appointments)
}

func (s *AppointmentService) publishStatusChange(ctx context.Context, appointment *entities.Appointment, from, to entities.AppointmentStatus) {
	if s.bus == nil {
		return
	}

	event := &entities.TenantEvent{
		ID:         uuid.New().String(),
		Type:       entities.EventAppointmentStatusChanged,
		EntityID:   appointment.ID,
		FromStatus: string(from),
		ToStatus:   string(to),
		OccurredAt: time.Now(),
	}

	logger := observability.LoggerFromContext(ctx)
	for _, target := range []struct {
		tenantID string
		channel  string
	}{
		{appointment.ClinicID, providers.ClinicChannel(appointment.ClinicID)},
		{appointment.PatientID, providers.PatientChannel(appointment.PatientID)},
	} {
		event.TenantID = target.tenantID
		if err := s.bus.Publish(ctx, target.channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", target.channel).Msg("Failed to publish appointment event")
		}
	}
}
