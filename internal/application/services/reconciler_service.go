package services

import (
	"context"

	"github.com/kllinic/marketplace/internal/application/loaders"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
)

// ReconcilerService attaches display fields from referenced tables onto
// primary rows. There are no SQL joins here: each referenced table is
// read once per batch through its loader, with the id set deduplicated,
// and a missing reference yields a sentinel display value instead of
// dropping the row.
type ReconcilerService struct {
	loaders *loaders.Loaders
}

// NewReconcilerService creates a new reconciler service
func NewReconcilerService(l *loaders.Loaders) *ReconcilerService {
	return &ReconcilerService{loaders: l}
}

// AppointmentViews attaches patient, doctor and specialty display
// fields to a clinic's appointment list
func (r *ReconcilerService) AppointmentViews(ctx context.Context, appointments []*entities.Appointment) ([]*entities.AppointmentView, error) {
	views := make([]*entities.AppointmentView, len(appointments))
	if len(appointments) == 0 {
		return views, nil
	}

	profileThunks := make(map[string]func() (*entities.Profile, error))
	doctorThunks := make(map[string]func() (*entities.Doctor, error))

	for _, appointment := range appointments {
		if _, ok := profileThunks[appointment.PatientID]; !ok {
			profileThunks[appointment.PatientID] = r.loaders.ProfileLoader.Load(ctx, appointment.PatientID)
		}
		if appointment.DoctorID != nil {
			if _, ok := doctorThunks[*appointment.DoctorID]; !ok {
				doctorThunks[*appointment.DoctorID] = r.loaders.DoctorLoader.Load(ctx, *appointment.DoctorID)
			}
		}
	}

	doctors := make(map[string]*entities.Doctor)
	specialtyThunks := make(map[string]func() (*entities.Specialty, error))
	for id, thunk := range doctorThunks {
		doctor, err := thunk()
		if err != nil {
			return nil, err
		}
		doctors[id] = doctor
		if doctor != nil && doctor.SpecialtyID != nil {
			if _, ok := specialtyThunks[*doctor.SpecialtyID]; !ok {
				specialtyThunks[*doctor.SpecialtyID] = r.loaders.SpecialtyLoader.Load(ctx, *doctor.SpecialtyID)
			}
		}
	}

	specialties := make(map[string]*entities.Specialty)
	for id, thunk := range specialtyThunks {
		specialty, err := thunk()
		if err != nil {
			return nil, err
		}
		specialties[id] = specialty
	}

	logger := observability.LoggerFromContext(ctx)

	for i, appointment := range appointments {
		view := &entities.AppointmentView{Appointment: *appointment}

		profile, err := profileThunks[appointment.PatientID]()
		if err != nil {
			return nil, err
		}
		if profile != nil {
			view.PatientName = profile.FullName
		} else {
			logger.Debug().Str("patient_id", appointment.PatientID).Msg("Patient profile missing, substituting sentinel")
			view.PatientName = entities.UnknownPatientName
		}

		if appointment.DoctorID != nil {
			if doctor := doctors[*appointment.DoctorID]; doctor != nil {
				view.DoctorName = doctor.Name
				if doctor.SpecialtyID != nil {
					if specialty := specialties[*doctor.SpecialtyID]; specialty != nil {
						view.Specialty = specialty.Name
					}
				}
			} else {
				view.DoctorName = entities.UnknownDoctorName
			}
		}

		views[i] = view
	}

	return views, nil
}

// PatientAppointmentViews attaches clinic and doctor display fields to
// a patient's appointment list
func (r *ReconcilerService) PatientAppointmentViews(ctx context.Context, appointments []*entities.Appointment) ([]*entities.AppointmentView, error) {
	views := make([]*entities.AppointmentView, len(appointments))
	if len(appointments) == 0 {
		return views, nil
	}

	clinicThunks := make(map[string]func() (*entities.Clinic, error))
	doctorThunks := make(map[string]func() (*entities.Doctor, error))

	for _, appointment := range appointments {
		if _, ok := clinicThunks[appointment.ClinicID]; !ok {
			clinicThunks[appointment.ClinicID] = r.loaders.ClinicLoader.Load(ctx, appointment.ClinicID)
		}
		if appointment.DoctorID != nil {
			if _, ok := doctorThunks[*appointment.DoctorID]; !ok {
				doctorThunks[*appointment.DoctorID] = r.loaders.DoctorLoader.Load(ctx, *appointment.DoctorID)
			}
		}
	}

	for i, appointment := range appointments {
		view := &entities.AppointmentView{Appointment: *appointment}

		clinic, err := clinicThunks[appointment.ClinicID]()
		if err != nil {
			return nil, err
		}
		if clinic != nil {
			view.ClinicName = clinic.ClinicName
		} else {
			view.ClinicName = entities.UnknownClinicName
		}

		if appointment.DoctorID != nil {
			doctor, err := doctorThunks[*appointment.DoctorID]()
			if err != nil {
				return nil, err
			}
			if doctor != nil {
				view.DoctorName = doctor.Name
			} else {
				view.DoctorName = entities.UnknownDoctorName
			}
		}

		views[i] = view
	}

	return views, nil
}

// OrderViews attaches patient display fields to a pharmacy's order list
func (r *ReconcilerService) OrderViews(ctx context.Context, orders []*entities.MedicineOrder) ([]*entities.OrderView, error) {
	views := make([]*entities.OrderView, len(orders))
	if len(orders) == 0 {
		return views, nil
	}

	profileThunks := make(map[string]func() (*entities.Profile, error))
	for _, order := range orders {
		if _, ok := profileThunks[order.PatientID]; !ok {
			profileThunks[order.PatientID] = r.loaders.ProfileLoader.Load(ctx, order.PatientID)
		}
	}

	logger := observability.LoggerFromContext(ctx)

	for i, order := range orders {
		view := &entities.OrderView{MedicineOrder: *order}

		profile, err := profileThunks[order.PatientID]()
		if err != nil {
			return nil, err
		}
		if profile != nil {
			view.PatientName = profile.FullName
		} else {
			logger.Debug().Str("patient_id", order.PatientID).Msg("Patient profile missing, substituting sentinel")
			view.PatientName = entities.UnknownPatientName
		}

		views[i] = view
	}

	return views, nil
}

// PatientOrderViews attaches pharmacy display fields to a patient's
// order list
func (r *ReconcilerService) PatientOrderViews(ctx context.Context, orders []*entities.MedicineOrder) ([]*entities.OrderView, error) {
	views := make([]*entities.OrderView, len(orders))
	if len(orders) == 0 {
		return views, nil
	}

	pharmacyThunks := make(map[string]func() (*entities.Pharmacy, error))
	for _, order := range orders {
		if _, ok := pharmacyThunks[order.PharmacyID]; !ok {
			pharmacyThunks[order.PharmacyID] = r.loaders.PharmacyLoader.Load(ctx, order.PharmacyID)
		}
	}

	for i, order := range orders {
		view := &entities.OrderView{MedicineOrder: *order}

		pharmacy, err := pharmacyThunks[order.PharmacyID]()
		if err != nil {
			return nil, err
		}
		if pharmacy != nil {
			view.PharmacyName = pharmacy.PharmacyName
			view.PharmacyPhone = pharmacy.Phone
		} else {
			view.PharmacyName = entities.UnknownPharmacyName
		}

		views[i] = view
	}

	return views, nil
}

// DoctorViews attaches specialty names to a doctor list
func (r *ReconcilerService) DoctorViews(ctx context.Context, doctors []*entities.Doctor) ([]*entities.DoctorView, error) {
	views := make([]*entities.DoctorView, len(doctors))
	if len(doctors) == 0 {
		return views, nil
	}

	specialtyThunks := make(map[string]func() (*entities.Specialty, error))
	for _, doctor := range doctors {
		if doctor.SpecialtyID != nil {
			if _, ok := specialtyThunks[*doctor.SpecialtyID]; !ok {
				specialtyThunks[*doctor.SpecialtyID] = r.loaders.SpecialtyLoader.Load(ctx, *doctor.SpecialtyID)
			}
		}
	}

	for i, doctor := range doctors {
		view := &entities.DoctorView{Doctor: *doctor}

		if doctor.SpecialtyID != nil {
			specialty, err := specialtyThunks[*doctor.SpecialtyID]()
			if err != nil {
				return nil, err
			}
			if specialty != nil {
				view.SpecialtyName = specialty.Name
			}
		}

		views[i] = view
	}

	return views, nil
}

// PostViews attaches author display names to a post list. Authors may
// be any account kind; unresolved authors keep the row with a blank
// name rather than dropping it.
func (r *ReconcilerService) PostViews(ctx context.Context, posts []*entities.CommunityPost) ([]*entities.PostView, error) {
	views := make([]*entities.PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	profileThunks := make(map[string]func() (*entities.Profile, error))
	for _, post := range posts {
		if _, ok := profileThunks[post.AuthorID]; !ok {
			profileThunks[post.AuthorID] = r.loaders.ProfileLoader.Load(ctx, post.AuthorID)
		}
	}

	for i, post := range posts {
		view := &entities.PostView{CommunityPost: *post}

		profile, err := profileThunks[post.AuthorID]()
		if err != nil {
			return nil, err
		}
		if profile != nil {
			view.AuthorName = profile.FullName
		} else {
			view.AuthorName = "Community Member"
		}

		views[i] = view
	}

	return views, nil
}
