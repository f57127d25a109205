package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kllinic/marketplace/internal/application/loaders"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

type reconcilerFixture struct {
	profiles    *MockProfileRepository
	clinics     *MockClinicRepository
	pharmacies  *MockPharmacyRepository
	doctors     *MockDoctorRepository
	specialties *MockSpecialtyRepository
	reconciler  *services.ReconcilerService
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		profiles:    new(MockProfileRepository),
		clinics:     new(MockClinicRepository),
		pharmacies:  new(MockPharmacyRepository),
		doctors:     new(MockDoctorRepository),
		specialties: new(MockSpecialtyRepository),
	}
	f.reconciler = services.NewReconcilerService(loaders.NewLoaders(
		f.profiles, f.clinics, f.pharmacies, f.doctors, f.specialties,
	))
	return f
}

func TestReconciler_OrderViews_AttachesPatientNames(t *testing.T) {
	f := newReconcilerFixture()
	f.profiles.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Profile{
			{ID: "pat-1", FullName: "Ada Obi"},
		}, nil)

	orders := []*entities.MedicineOrder{
		{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-1"},
		{ID: "ord-2", PatientID: "pat-1", PharmacyID: "pha-1"},
	}

	views, err := f.reconciler.OrderViews(context.Background(), orders)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ada Obi", views[0].PatientName)
	assert.Equal(t, "Ada Obi", views[1].PatientName)
	// Two orders for the same patient read the profile table once
	f.profiles.AssertNumberOfCalls(t, "GetByIDs", 1)
}

func TestReconciler_OrderViews_SentinelOnMissingPatient(t *testing.T) {
	f := newReconcilerFixture()
	f.profiles.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Profile{}, nil)

	orders := []*entities.MedicineOrder{
		{ID: "ord-1", PatientID: "pat-gone", PharmacyID: "pha-1"},
	}

	views, err := f.reconciler.OrderViews(context.Background(), orders)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entities.UnknownPatientName, views[0].PatientName)
	assert.Equal(t, "ord-1", views[0].ID, "the row survives the missing reference")
}

func TestReconciler_OrderViews_EmptyInputLoadsNothing(t *testing.T) {
	f := newReconcilerFixture()

	views, err := f.reconciler.OrderViews(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, views)
	f.profiles.AssertNotCalled(t, "GetByIDs")
}

func TestReconciler_AppointmentViews_DoctorAndSpecialty(t *testing.T) {
	f := newReconcilerFixture()
	specialtyID := "spe-1"
	doctorID := "doc-1"

	f.profiles.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Profile{{ID: "pat-1", FullName: "Ada Obi"}}, nil)
	f.doctors.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Doctor{{ID: doctorID, Name: "Dr. Bello", SpecialtyID: &specialtyID}}, nil)
	f.specialties.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Specialty{{ID: specialtyID, Name: "Cardiology"}}, nil)

	appointments := []*entities.Appointment{
		{ID: "app-1", PatientID: "pat-1", ClinicID: "cli-1", DoctorID: &doctorID},
		{ID: "app-2", PatientID: "pat-1", ClinicID: "cli-1"},
	}

	views, err := f.reconciler.AppointmentViews(context.Background(), appointments)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ada Obi", views[0].PatientName)
	assert.Equal(t, "Dr. Bello", views[0].DoctorName)
	assert.Equal(t, "Cardiology", views[0].Specialty)
	assert.Empty(t, views[1].DoctorName, "no doctor reference, no doctor fields")
}

func TestReconciler_AppointmentViews_MissingDoctorSentinel(t *testing.T) {
	f := newReconcilerFixture()
	doctorID := "doc-gone"

	f.profiles.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Profile{{ID: "pat-1", FullName: "Ada Obi"}}, nil)
	f.doctors.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Doctor{}, nil)

	appointments := []*entities.Appointment{
		{ID: "app-1", PatientID: "pat-1", ClinicID: "cli-1", DoctorID: &doctorID},
	}

	views, err := f.reconciler.AppointmentViews(context.Background(), appointments)

	require.NoError(t, err)
	assert.Equal(t, entities.UnknownDoctorName, views[0].DoctorName)
	f.specialties.AssertNotCalled(t, "GetByIDs")
}

func TestReconciler_PatientAppointmentViews_ClinicSentinel(t *testing.T) {
	f := newReconcilerFixture()
	f.clinics.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Clinic{}, nil)

	appointments := []*entities.Appointment{
		{ID: "app-1", PatientID: "pat-1", ClinicID: "cli-gone"},
	}

	views, err := f.reconciler.PatientAppointmentViews(context.Background(), appointments)

	require.NoError(t, err)
	assert.Equal(t, entities.UnknownClinicName, views[0].ClinicName)
}

func TestReconciler_PatientOrderViews_PharmacyDetails(t *testing.T) {
	f := newReconcilerFixture()
	f.pharmacies.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Pharmacy{
			{ID: "pha-1", PharmacyName: "HealthPlus", Phone: "0800-000"},
		}, nil)

	orders := []*entities.MedicineOrder{
		{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-1"},
		{ID: "ord-2", PatientID: "pat-1", PharmacyID: "pha-gone"},
	}

	views, err := f.reconciler.PatientOrderViews(context.Background(), orders)

	require.NoError(t, err)
	assert.Equal(t, "HealthPlus", views[0].PharmacyName)
	assert.Equal(t, "0800-000", views[0].PharmacyPhone)
	assert.Equal(t, entities.UnknownPharmacyName, views[1].PharmacyName)
	f.pharmacies.AssertNumberOfCalls(t, "GetByIDs", 1)
}

func TestReconciler_DoctorViews_SpecialtyNames(t *testing.T) {
	f := newReconcilerFixture()
	specialtyID := "spe-1"
	f.specialties.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Specialty{{ID: specialtyID, Name: "Dermatology"}}, nil)

	doctors := []*entities.Doctor{
		{ID: "doc-1", Name: "Dr. Bello", SpecialtyID: &specialtyID},
		{ID: "doc-2", Name: "Dr. Eze"},
	}

	views, err := f.reconciler.DoctorViews(context.Background(), doctors)

	require.NoError(t, err)
	assert.Equal(t, "Dermatology", views[0].SpecialtyName)
	assert.Empty(t, views[1].SpecialtyName)
}

func TestReconciler_PostViews_AuthorFallback(t *testing.T) {
	f := newReconcilerFixture()
	f.profiles.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Profile{{ID: "pat-1", FullName: "Ada Obi"}}, nil)

	posts := []*entities.CommunityPost{
		{ID: "post-1", AuthorID: "pat-1"},
		{ID: "post-2", AuthorID: "cli-1"},
	}

	views, err := f.reconciler.PostViews(context.Background(), posts)

	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", views[0].AuthorName)
	assert.Equal(t, "Community Member", views[1].AuthorName)
}
