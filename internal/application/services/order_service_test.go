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
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/domain/statemachine"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

type orderFixture struct {
	repo       *MockOrderRepository
	pharmacies *MockPharmacyRepository
	profiles   *MockProfileRepository
	bus        *MockEventBus
	svc        *services.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:       new(MockOrderRepository),
		pharmacies: new(MockPharmacyRepository),
		profiles:   new(MockProfileRepository),
		bus:        new(MockEventBus),
	}
	reconciler := services.NewReconcilerService(loaders.NewLoaders(
		f.profiles, new(MockClinicRepository), f.pharmacies, new(MockDoctorRepository), new(MockSpecialtyRepository),
	))
	f.svc = services.NewOrderService(f.repo, f.pharmacies, reconciler, f.bus)
	return f
}

func TestOrderService_Place(t *testing.T) {
	f := newOrderFixture()
	f.pharmacies.On("GetByID", mock.Anything, "pha-1").
		Return(&entities.Pharmacy{ID: "pha-1", PharmacyName: "HealthPlus"}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(o *entities.MedicineOrder) bool {
		return o.ID != "" && o.Status == entities.OrderStatusPending
	})).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	order := &entities.MedicineOrder{
		PatientID:       "pat-1",
		PharmacyID:      "pha-1",
		Medicines:       "Paracetamol 500mg x2",
		DeliveryAddress: "12 Broad St",
		PaymentMethod:   entities.PaymentCashOnDelivery,
	}

	err := f.svc.Place(context.Background(), order)

	assert.NoError(t, err)
	assert.Equal(t, entities.OrderStatusPending, order.Status)
	f.bus.AssertCalled(t, "Publish", mock.Anything, "pharmacy:pha-1", mock.Anything)
	f.bus.AssertCalled(t, "Publish", mock.Anything, "patient:pat-1", mock.Anything)
}

func TestOrderService_Place_Validation(t *testing.T) {
	f := newOrderFixture()

	tests := []struct {
		name  string
		order *entities.MedicineOrder
	}{
		{"missing medicines", &entities.MedicineOrder{PatientID: "pat-1", PharmacyID: "pha-1", DeliveryAddress: "x", PaymentMethod: entities.PaymentOnline}},
		{"missing address", &entities.MedicineOrder{PatientID: "pat-1", PharmacyID: "pha-1", Medicines: "x", PaymentMethod: entities.PaymentOnline}},
		{"bad payment method", &entities.MedicineOrder{PatientID: "pat-1", PharmacyID: "pha-1", Medicines: "x", DeliveryAddress: "x", PaymentMethod: "barter"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Place(context.Background(), tt.order)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
	f.repo.AssertNotCalled(t, "Create")
}

func TestOrderService_UpdateStatus_AdvancesForward(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetByID", mock.Anything, "ord-1").
		Return(&entities.MedicineOrder{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-1", Status: entities.OrderStatusPending}, nil)
	f.repo.On("UpdateStatus", mock.Anything, "ord-1", entities.OrderStatusConfirmed).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.UpdateStatus(context.Background(), "ord-1", entities.OrderStatusConfirmed, statemachine.ActorPharmacy, "pha-1")

	assert.NoError(t, err)
	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, "ord-1", entities.OrderStatusConfirmed)
}

func TestOrderService_UpdateStatus_RejectsSkippingAhead(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetByID", mock.Anything, "ord-1").
		Return(&entities.MedicineOrder{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-1", Status: entities.OrderStatusPending}, nil)

	err := f.svc.UpdateStatus(context.Background(), "ord-1", entities.OrderStatusDelivered, statemachine.ActorPharmacy, "pha-1")

	assert.Error(t, err)
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestOrderService_UpdateStatus_RejectsMovingBackwards(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetByID", mock.Anything, "ord-1").
		Return(&entities.MedicineOrder{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-1", Status: entities.OrderStatusPreparing}, nil)

	err := f.svc.UpdateStatus(context.Background(), "ord-1", entities.OrderStatusConfirmed, statemachine.ActorPharmacy, "pha-1")

	assert.Error(t, err)
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestOrderService_UpdateStatus_PatientCanOnlyCancelPending(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetByID", mock.Anything, "ord-1").
		Return(&entities.MedicineOrder{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-1", Status: entities.OrderStatusPending}, nil).Once()
	f.repo.On("UpdateStatus", mock.Anything, "ord-1", entities.OrderStatusCancelled).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.UpdateStatus(context.Background(), "ord-1", entities.OrderStatusCancelled, statemachine.ActorPatient, "pat-1")
	assert.NoError(t, err)

	f.repo.On("GetByID", mock.Anything, "ord-2").
		Return(&entities.MedicineOrder{ID: "ord-2", PatientID: "pat-1", PharmacyID: "pha-1", Status: entities.OrderStatusConfirmed}, nil)

	err = f.svc.UpdateStatus(context.Background(), "ord-2", entities.OrderStatusCancelled, statemachine.ActorPatient, "pat-1")
	assert.Error(t, err, "patient cancellation window closes at confirmation")
}

func TestOrderService_UpdateStatus_WrongPharmacyForbidden(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetByID", mock.Anything, "ord-1").
		Return(&entities.MedicineOrder{ID: "ord-1", PatientID: "pat-1", PharmacyID: "pha-other", Status: entities.OrderStatusPending}, nil)

	err := f.svc.UpdateStatus(context.Background(), "ord-1", entities.OrderStatusConfirmed, statemachine.ActorPharmacy, "pha-1")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestOrderService_PendingForPharmacy_SplitsUrgent(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("ListByPharmacy", mock.Anything, "pha-1", repositories.OrderFilter{Status: entities.OrderStatusPending}).
		Return([]*entities.MedicineOrder{
			{ID: "ord-1", PatientID: "pat-1", IsUrgent: true, Status: entities.OrderStatusPending},
			{ID: "ord-2", PatientID: "pat-1", IsUrgent: false, Status: entities.OrderStatusPending},
			{ID: "ord-3", PatientID: "pat-1", IsUrgent: true, Status: entities.OrderStatusPending},
		}, nil)
	f.profiles.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Profile{{ID: "pat-1", FullName: "Ada Obi"}}, nil)

	urgent, regular, err := f.svc.PendingForPharmacy(context.Background(), "pha-1")

	require.NoError(t, err)
	require.Len(t, urgent, 2)
	require.Len(t, regular, 1)

	// The buckets never overlap
	seen := map[string]bool{}
	for _, v := range urgent {
		assert.True(t, v.IsUrgent)
		seen[v.ID] = true
	}
	for _, v := range regular {
		assert.False(t, v.IsUrgent)
		assert.False(t, seen[v.ID])
	}
}
