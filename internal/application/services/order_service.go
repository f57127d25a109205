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

// OrderService handles medicine order placement and lifecycle
type OrderService struct {
	repo         repositories.OrderRepository
	pharmacyRepo repositories.PharmacyRepository
	machine      *statemachine.Machine
	reconciler   *ReconcilerService
	bus          providers.EventBus
}

// NewOrderService creates a new order service
func NewOrderService(
	repo repositories.OrderRepository,
	pharmacyRepo repositories.PharmacyRepository,
	reconciler *ReconcilerService,
	bus providers.EventBus,
) *OrderService {
	return &OrderService{
		repo:         repo,
		pharmacyRepo: pharmacyRepo,
		machine:      statemachine.Orders(),
		reconciler:   reconciler,
		bus:          bus,
	}
}

// Place creates a pending order for a patient at a pharmacy
func (s *OrderService) Place(ctx context.Context, order *entities.MedicineOrder) error {
	if order.PatientID == "" {
		return apperrors.NewValidationError("patient id is required")
	}
	if order.Medicines == "" {
		return apperrors.NewValidationError("medicines are required")
	}
	if order.DeliveryAddress == "" {
		return apperrors.NewValidationError("delivery address is required")
	}
	switch order.PaymentMethod {
	case entities.PaymentCashOnDelivery, entities.PaymentOnline:
	default:
		return apperrors.NewValidationError("unknown payment method")
	}

	if _, err := s.pharmacyRepo.GetByID(ctx, order.PharmacyID); err != nil {
		return err
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = entities.OrderStatusPending
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	if err := s.repo.Create(ctx, order); err != nil {
		return err
	}

	s.publishStatusChange(ctx, order, "", order.Status)
	return nil
}

// UpdateStatus transitions an order on behalf of an actor. Statuses
// only advance along the delivery sequence; skipping ahead or moving
// backwards is rejected by the transition table.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to entities.OrderStatus, actor statemachine.Actor, actorTenantID string) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if actor == statemachine.ActorPharmacy && order.PharmacyID != actorTenantID {
		return apperrors.NewForbiddenError("order belongs to another pharmacy")
	}
	if actor == statemachine.ActorPatient && order.PatientID != actorTenantID {
		return apperrors.NewForbiddenError("order belongs to another patient")
	}

	from := order.Status
	if err := s.machine.CanTransition(string(from), string(to), actor); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}

	order.Status = to
	s.publishStatusChange(ctx, order, from, to)
	return nil
}

// ListForPharmacy returns a pharmacy's orders with patient names
// attached
func (s *OrderService) ListForPharmacy(ctx context.Context, pharmacyID string, filter repositories.OrderFilter) ([]*entities.OrderView, error) {
	orders, err := s.repo.ListByPharmacy(ctx, pharmacyID, filter)
	if err != nil {
		return nil, err
	}
	return s.reconciler.OrderViews(ctx, orders)
}

// ListForPatient returns a patient's orders with pharmacy details
// attached
func (s *OrderService) ListForPatient(ctx context.Context, patientID string, filter repositories.OrderFilter) ([]*entities.OrderView, error) {
	orders, err := s.repo.ListByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, err
	}
	return s.reconciler.PatientOrderViews(ctx, orders)
}

// PendingForPharmacy returns the pharmacy's actionable queue split into
// urgent and regular pending orders. An urgent pending order appears in
// the urgent bucket only; the two lists never overlap.
func (s *OrderService) PendingForPharmacy(ctx context.Context, pharmacyID string) (urgent, regular []*entities.OrderView, err error) {
	orders, err := s.repo.ListByPharmacy(ctx, pharmacyID, repositories.OrderFilter{Status: entities.OrderStatusPending})
	if err != nil {
		return nil, nil, err
	}

	views, err := s.reconciler.OrderViews(ctx, orders)
	if err != nil {
		return nil, nil, err
	}

	urgent = make([]*entities.OrderView, 0, len(views))
	regular = make([]*entities.OrderView, 0, len(views))
	for _, view := range views {
		if view.IsUrgent {
			urgent = append(urgent, view)
		} else {
			regular = append(regular, view)
		}
	}

	return urgent, regular, nil
}

func (s *OrderService) publishStatusChange(ctx context.Context, order *entities.MedicineOrder, from, to entities.OrderStatus) {
	if s.bus == nil {
		return
	}

	event := &entities.TenantEvent{
		ID:         uuid.New().String(),
		Type:       entities.EventOrderStatusChanged,
		EntityID:   order.ID,
		FromStatus: string(from),
		ToStatus:   string(to),
		OccurredAt: time.Now(),
	}

	logger := observability.LoggerFromContext(ctx)
	for _, target := range []struct {
		tenantID string
		channel  string
	}{
		{order.PharmacyID, providers.PharmacyChannel(order.PharmacyID)},
		{order.PatientID, providers.PatientChannel(order.PatientID)},
	} {
		event.TenantID = target.tenantID
		if err := s.bus.Publish(ctx, target.channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", target.channel).Msg("Failed to publish order event")
		}
	}
}
