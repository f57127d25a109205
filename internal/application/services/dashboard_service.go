package services

import (
	"context"
	"sort"
	"time"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
)

// ClinicDashboard is everything a clinic's landing screen needs in one
// response
type ClinicDashboard struct {
	Clinic       *entities.Clinic            `json:"clinic"`
	Appointments []*entities.AppointmentView `json:"appointments"`
	Pending      []*entities.AppointmentView `json:"pending"`
	TodayCount   int                         `json:"today_count"`
	DoctorCount  int                         `json:"doctor_count"`
}

// PharmacyDashboard is everything a pharmacy's landing screen needs
type PharmacyDashboard struct {
	Pharmacy      *entities.Pharmacy    `json:"pharmacy"`
	UrgentOrders  []*entities.OrderView `json:"urgent_orders"`
	PendingOrders []*entities.OrderView `json:"pending_orders"`
	Stock         *StockSummary         `json:"stock"`
}

// PatientDashboard is everything a patient's landing screen needs
type PatientDashboard struct {
	Profile      *entities.Profile           `json:"profile"`
	Appointments []*entities.AppointmentView `json:"appointments"`
	Orders       []*entities.OrderView       `json:"orders"`
}

// DashboardService assembles per-tenant dashboards. Each dashboard
// reads only rows owned by the requesting tenant; display names from
// other tables are attached by the reconciler, never joined in SQL.
type DashboardService struct {
	tenants      *TenantService
	appointments *AppointmentService
	orders       *OrderService
	stock        *StockService
	doctorRepo   repositories.DoctorRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	tenants *TenantService,
	appointments *AppointmentService,
	orders *OrderService,
	stock *StockService,
	doctorRepo repositories.DoctorRepository,
) *DashboardService {
	return &DashboardService{
		tenants:      tenants,
		appointments: appointments,
		orders:       orders,
		stock:        stock,
		doctorRepo:   doctorRepo,
	}
}

// ForClinic assembles the dashboard for the clinic owned by userID.
// Section reads degrade independently: a failed read logs and leaves
// its section empty rather than failing the whole dashboard.
func (s *DashboardService) ForClinic(ctx context.Context, userID string) (*ClinicDashboard, error) {
	clinic, err := s.tenants.ClinicForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)

	views, err := s.appointments.ListForClinic(ctx, clinic.ID, repositories.AppointmentFilter{})
	if err != nil {
		logger.Warn().Err(err).Str("clinic_id", clinic.ID).Msg("Failed to load clinic appointments")
		views = nil
	}

	doctors, err := s.doctorRepo.ListByClinic(ctx, clinic.ID, false)
	if err != nil {
		logger.Warn().Err(err).Str("clinic_id", clinic.ID).Msg("Failed to load clinic doctors")
		doctors = nil
	}

	dashboard := &ClinicDashboard{
		Clinic:       clinic,
		Appointments: views,
		DoctorCount:  len(doctors),
	}

	today := time.Now().Format("2006-01-02")
	for _, view := range views {
		if view.Status == entities.AppointmentStatusPending {
			dashboard.Pending = append(dashboard.Pending, view)
		}
		if view.AppointmentDate == today && view.Status != entities.AppointmentStatusCancelled {
			dashboard.TodayCount++
		}
	}

	return dashboard, nil
}

// ForPharmacy assembles the dashboard for the pharmacy owned by userID
func (s *DashboardService) ForPharmacy(ctx context.Context, userID string) (*PharmacyDashboard, error) {
	pharmacy, err := s.tenants.PharmacyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)

	urgent, regular, err := s.orders.PendingForPharmacy(ctx, pharmacy.ID)
	if err != nil {
		logger.Warn().Err(err).Str("pharmacy_id", pharmacy.ID).Msg("Failed to load pending orders")
		urgent, regular = nil, nil
	}

	stock, err := s.stock.ListForPharmacy(ctx, pharmacy.ID)
	if err != nil {
		logger.Warn().Err(err).Str("pharmacy_id", pharmacy.ID).Msg("Failed to load stock summary")
		stock = &StockSummary{Items: []*entities.StockItem{}}
	}

	return &PharmacyDashboard{
		Pharmacy:      pharmacy,
		UrgentOrders:  urgent,
		PendingOrders: regular,
		Stock:         stock,
	}, nil
}

// ForPatient assembles the dashboard for a patient account
func (s *DashboardService) ForPatient(ctx context.Context, userID string) (*PatientDashboard, error) {
	profile, err := s.tenants.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)

	appointments, err := s.appointments.ListForPatient(ctx, userID, repositories.AppointmentFilter{})
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load patient appointments")
		appointments = nil
	}

	orders, err := s.orders.ListForPatient(ctx, userID, repositories.OrderFilter{})
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load patient orders")
		orders = nil
	}

	return &PatientDashboard{
		Profile:      profile,
		Appointments: upcomingAppointments(appointments, upcomingLimit),
		Orders:       orders,
	}, nil
}

// upcomingLimit caps the patient dashboard's appointment section
const upcomingLimit = 5

// upcomingAppointments keeps appointments from today onward that are not
// cancelled, soonest first, capped at limit.
func upcomingAppointments(views []*entities.AppointmentView, limit int) []*entities.AppointmentView {
	today := time.Now().Format("2006-01-02")

	upcoming := make([]*entities.AppointmentView, 0, limit)
	for _, view := range views {
		if view.Status == entities.AppointmentStatusCancelled || view.AppointmentDate < today {
			continue
		}
		upcoming = append(upcoming, view)
	}

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].AppointmentDate != upcoming[j].AppointmentDate {
			return upcoming[i].AppointmentDate < upcoming[j].AppointmentDate
		}
		return upcoming[i].AppointmentTime < upcoming[j].AppointmentTime
	})

	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}
