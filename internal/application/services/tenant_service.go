package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// TenantService resolves accounts to the tenant row they own and
// manages tenant registration and directories. Registration creates
// the account, its role assignment, and its tenant row together.
type TenantService struct {
	store        *SessionStore
	roles        *RoleService
	profileRepo  repositories.ProfileRepository
	clinicRepo   repositories.ClinicRepository
	pharmacyRepo repositories.PharmacyRepository
}

// NewTenantService creates a new tenant service
func NewTenantService(
	store *SessionStore,
	roles *RoleService,
	profileRepo repositories.ProfileRepository,
	clinicRepo repositories.ClinicRepository,
	pharmacyRepo repositories.PharmacyRepository,
) *TenantService {
	return &TenantService{
		store:        store,
		roles:        roles,
		profileRepo:  profileRepo,
		clinicRepo:   clinicRepo,
		pharmacyRepo: pharmacyRepo,
	}
}

// Registration is a sign-up request for any of the three tenant kinds
type Registration struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     entities.Role `json:"role"`

	// FullName is used for patient profiles; BusinessName for clinic
	// and pharmacy tenants
	FullName     string `json:"full_name"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// Register creates the account, assigns its role, and creates its
// tenant row. New clinic and pharmacy tenants start unverified.
func (s *TenantService) Register(ctx context.Context, reg Registration) (*entities.User, error) {
	if !reg.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role: " + string(reg.Role))
	}

	user, err := s.store.SignUp(ctx, providers.Credentials{Email: reg.Email, Password: reg.Password})
	if err != nil {
		return nil, err
	}

	if err := s.roles.Assign(ctx, user.ID, reg.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	switch reg.Role {
	case entities.RolePatient:
		err = s.profileRepo.Create(ctx, &entities.Profile{
			ID:        user.ID,
			FullName:  reg.FullName,
			Phone:     reg.Phone,
			Address:   reg.Address,
			CreatedAt: now,
			UpdatedAt: now,
		})
	case entities.RoleClinic:
		err = s.clinicRepo.Create(ctx, &entities.Clinic{
			ID:         uuid.New().String(),
			UserID:     &user.ID,
			ClinicName: reg.BusinessName,
			Phone:      reg.Phone,
			Address:    reg.Address,
			Email:      reg.Email,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	case entities.RolePharmacy:
		err = s.pharmacyRepo.Create(ctx, &entities.Pharmacy{
			ID:           uuid.New().String(),
			UserID:       &user.ID,
			PharmacyName: reg.BusinessName,
			Phone:        reg.Phone,
			Address:      reg.Address,
			Email:        reg.Email,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ClinicForUser resolves the clinic owned by an account
func (s *TenantService) ClinicForUser(ctx context.Context, userID string) (*entities.Clinic, error) {
	return s.clinicRepo.GetByUserID(ctx, userID)
}

// PharmacyForUser resolves the pharmacy owned by an account
func (s *TenantService) PharmacyForUser(ctx context.Context, userID string) (*entities.Pharmacy, error) {
	return s.pharmacyRepo.GetByUserID(ctx, userID)
}

// ProfileForUser resolves a patient profile; its id equals the user id
func (s *TenantService) ProfileForUser(ctx context.Context, userID string) (*entities.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

// UpdateProfile updates the caller's own patient profile
func (s *TenantService) UpdateProfile(ctx context.Context, profile *entities.Profile) error {
	return s.profileRepo.Update(ctx, profile)
}

// ListClinics returns the clinic directory
func (s *TenantService) ListClinics(ctx context.Context, limit int) ([]*entities.Clinic, error) {
	return s.clinicRepo.List(ctx, limit)
}

// ListPharmacies returns the pharmacy directory
func (s *TenantService) ListPharmacies(ctx context.Context, limit int) ([]*entities.Pharmacy, error) {
	return s.pharmacyRepo.List(ctx, limit)
}

// SetClinicVerified toggles a clinic's verified badge
func (s *TenantService) SetClinicVerified(ctx context.Context, id string, verified bool) error {
	return s.clinicRepo.SetVerified(ctx, id, verified)
}

// SetPharmacyVerified toggles a pharmacy's verified badge
func (s *TenantService) SetPharmacyVerified(ctx context.Context, id string, verified bool) error {
	return s.pharmacyRepo.SetVerified(ctx, id, verified)
}
