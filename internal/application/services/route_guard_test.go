package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

func newGuard(backend *MockAuthBackend, roleRepo *MockRoleRepository, fallbackEnabled bool) *services.RouteGuard {
	return services.NewRouteGuard(backend, newRoleService(roleRepo, fallbackEnabled))
}

func TestRouteGuard_NoToken(t *testing.T) {
	guard := newGuard(new(MockAuthBackend), new(MockRoleRepository), true)

	decision := guard.Evaluate(context.Background(), "", entities.RoleClinic)

	assert.Equal(t, services.GuardUnauthenticated, decision.State)
	assert.True(t, decision.State.Terminal())
	assert.Nil(t, decision.Session)
}

func TestRouteGuard_MissingSession(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "stale").Return(nil, providers.ErrSessionMissing)

	guard := newGuard(backend, new(MockRoleRepository), true)

	decision := guard.Evaluate(context.Background(), "stale", entities.RoleClinic)

	assert.Equal(t, services.GuardUnauthenticated, decision.State)
}

func TestRouteGuard_Authorized(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "tok-1").
		Return(&entities.Session{Token: "tok-1", UserID: "user-1"}, nil)

	roleRepo := new(MockRoleRepository)
	roleRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(&entities.RoleAssignment{UserID: "user-1", Role: entities.RoleClinic}, nil)

	guard := newGuard(backend, roleRepo, true)

	decision := guard.Evaluate(context.Background(), "tok-1", entities.RoleClinic)

	assert.Equal(t, services.GuardAuthorized, decision.State)
	assert.Equal(t, entities.RoleClinic, decision.Role)
	assert.Equal(t, "user-1", decision.Session.UserID)
	assert.Empty(t, decision.RedirectTo)
}

func TestRouteGuard_Misrouted_RedirectsToOwnedDashboard(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "tok-1").
		Return(&entities.Session{Token: "tok-1", UserID: "user-1"}, nil)

	roleRepo := new(MockRoleRepository)
	roleRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(&entities.RoleAssignment{UserID: "user-1", Role: entities.RolePharmacy}, nil)

	guard := newGuard(backend, roleRepo, true)

	decision := guard.Evaluate(context.Background(), "tok-1", entities.RoleClinic)

	assert.Equal(t, services.GuardMisrouted, decision.State)
	assert.Equal(t, entities.RolePharmacy, decision.Role)
	assert.Equal(t, "/dashboard/pharmacy", decision.RedirectTo)
}

func TestRouteGuard_NoRole_RedirectsHome(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "tok-1").
		Return(&entities.Session{Token: "tok-1", UserID: "user-1"}, nil)

	roleRepo := new(MockRoleRepository)
	roleRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(nil, apperrors.NewNotFoundError("no role assigned to user user-1"))

	guard := newGuard(backend, roleRepo, true)

	decision := guard.Evaluate(context.Background(), "tok-1", entities.RoleClinic)

	assert.Equal(t, services.GuardMisrouted, decision.State)
	assert.Equal(t, "/", decision.RedirectTo)
}

func TestRouteGuard_UnresolvedRole_DeniesWithoutMisroute(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "tok-1").
		Return(&entities.Session{Token: "tok-1", UserID: "user-1"}, nil)

	roleRepo := new(MockRoleRepository)
	roleRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(nil, errors.New("connection refused"))

	guard := newGuard(backend, roleRepo, false)

	decision := guard.Evaluate(context.Background(), "tok-1", entities.RoleClinic)

	// A failed lookup is not evidence of a wrong role
	assert.Equal(t, services.GuardUnauthenticated, decision.State)
	assert.Empty(t, decision.RedirectTo)
}

func TestRouteGuard_FallbackRoleStillGuards(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "tok-1").
		Return(&entities.Session{Token: "tok-1", UserID: "user-1"}, nil)

	roleRepo := new(MockRoleRepository)
	roleRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(nil, errors.New("connection refused"))

	guard := newGuard(backend, roleRepo, true)

	// Fallback role is patient, so a clinic resource misroutes
	decision := guard.Evaluate(context.Background(), "tok-1", entities.RoleClinic)
	assert.Equal(t, services.GuardMisrouted, decision.State)
	assert.Equal(t, "/dashboard/patient", decision.RedirectTo)
}

func TestRouteGuard_EvaluateSession(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "tok-1").
		Return(&entities.Session{Token: "tok-1", UserID: "user-1"}, nil)

	guard := newGuard(backend, new(MockRoleRepository), true)

	decision := guard.EvaluateSession(context.Background(), "tok-1")
	assert.Equal(t, services.GuardAuthorized, decision.State)

	decision = guard.EvaluateSession(context.Background(), "")
	assert.Equal(t, services.GuardUnauthenticated, decision.State)
}

func TestGuardState_Terminal(t *testing.T) {
	assert.False(t, services.GuardInit.Terminal())
	assert.False(t, services.GuardAwaitingSession.Terminal())
	assert.False(t, services.GuardAwaitingRole.Terminal())
	assert.True(t, services.GuardAuthorized.Terminal())
	assert.True(t, services.GuardUnauthenticated.Terminal())
	assert.True(t, services.GuardMisrouted.Terminal())
}
