package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/pkg/config"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// stubBackend serves a fixed token->session mapping
type stubBackend struct {
	sessions map[string]*entities.Session
}

func (s *stubBackend) SignUp(ctx context.Context, creds providers.Credentials) (*entities.User, error) {
	return nil, apperrors.NewInternalError("not implemented", nil)
}

func (s *stubBackend) SignIn(ctx context.Context, creds providers.Credentials) (*entities.Session, error) {
	return nil, apperrors.NewInternalError("not implemented", nil)
}

func (s *stubBackend) GetSession(ctx context.Context, token string) (*entities.Session, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, providers.ErrSessionMissing
}

func (s *stubBackend) SignOut(ctx context.Context, token string) error {
	return nil
}

// stubRoleRepo serves a fixed user->role mapping
type stubRoleRepo struct {
	roles map[string]entities.Role
}

func (s *stubRoleRepo) Create(ctx context.Context, assignment *entities.RoleAssignment) error {
	return nil
}

func (s *stubRoleRepo) GetByUserID(ctx context.Context, userID string) (*entities.RoleAssignment, error) {
	if role, ok := s.roles[userID]; ok {
		return &entities.RoleAssignment{UserID: userID, Role: role}, nil
	}
	return nil, apperrors.NewNotFoundError("no role assigned to user " + userID)
}

func newTestGuard() *services.RouteGuard {
	backend := &stubBackend{sessions: map[string]*entities.Session{
		"clinic-token":   {Token: "clinic-token", UserID: "user-clinic", Email: "clinic@kllinic.test"},
		"pharmacy-token": {Token: "pharmacy-token", UserID: "user-pharmacy", Email: "pharmacy@kllinic.test"},
		"roleless-token": {Token: "roleless-token", UserID: "user-roleless", Email: "roleless@kllinic.test"},
		"admin-token":    {Token: "admin-token", UserID: "user-admin", Email: "admin@kllinic.test"},
	}}
	roles := services.NewRoleService(&stubRoleRepo{roles: map[string]entities.Role{
		"user-clinic":   entities.RoleClinic,
		"user-pharmacy": entities.RolePharmacy,
	}}, nil, &config.RoleResolverConfig{FallbackEnabled: true, FallbackRole: "patient"})
	return services.NewRouteGuard(backend, roles)
}

func okHandler(t *testing.T, wantUserID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middleware.SessionFromContext(r.Context())
		require.NotNil(t, session)
		assert.Equal(t, wantUserID, session.UserID)
		w.WriteHeader(http.StatusOK)
	}
}

func TestRequireRole_Authorized(t *testing.T) {
	handler := middleware.RequireRole(newTestGuard(), entities.RoleClinic)(okHandler(t, "user-clinic"))

	req := httptest.NewRequest("GET", "/api/clinic/appointments", nil)
	req.Header.Set("Authorization", "Bearer clinic-token")
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_NoToken(t *testing.T) {
	handler := middleware.RequireRole(newTestGuard(), entities.RoleClinic)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest("GET", "/api/clinic/appointments", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_WrongRoleRedirects(t *testing.T) {
	handler := middleware.RequireRole(newTestGuard(), entities.RoleClinic)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest("GET", "/api/clinic/appointments", nil)
	req.Header.Set("Authorization", "Bearer pharmacy-token")
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard/pharmacy", body["redirect_to"])
}

func TestRequireRole_NoRoleRedirectsHome(t *testing.T) {
	handler := middleware.RequireRole(newTestGuard(), entities.RoleClinic)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest("GET", "/api/clinic/appointments", nil)
	req.Header.Set("Authorization", "Bearer roleless-token")
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/", body["redirect_to"])
}

func TestRequireRole_TokenFromQuery(t *testing.T) {
	handler := middleware.RequireRole(newTestGuard(), entities.RoleClinic)(okHandler(t, "user-clinic"))

	// The SSE path: no headers available, token rides in the query
	req := httptest.NewRequest("GET", "/api/stream/clinic?token=clinic-token", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSession(t *testing.T) {
	handler := middleware.RequireSession(newTestGuard())(okHandler(t, "user-roleless"))

	req := httptest.NewRequest("GET", "/api/community/groups", nil)
	req.Header.Set("Authorization", "Bearer roleless-token")
	w := httptest.NewRecorder()

	handler(w, req)

	// No role needed; a bare session is enough
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/community/groups", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_AnonymousRejected(t *testing.T) {
	handler := middleware.RequireAdmin(newTestGuard(), []string{"admin@kllinic.test"})(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest("PATCH", "/api/admin/clinics/cli-1/verify", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	handler := middleware.RequireAdmin(newTestGuard(), []string{"admin@kllinic.test"})(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	// Authenticated, but the account is not on the allowlist
	req := httptest.NewRequest("PATCH", "/api/admin/clinics/cli-1/verify", nil)
	req.Header.Set("Authorization", "Bearer clinic-token")
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_AllowlistedAccountPasses(t *testing.T) {
	handler := middleware.RequireAdmin(newTestGuard(), []string{"ADMIN@kllinic.test"})(okHandler(t, "user-admin"))

	req := httptest.NewRequest("PATCH", "/api/admin/clinics/cli-1/verify", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()

	handler(w, req)

	// Allowlist matching is case-insensitive on the email
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_EmptyAllowlistDeniesEveryone(t *testing.T) {
	handler := middleware.RequireAdmin(newTestGuard(), nil)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest("PATCH", "/api/admin/clinics/cli-1/verify", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
