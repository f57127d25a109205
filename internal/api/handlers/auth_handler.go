package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
)

// AuthHandler handles registration, sign-in and sign-out
type AuthHandler struct {
	sessions *services.SessionStore
	tenants  *services.TenantService
	roles    *services.RoleService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *services.SessionStore, tenants *services.TenantService, roles *services.RoleService) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tenants:  tenants,
		roles:    roles,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg services.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.tenants.Register(r.Context(), reg)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"user": user,
		"role": reg.Role,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds providers.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.SignIn(r.Context(), creds)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	resolution := h.roles.ResolveOrFallback(r.Context(), session.UserID)

	response := map[string]interface{}{
		"session": session,
	}
	if role := resolution.ResolvedRole(); role != "" {
		response["role"] = role
		response["dashboard"] = role.DashboardPath()
	}

	respondWithJSON(w, http.StatusOK, response)
}

// Logout handles POST /api/auth/logout. Signing out an already-dead
// session still succeeds; the caller ends up signed out either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if err := h.sessions.SignOut(r.Context(), token); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resolution := h.roles.ResolveOrFallback(r.Context(), session.UserID)

	response := map[string]interface{}{
		"user_id": session.UserID,
		"email":   session.Email,
	}
	switch resolution.State {
	case entities.ResolutionResolved:
		response["role"] = resolution.Role
		response["fallback"] = resolution.Fallback
	case entities.ResolutionNone:
		response["role"] = nil
	}

	respondWithJSON(w, http.StatusOK, response)
}
