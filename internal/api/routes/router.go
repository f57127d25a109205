package routes

import (
	"net/http"

	"github.com/kllinic/marketplace/internal/api/handlers"
	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	guard *services.RouteGuard

	authHandler         *handlers.AuthHandler
	dashboardHandler    *handlers.DashboardHandler
	appointmentHandler  *handlers.AppointmentHandler
	orderHandler        *handlers.OrderHandler
	stockHandler        *handlers.StockHandler
	doctorHandler       *handlers.DoctorHandler
	directoryHandler    *handlers.DirectoryHandler
	profileHandler      *handlers.ProfileHandler
	healthRecordHandler *handlers.HealthRecordHandler
	communityHandler    *handlers.CommunityHandler
	sseHandler          *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	adminEmails     []string
}

// NewRouter creates a new router
func NewRouter(
	guard *services.RouteGuard,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	appointmentHandler *handlers.AppointmentHandler,
	orderHandler *handlers.OrderHandler,
	stockHandler *handlers.StockHandler,
	doctorHandler *handlers.DoctorHandler,
	directoryHandler *handlers.DirectoryHandler,
	profileHandler *handlers.ProfileHandler,
	healthRecordHandler *handlers.HealthRecordHandler,
	communityHandler *handlers.CommunityHandler,
	sseHandler *handlers.SSEHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	adminEmails []string,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		guard:               guard,
		authHandler:         authHandler,
		dashboardHandler:    dashboardHandler,
		appointmentHandler:  appointmentHandler,
		orderHandler:        orderHandler,
		stockHandler:        stockHandler,
		doctorHandler:       doctorHandler,
		directoryHandler:    directoryHandler,
		profileHandler:      profileHandler,
		healthRecordHandler: healthRecordHandler,
		communityHandler:    communityHandler,
		sseHandler:          sseHandler,
		cacheMiddleware:     cacheMiddleware,
		metrics:             metrics,
		adminEmails:         adminEmails,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	asPatient := middleware.RequireRole(r.guard, entities.RolePatient)
	asClinic := middleware.RequireRole(r.guard, entities.RoleClinic)
	asPharmacy := middleware.RequireRole(r.guard, entities.RolePharmacy)
	authed := middleware.RequireSession(r.guard)
	asAdmin := middleware.RequireAdmin(r.guard, r.adminEmails)

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/me", authed(r.authHandler.Me))

	// Public directories
	r.mux.HandleFunc("GET /api/clinics", r.directoryHandler.ListClinics)
	r.mux.HandleFunc("GET /api/pharmacies", r.directoryHandler.ListPharmacies)
	r.mux.HandleFunc("GET /api/clinics/{id}/doctors", r.doctorHandler.ListPublic)
	r.mux.HandleFunc("GET /api/specialties", r.doctorHandler.ListSpecialties)

	// Role-owned dashboards
	r.mux.HandleFunc("GET /api/dashboard/patient", asPatient(r.dashboardHandler.PatientDashboard))
	r.mux.HandleFunc("GET /api/dashboard/clinic", asClinic(r.dashboardHandler.ClinicDashboard))
	r.mux.HandleFunc("GET /api/dashboard/pharmacy", asPharmacy(r.dashboardHandler.PharmacyDashboard))

	// Patient endpoints
	r.mux.HandleFunc("GET /api/profile", asPatient(r.profileHandler.Get))
	r.mux.HandleFunc("PUT /api/profile", asPatient(r.profileHandler.Update))
	r.mux.HandleFunc("POST /api/appointments", asPatient(r.appointmentHandler.Book))
	r.mux.HandleFunc("GET /api/appointments", asPatient(r.appointmentHandler.ListMine))
	r.mux.HandleFunc("POST /api/orders", asPatient(r.orderHandler.Place))
	r.mux.HandleFunc("GET /api/orders", asPatient(r.orderHandler.ListMine))
	r.mux.HandleFunc("POST /api/orders/{id}/cancel", asPatient(r.orderHandler.CancelMine))
	r.mux.HandleFunc("POST /api/health-records", asPatient(r.healthRecordHandler.Add))
	r.mux.HandleFunc("GET /api/health-records", asPatient(r.healthRecordHandler.Timeline))

	// Clinic endpoints
	r.mux.HandleFunc("GET /api/clinic/appointments", asClinic(r.appointmentHandler.ListForClinic))
	r.mux.HandleFunc("PATCH /api/clinic/appointments/{id}", asClinic(r.appointmentHandler.UpdateStatus))
	r.mux.HandleFunc("GET /api/clinic/doctors", asClinic(r.doctorHandler.ListForClinic))
	r.mux.HandleFunc("POST /api/clinic/doctors", asClinic(r.doctorHandler.Add))
	r.mux.HandleFunc("PUT /api/clinic/doctors/{id}", asClinic(r.doctorHandler.Update))
	r.mux.HandleFunc("PATCH /api/clinic/doctors/{id}/availability", asClinic(r.doctorHandler.SetAvailability))
	r.mux.HandleFunc("DELETE /api/clinic/doctors/{id}", asClinic(r.doctorHandler.Delete))

	// Pharmacy endpoints
	r.mux.HandleFunc("GET /api/pharmacy/orders", asPharmacy(r.orderHandler.ListForPharmacy))
	r.mux.HandleFunc("GET /api/pharmacy/orders/pending", asPharmacy(r.orderHandler.PendingForPharmacy))
	r.mux.HandleFunc("PATCH /api/pharmacy/orders/{id}", asPharmacy(r.orderHandler.UpdateStatus))
	r.mux.HandleFunc("GET /api/pharmacy/stock", asPharmacy(r.stockHandler.List))
	r.mux.HandleFunc("GET /api/pharmacy/stock/low", asPharmacy(r.stockHandler.LowStock))
	r.mux.HandleFunc("GET /api/pharmacy/stock/expiring", asPharmacy(r.stockHandler.Expiring))
	r.mux.HandleFunc("POST /api/pharmacy/stock", asPharmacy(r.stockHandler.Add))
	r.mux.HandleFunc("PUT /api/pharmacy/stock/{id}", asPharmacy(r.stockHandler.Update))
	r.mux.HandleFunc("DELETE /api/pharmacy/stock/{id}", asPharmacy(r.stockHandler.Delete))

	// Community endpoints
	r.mux.HandleFunc("GET /api/community/posts", r.communityHandler.ListPosts)
	r.mux.HandleFunc("POST /api/community/posts", authed(r.communityHandler.CreatePost))
	r.mux.HandleFunc("POST /api/community/posts/{id}/like", authed(r.communityHandler.LikePost))
	r.mux.HandleFunc("GET /api/community/events", r.communityHandler.ListEvents)
	r.mux.HandleFunc("POST /api/community/events", authed(r.communityHandler.CreateEvent))
	r.mux.HandleFunc("POST /api/community/events/{id}/join", authed(r.communityHandler.JoinEvent))
	r.mux.HandleFunc("GET /api/community/groups", authed(r.communityHandler.ListGroups))
	r.mux.HandleFunc("POST /api/community/groups", authed(r.communityHandler.CreateGroup))
	r.mux.HandleFunc("POST /api/community/groups/{id}/join", authed(r.communityHandler.JoinGroup))

	// Admin verification endpoints
	r.mux.HandleFunc("PATCH /api/admin/clinics/{id}/verify", asAdmin(r.directoryHandler.VerifyClinic))
	r.mux.HandleFunc("PATCH /api/admin/pharmacies/{id}/verify", asAdmin(r.directoryHandler.VerifyPharmacy))

	// Event streams for live dashboards
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/clinic", asClinic(r.sseHandler.StreamClinicEvents))
		r.mux.HandleFunc("GET /api/stream/pharmacy", asPharmacy(r.sseHandler.StreamPharmacyEvents))
		r.mux.HandleFunc("GET /api/stream/patient", asPatient(r.sseHandler.StreamPatientEvents))
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
