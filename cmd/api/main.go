package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kllinic/marketplace/internal/adapters/auth"
	"github.com/kllinic/marketplace/internal/adapters/cache"
	"github.com/kllinic/marketplace/internal/adapters/database"
	"github.com/kllinic/marketplace/internal/adapters/events"
	"github.com/kllinic/marketplace/internal/api/handlers"
	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/api/routes"
	"github.com/kllinic/marketplace/internal/application/loaders"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/redis"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
	"github.com/kllinic/marketplace/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	// Redis is not optional here: sessions live in it, and without
	// sessions no tenant can sign in
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis client initialized successfully")

	// Initialize adapters
	userAdapter := database.NewUserAdapter(pgClient)
	roleAdapter := database.NewRoleAdapter(pgClient)
	profileAdapter := database.NewProfileAdapter(pgClient)
	clinicAdapter := database.NewClinicAdapter(pgClient)
	pharmacyAdapter := database.NewPharmacyAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	orderAdapter := database.NewOrderAdapter(pgClient)
	stockAdapter := database.NewStockAdapter(pgClient)
	doctorAdapter := database.NewDoctorAdapter(pgClient)
	specialtyAdapter := database.NewSpecialtyAdapter(pgClient)
	healthRecordAdapter := database.NewHealthRecordAdapter(pgClient)
	communityAdapter := database.NewCommunityAdapter(pgClient)

	var cacheProvider providers.CacheProvider = cache.NewRedisAdapter(redisClient)

	// Initialize event bus for real-time dashboard updates
	eventBus := events.NewRedisEventBus(redisClient)
	log.Info().Msg("Event bus initialized successfully")

	backend, err := auth.NewJWTBackend(userAdapter, redisClient, &cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth backend")
	}

	// Initialize batched entity loaders
	entityLoaders := loaders.NewLoaders(
		profileAdapter,
		clinicAdapter,
		pharmacyAdapter,
		doctorAdapter,
		specialtyAdapter,
	)

	// Initialize services
	sessionStore := services.NewSessionStore(backend)
	roleService := services.NewRoleService(roleAdapter, metrics, &cfg.Roles)
	guard := services.NewRouteGuard(backend, roleService)
	reconciler := services.NewReconcilerService(entityLoaders)

	tenantService := services.NewTenantService(
		sessionStore,
		roleService,
		profileAdapter,
		clinicAdapter,
		pharmacyAdapter,
	)
	appointmentService := services.NewAppointmentService(
		appointmentAdapter,
		clinicAdapter,
		doctorAdapter,
		reconciler,
		eventBus,
	)
	orderService := services.NewOrderService(
		orderAdapter,
		pharmacyAdapter,
		reconciler,
		eventBus,
	)
	stockService := services.NewStockService(stockAdapter, eventBus)
	doctorService := services.NewDoctorService(doctorAdapter, specialtyAdapter, reconciler)
	dashboardService := services.NewDashboardService(
		tenantService,
		appointmentService,
		orderService,
		stockService,
		doctorAdapter,
	)
	healthRecordService := services.NewHealthRecordService(healthRecordAdapter)
	communityService := services.NewCommunityService(communityAdapter, reconciler)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionStore, tenantService, roleService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, tenantService)
	orderHandler := handlers.NewOrderHandler(orderService, tenantService)
	stockHandler := handlers.NewStockHandler(stockService, tenantService)
	doctorHandler := handlers.NewDoctorHandler(doctorService, tenantService)
	directoryHandler := handlers.NewDirectoryHandler(tenantService)
	profileHandler := handlers.NewProfileHandler(tenantService)
	healthRecordHandler := handlers.NewHealthRecordHandler(healthRecordService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	sseHandler := handlers.NewSSEHandler(eventBus, tenantService)

	// Initialize cache middleware for the public directory routes
	cacheMiddleware := middleware.NewCacheMiddleware(cacheProvider)

	// Set up router
	router := routes.NewRouter(
		guard,
		authHandler,
		dashboardHandler,
		appointmentHandler,
		orderHandler,
		stockHandler,
		doctorHandler,
		directoryHandler,
		profileHandler,
		healthRecordHandler,
		communityHandler,
		sseHandler,
		cacheMiddleware,
		metrics,
		cfg.Auth.AdminEmails,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// SSE connections stay open far longer than a normal request,
		// so the write timeout cannot be a flat 15s
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Close event bus
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
