package services

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
	"github.com/kllinic/marketplace/pkg/config"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// RoleService resolves the tenant role of an authenticated user. The
// outcome is a trichotomy: resolved to a role, resolved to no role, or
// not resolvable because the lookup failed. Lookup failures optionally
// fall back to a configured default role so a transient database
// problem does not lock every account out; each fallback is logged and
// counted so it alarms instead of passing silently.
type RoleService struct {
	repo    repositories.RoleRepository
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Metrics

	fallbackEnabled bool
	fallbackRole    entities.Role
}

// NewRoleService creates a new role service
func NewRoleService(repo repositories.RoleRepository, metrics *observability.Metrics, cfg *config.RoleResolverConfig) *RoleService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "role-lookup",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &RoleService{
		repo:            repo,
		breaker:         breaker,
		metrics:         metrics,
		fallbackEnabled: cfg.FallbackEnabled,
		fallbackRole:    entities.Role(cfg.FallbackRole),
	}
}

// Assign records a role for a user at registration time
func (s *RoleService) Assign(ctx context.Context, userID string, role entities.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role: " + string(role))
	}
	return s.repo.Create(ctx, &entities.RoleAssignment{UserID: userID, Role: role})
}

// Resolve looks up the user's role. "No role assigned" is a completed
// resolution, not an error; only a failed lookup returns err != nil.
func (s *RoleService) Resolve(ctx context.Context, userID string) (entities.Resolution, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		assignment, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				// Absence is a successful outcome; it must not
				// trip the breaker
				return nil, nil
			}
			return nil, err
		}
		return assignment, nil
	})
	if err != nil {
		return entities.Resolution{State: entities.ResolutionUnknown}, err
	}

	if result == nil {
		return entities.Resolution{State: entities.ResolutionNone}, nil
	}

	assignment := result.(*entities.RoleAssignment)
	return entities.Resolution{
		State: entities.ResolutionResolved,
		Role:  assignment.Role,
	}, nil
}

// ResolveOrFallback resolves the role, substituting the configured
// fallback role when the lookup itself fails. The substitution is
// visible on the resolution and in the logs.
func (s *RoleService) ResolveOrFallback(ctx context.Context, userID string) entities.Resolution {
	resolution, err := s.Resolve(ctx, userID)
	if err == nil {
		return resolution
	}

	logger := observability.LoggerFromContext(ctx)

	if !s.fallbackEnabled {
		logger.Error().Err(err).Str("user_id", userID).Msg("Role lookup failed, fallback disabled")
		return entities.Resolution{State: entities.ResolutionUnknown}
	}

	logger.Warn().
		Err(err).
		Str("user_id", userID).
		Str("fallback_role", string(s.fallbackRole)).
		Msg("Role lookup failed, falling back to default role")

	if s.metrics != nil {
		observability.RecordRoleFallback(ctx, s.metrics, string(s.fallbackRole))
	}

	return entities.Resolution{
		State:    entities.ResolutionResolved,
		Role:     s.fallbackRole,
		Fallback: true,
	}
}
