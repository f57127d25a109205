package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	redisclient "github.com/kllinic/marketplace/internal/infrastructure/clients/redis"
	"github.com/kllinic/marketplace/pkg/config"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

const sessionKeyPrefix = "session:"

// JWTBackend implements the AuthBackend provider with signed tokens and
// Redis-persisted sessions. The token carries the session id; the
// session row in Redis is the source of truth for liveness, so sign-out
// takes effect immediately.
type JWTBackend struct {
	users      repositories.UserRepository
	redis      *redisclient.Client
	secret     []byte
	tokenTTL   time.Duration
	sessionTTL time.Duration
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTBackend creates a new auth backend
func NewJWTBackend(users repositories.UserRepository, redisClient *redisclient.Client, cfg *config.AuthConfig) (providers.AuthBackend, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth: AUTH_JWT_SECRET is required")
	}
	return &JWTBackend{
		users:      users,
		redis:      redisClient,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		sessionTTL: cfg.SessionTTL,
	}, nil
}

// SignUp creates an account
func (b *JWTBackend) SignUp(ctx context.Context, creds providers.Credentials) (*entities.User, error) {
	email := strings.TrimSpace(strings.ToLower(creds.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid email address")
	}
	if len(creds.Password) < 6 {
		return nil, apperrors.NewValidationError("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	user := &entities.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := b.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn verifies credentials and issues a session
func (b *JWTBackend) SignIn(ctx context.Context, creds providers.Credentials) (*entities.Session, error) {
	email := strings.TrimSpace(strings.ToLower(creds.Email))

	user, err := b.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	sessionID := uuid.New().String()
	expiresAt := time.Now().Add(b.tokenTTL)

	claims := sessionClaims{
		SessionID: sessionID,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sign token", err)
	}

	session := &entities.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal session", err)
	}
	if err := b.redis.Client().Set(ctx, sessionKeyPrefix+sessionID, payload, b.sessionTTL).Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to persist session", err)
	}

	return session, nil
}

// GetSession resolves a token to its persisted session
func (b *JWTBackend) GetSession(ctx context.Context, token string) (*entities.Session, error) {
	claims, err := b.parseToken(token)
	if err != nil {
		return nil, providers.ErrSessionMissing
	}

	payload, err := b.redis.Client().Get(ctx, sessionKeyPrefix+claims.SessionID).Bytes()
	if err == redis.Nil {
		return nil, providers.ErrSessionMissing
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read session", err)
	}

	var session entities.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal session", err)
	}
	if session.Expired(time.Now()) {
		return nil, providers.ErrSessionMissing
	}

	return &session, nil
}

// SignOut destroys the persisted session
func (b *JWTBackend) SignOut(ctx context.Context, token string) error {
	claims, err := b.parseToken(token)
	if err != nil {
		return providers.ErrSessionMissing
	}

	deleted, err := b.redis.Client().Del(ctx, sessionKeyPrefix+claims.SessionID).Result()
	if err != nil {
		return apperrors.NewInternalError("failed to delete session", err)
	}
	if deleted == 0 {
		return providers.ErrSessionMissing
	}
	return nil
}

func (b *JWTBackend) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
