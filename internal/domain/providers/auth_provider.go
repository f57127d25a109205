package providers

import (
	"context"
	"errors"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// ErrSessionMissing is returned by the auth backend when the referenced
// session no longer exists (expired server-side or already signed out).
// The session store treats it as a successful sign-out.
var ErrSessionMissing = errors.New("auth session missing")

// Credentials for sign-up and sign-in
type Credentials struct {
	Email    string
	Password string
}

// AuthBackend abstracts the hosted auth service: token issuance,
// session persistence and teardown.
type AuthBackend interface {
	// SignUp creates an account and returns the new user
	SignUp(ctx context.Context, creds Credentials) (*entities.User, error)

	// SignIn verifies credentials and issues a session
	SignIn(ctx context.Context, creds Credentials) (*entities.Session, error)

	// GetSession resolves a token to its persisted session. Returns
	// ErrSessionMissing when the token is unknown or expired.
	GetSession(ctx context.Context, token string) (*entities.Session, error)

	// SignOut destroys the persisted session. Returns
	// ErrSessionMissing when it was already gone.
	SignOut(ctx context.Context, token string) error
}
