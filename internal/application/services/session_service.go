package services

import (
	"context"
	"errors"
	"sync"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
)

// SessionStore is the single authority on authentication state. All
// reads and writes of the current session funnel through it; observers
// are notified of every change exactly once, in order.
type SessionStore struct {
	backend providers.AuthBackend

	mu          sync.RWMutex
	session     *entities.Session
	initialized bool
	observers   []chan *entities.Session
}

// NewSessionStore creates a new session store
func NewSessionStore(backend providers.AuthBackend) *SessionStore {
	return &SessionStore{
		backend: backend,
	}
}

// Initialize fetches the persisted session for a previously issued
// token, exactly once per store. Later calls are no-ops so a racing
// auth event cannot double-apply the initial state.
func (s *SessionStore) Initialize(ctx context.Context, token string) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	if token == "" {
		s.setSession(ctx, nil)
		return nil
	}

	session, err := s.backend.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, providers.ErrSessionMissing) {
			s.setSession(ctx, nil)
			return nil
		}
		s.setSession(ctx, nil)
		return err
	}

	s.setSession(ctx, session)
	return nil
}

// SignUp creates a new account. It does not establish a session; the
// caller signs in afterwards.
func (s *SessionStore) SignUp(ctx context.Context, creds providers.Credentials) (*entities.User, error) {
	return s.backend.SignUp(ctx, creds)
}

// SignIn authenticates and installs the resulting session
func (s *SessionStore) SignIn(ctx context.Context, creds providers.Credentials) (*entities.Session, error) {
	session, err := s.backend.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}

	s.markInitialized()
	s.setSession(ctx, session)
	return session, nil
}

// SignOut clears the session. A backend report that the session is
// already gone is treated as success: the local state is cleared either
// way and the caller sees a signed-out store.
func (s *SessionStore) SignOut(ctx context.Context, token string) error {
	err := s.backend.SignOut(ctx, token)
	if err != nil && !errors.Is(err, providers.ErrSessionMissing) {
		return err
	}
	if errors.Is(err, providers.ErrSessionMissing) {
		logger := observability.LoggerFromContext(ctx)
		logger.Debug().Msg("Session already missing on sign-out, treating as signed out")
	}

	s.setSession(ctx, nil)
	return nil
}

// Current returns the session, or nil when signed out
func (s *SessionStore) Current() *entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Initialized reports whether the initial session fetch has completed
func (s *SessionStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Subscribe registers an observer of session changes. The returned
// channel receives the session (nil on sign-out) after every change
// until cancel is called.
func (s *SessionStore) Subscribe() (<-chan *entities.Session, func()) {
	ch := make(chan *entities.Session, 8)

	s.mu.Lock()
	s.observers = append(s.observers, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, observer := range s.observers {
			if observer == ch {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				close(ch)
				return
			}
		}
	}

	return ch, cancel
}

func (s *SessionStore) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

func (s *SessionStore) setSession(ctx context.Context, session *entities.Session) {
	s.mu.Lock()
	s.session = session
	observers := make([]chan *entities.Session, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	logEvent(ctx, session)

	for _, observer := range observers {
		select {
		case observer <- session:
		default:
			// Observer not keeping up; it will catch up on the next read
		}
	}
}

func logEvent(ctx context.Context, session *entities.Session) {
	logger := observability.LoggerFromContext(ctx)
	if session == nil {
		logger.Debug().Msg("Session cleared")
		return
	}
	logger.Debug().Str("user_id", session.UserID).Msg("Session established")
}
