package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
)

func TestSessionStore_Initialize_RestoresSession(t *testing.T) {
	backend := new(MockAuthBackend)
	session := &entities.Session{Token: "tok-1", UserID: "user-1", Email: "a@b.com"}
	backend.On("GetSession", mock.Anything, "tok-1").Return(session, nil)

	store := services.NewSessionStore(backend)

	err := store.Initialize(context.Background(), "tok-1")

	assert.NoError(t, err)
	assert.True(t, store.Initialized())
	assert.Equal(t, session, store.Current())
}

func TestSessionStore_Initialize_OnlyOnce(t *testing.T) {
	backend := new(MockAuthBackend)
	session := &entities.Session{Token: "tok-1", UserID: "user-1"}
	backend.On("GetSession", mock.Anything, "tok-1").Return(session, nil).Once()

	store := services.NewSessionStore(backend)

	require.NoError(t, store.Initialize(context.Background(), "tok-1"))
	// Second call is a no-op regardless of token
	require.NoError(t, store.Initialize(context.Background(), "tok-2"))

	assert.Equal(t, session, store.Current())
	backend.AssertNumberOfCalls(t, "GetSession", 1)
}

func TestSessionStore_Initialize_MissingSessionIsSignedOut(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("GetSession", mock.Anything, "stale").Return(nil, providers.ErrSessionMissing)

	store := services.NewSessionStore(backend)

	err := store.Initialize(context.Background(), "stale")

	assert.NoError(t, err)
	assert.True(t, store.Initialized())
	assert.Nil(t, store.Current())
}

func TestSessionStore_SignIn_InstallsSession(t *testing.T) {
	backend := new(MockAuthBackend)
	creds := providers.Credentials{Email: "a@b.com", Password: "secret1"}
	session := &entities.Session{Token: "tok-1", UserID: "user-1", Email: "a@b.com"}
	backend.On("SignIn", mock.Anything, creds).Return(session, nil)

	store := services.NewSessionStore(backend)

	got, err := store.SignIn(context.Background(), creds)

	assert.NoError(t, err)
	assert.Equal(t, session, got)
	assert.Equal(t, session, store.Current())
	assert.True(t, store.Initialized(), "a sign-in settles the initial state")
}

func TestSessionStore_SignOut_Idempotent(t *testing.T) {
	backend := new(MockAuthBackend)
	creds := providers.Credentials{Email: "a@b.com", Password: "secret1"}
	session := &entities.Session{Token: "tok-1", UserID: "user-1"}
	backend.On("SignIn", mock.Anything, creds).Return(session, nil)
	backend.On("SignOut", mock.Anything, "tok-1").Return(nil).Once()
	backend.On("SignOut", mock.Anything, "tok-1").Return(providers.ErrSessionMissing)

	store := services.NewSessionStore(backend)
	_, err := store.SignIn(context.Background(), creds)
	require.NoError(t, err)

	assert.NoError(t, store.SignOut(context.Background(), "tok-1"))
	assert.Nil(t, store.Current())

	// Second sign-out finds the session already gone; still success
	assert.NoError(t, store.SignOut(context.Background(), "tok-1"))
	assert.Nil(t, store.Current())
}

func TestSessionStore_SignOut_RealFailurePropagates(t *testing.T) {
	backend := new(MockAuthBackend)
	backend.On("SignOut", mock.Anything, "tok-1").Return(errors.New("backend down"))

	store := services.NewSessionStore(backend)

	err := store.SignOut(context.Background(), "tok-1")

	assert.Error(t, err)
}

func TestSessionStore_Subscribe_ObservesChanges(t *testing.T) {
	backend := new(MockAuthBackend)
	creds := providers.Credentials{Email: "a@b.com", Password: "secret1"}
	session := &entities.Session{Token: "tok-1", UserID: "user-1"}
	backend.On("SignIn", mock.Anything, creds).Return(session, nil)
	backend.On("SignOut", mock.Anything, "tok-1").Return(nil)

	store := services.NewSessionStore(backend)
	ch, cancel := store.Subscribe()
	defer cancel()

	_, err := store.SignIn(context.Background(), creds)
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, session, got)
	case <-time.After(time.Second):
		t.Fatal("expected sign-in notification")
	}

	require.NoError(t, store.SignOut(context.Background(), "tok-1"))

	select {
	case got := <-ch:
		assert.Nil(t, got, "sign-out notifies with a nil session")
	case <-time.After(time.Second):
		t.Fatal("expected sign-out notification")
	}
}

func TestSessionStore_Subscribe_CancelStopsDelivery(t *testing.T) {
	backend := new(MockAuthBackend)
	creds := providers.Credentials{Email: "a@b.com", Password: "secret1"}
	backend.On("SignIn", mock.Anything, creds).Return(&entities.Session{Token: "tok-1"}, nil)

	store := services.NewSessionStore(backend)
	ch, cancel := store.Subscribe()
	cancel()

	_, err := store.SignIn(context.Background(), creds)
	require.NoError(t, err)

	_, open := <-ch
	assert.False(t, open, "cancelled observer channel is closed")
}
