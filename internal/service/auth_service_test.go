package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

func TestAuthSignInOpensSession(t *testing.T) {
	sessions := newTestSessions(&stubData{}, nil)
	auth := &stubAuthenticator{session: testSession(models.RoleAdmin)}
	svc := NewAuthService(auth, sessions, nil, nil)

	us, err := svc.SignIn(context.Background(), nil, models.SignInRequest{Email: "admin@example.com", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, us)
	assert.True(t, us.Auth.IsAdmin())
	assert.Equal(t, "admin@example.com", us.Auth.User().Email)
	assert.Equal(t, 1, sessions.Count())
}

func TestAuthSignInValidation(t *testing.T) {
	auth := &stubAuthenticator{session: testSession(models.RoleUser)}
	svc := NewAuthService(auth, newTestSessions(&stubData{}, nil), nil, nil)

	_, err := svc.SignIn(context.Background(), nil, models.SignInRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.SignIn(context.Background(), nil, models.SignInRequest{Email: "user@example.com"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, auth.calls)
}

func TestAuthSignInInvalidCredentials(t *testing.T) {
	sessions := newTestSessions(&stubData{}, nil)
	auth := &stubAuthenticator{err: appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")}
	svc := NewAuthService(auth, sessions, nil, nil)

	us := sessions.Open()
	_, err := svc.SignIn(context.Background(), us, models.SignInRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	assert.False(t, us.Auth.IsAuthenticated())
}

func TestAuthSignInAsOtherUserResetsStore(t *testing.T) {
	start := time.Now().Add(time.Hour)
	data := &stubData{slots: []models.TimeSlot{{ID: "s", StartTime: start, EndTime: start.Add(time.Hour), IsAvailable: true}}}
	sessions := newTestSessions(data, nil)
	us := signedIn(sessions, models.RoleUser)
	require.NoError(t, us.Appointments.FetchSlots(context.Background()))
	require.Len(t, us.Appointments.Snapshot().Slots, 1)

	other := testSession(models.RoleUser)
	other.User.ID = "user-2"
	svc := NewAuthService(&stubAuthenticator{session: other}, sessions, nil, nil)

	_, err := svc.SignIn(context.Background(), us, models.SignInRequest{Email: "two@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, us.Appointments.Snapshot().Slots)
	assert.Equal(t, "user-2", us.Auth.User().ID)
}

func TestAuthSignOutClearsEvenOnRemoteFailure(t *testing.T) {
	persist := newMemoryPersistence()
	revoker := &stubRevoker{err: errors.New("network error")}
	sessions := NewSessionService(SessionConfig{Data: &stubData{}, Revoker: revoker, Persist: persist})
	us := signedIn(sessions, models.RoleUser)
	svc := NewAuthService(&stubAuthenticator{}, sessions, nil, nil)

	err := svc.SignOut(context.Background(), us)
	require.Error(t, err)
	assert.Equal(t, 1, revoker.calls)
	assert.False(t, us.Auth.IsAuthenticated())
	assert.Zero(t, sessions.Count())
	assert.False(t, persist.has(us.ID))
}

func TestAuthSignOutWithoutSession(t *testing.T) {
	svc := NewAuthService(&stubAuthenticator{}, newTestSessions(&stubData{}, nil), nil, nil)
	assert.NoError(t, svc.SignOut(context.Background(), nil))
}
