package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

func TestSessionOpenAndLookup(t *testing.T) {
	gauge := &gaugeRecorder{}
	svc := NewSessionService(SessionConfig{Data: &stubData{}, Gauge: gauge})

	us := svc.Open()
	require.NotEmpty(t, us.ID)
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 1, gauge.last)

	found, err := svc.Lookup(context.Background(), us.ID)
	require.NoError(t, err)
	assert.Same(t, us, found)

	_, err = svc.Lookup(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Lookup(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSessionPersistsSignedInSessions(t *testing.T) {
	persist := newMemoryPersistence()
	svc := newTestSessions(&stubData{}, persist)

	us := svc.Open()
	assert.False(t, persist.has(us.ID), "anonymous sessions are not persisted")

	us.Auth.SetSession(testSession(models.RoleUser))
	assert.True(t, persist.has(us.ID))

	require.NoError(t, us.Auth.SignOut(context.Background()))
	assert.False(t, persist.has(us.ID))
}

func TestSessionRestoresFromPersistence(t *testing.T) {
	persist := newMemoryPersistence()
	first := newTestSessions(&stubData{}, persist)
	us := signedIn(first, models.RoleAdmin)

	restarted := newTestSessions(&stubData{}, persist)
	restored, err := restarted.Lookup(context.Background(), us.ID)
	require.NoError(t, err)
	require.True(t, restored.Auth.IsAuthenticated())
	assert.True(t, restored.Auth.IsAdmin())
	assert.Equal(t, "user-1", restored.Auth.User().ID)
	assert.Empty(t, restored.Appointments.Snapshot().Slots)
}

func TestSessionRegisterKeepsFirstEntry(t *testing.T) {
	svc := newTestSessions(&stubData{}, newMemoryPersistence())

	first, created := svc.register("sess-1", nil)
	require.True(t, created)
	second, created := svc.register("sess-1", nil)
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, svc.Count())
}

func TestSessionConcurrentRestoreSharesOneSession(t *testing.T) {
	persist := newMemoryPersistence()
	us := signedIn(newTestSessions(&stubData{}, persist), models.RoleUser)
	restarted := newTestSessions(&stubData{}, persist)

	const callers = 16
	found := make([]*UserSession, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			restored, err := restarted.Lookup(context.Background(), us.ID)
			if err == nil {
				found[i] = restored
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, found[0])
	for _, restored := range found {
		assert.Same(t, found[0], restored)
	}
	assert.Equal(t, 1, restarted.Count())
	assert.True(t, found[0].Auth.IsAuthenticated())
}

func TestSessionCloseRemovesEverywhere(t *testing.T) {
	persist := newMemoryPersistence()
	svc := newTestSessions(&stubData{}, persist)
	us := signedIn(svc, models.RoleUser)

	svc.Close(context.Background(), us.ID)
	assert.Zero(t, svc.Count())
	assert.False(t, persist.has(us.ID))

	_, err := svc.Lookup(context.Background(), us.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSessionSweepEvictsIdle(t *testing.T) {
	persist := newMemoryPersistence()
	svc := newTestSessions(&stubData{}, persist)
	base := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	idle := signedIn(svc, models.RoleUser)
	svc.now = func() time.Time { return base.Add(50 * time.Minute) }
	active := svc.Open()

	svc.now = func() time.Time { return base.Add(90 * time.Minute) }
	evicted := svc.Sweep(time.Hour)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, svc.Count())

	_, err := svc.Lookup(context.Background(), active.ID)
	require.NoError(t, err)

	// Persisted copy survives eviction and is restored on the next request.
	restored, err := svc.Lookup(context.Background(), idle.ID)
	require.NoError(t, err)
	assert.True(t, restored.Auth.IsAuthenticated())
}

func TestSessionRefreshTouchesSignedIn(t *testing.T) {
	persist := newMemoryPersistence()
	svc := newTestSessions(&stubData{}, persist)

	anonymous := svc.Open()
	svc.Refresh(context.Background(), anonymous)
	assert.Empty(t, persist.touched)

	us := signedIn(svc, models.RoleUser)
	svc.Refresh(context.Background(), us)
	assert.Equal(t, []string{us.ID}, persist.touched)
}

func TestSessionRunStopsOnCancel(t *testing.T) {
	svc := newTestSessions(&stubData{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
