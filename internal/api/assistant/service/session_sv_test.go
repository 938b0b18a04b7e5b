package assistantService

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	jwtPkg "SuperApp/pkg/jwt"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionIssuesToken(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.CreateSession(context.Background())
	require.NoError(t, err)

	sessionID, err := jwtPkg.ParseSessionToken(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, sessionID)
	assert.True(t, created.ExpiresAt.After(time.Now()))

	info, err := env.svc.GetSession(context.Background(), created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, info.ID)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	a := env.newSession(t)
	b := env.newSession(t)

	env.submit(t, a, "收款100元")

	history, err := env.svc.History(context.Background(), b, true)
	require.NoError(t, err)
	assert.Empty(t, history.Commands)

	_, err = env.svc.ActivePayment(context.Background(), b)
	assert.ErrorIs(t, err, assistant.ErrNoActivePayment)
}

func TestCloseSession(t *testing.T) {
	env := newTestEnv(t, func(c *AssistantConfig) {
		c.SettlementDelay = 20 * time.Millisecond
	})
	sessionID := env.newSession(t)
	env.submit(t, sessionID, "收款100元")

	require.NoError(t, env.svc.CloseSession(context.Background(), sessionID))

	_, err := env.svc.Submit(context.Background(), sessionID, "查一下余额")
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
	assert.ErrorIs(t, env.svc.CloseSession(context.Background(), sessionID), assistant.ErrSessionNotFound)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, env.sink.byKind(entity.EventPayment))
}

func TestSessionLimit(t *testing.T) {
	env := newTestEnv(t, func(c *AssistantConfig) {
		c.MaxSessions = 1
	})
	env.newSession(t)

	_, err := env.svc.CreateSession(context.Background())
	assert.ErrorIs(t, err, assistant.ErrSessionLimitReached)
}

func TestPurgeExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	assert.Equal(t, 0, env.svc.purgeExpired(time.Now()))
	assert.Equal(t, 1, env.svc.purgeExpired(time.Now().Add(2*time.Hour)))

	_, err := env.svc.GetSession(context.Background(), sessionID)
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t, func(c *AssistantConfig) {
		c.JanitorInterval = 5 * time.Millisecond
	})
	sessionID := env.newSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.svc.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	_, err := env.svc.GetSession(context.Background(), sessionID)
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
}

func TestSubscribeReceivesSessionEvents(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	events, cancel, err := env.svc.Subscribe(context.Background(), sessionID)
	require.NoError(t, err)
	defer cancel()

	env.submit(t, sessionID, "查一下余额")

	select {
	case event := <-events:
		assert.Equal(t, entity.EventResponse, event.Kind)
		assert.Equal(t, sessionID, event.SessionID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	_, _, err = env.svc.Subscribe(context.Background(), "unknown")
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
}

func TestIntentsListsRulesInOrder(t *testing.T) {
	env := newTestEnv(t)

	intents := env.svc.Intents().Intents
	require.Len(t, intents, 7)
	assert.Equal(t, entity.IntentCollect, intents[0].ID)
	assert.Equal(t, entity.IntentHelp, intents[6].ID)
}
