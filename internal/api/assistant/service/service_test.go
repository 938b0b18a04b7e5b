package assistantService

import (
	"SuperApp/internal/api/assistant"
	assistantRepository "SuperApp/internal/api/assistant/repository"
	"SuperApp/internal/entity"
	"SuperApp/pkg/nlp"
	"SuperApp/pkg/notifier"
	"SuperApp/pkg/utils"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []entity.AssistantEvent
}

func (r *recordingSink) Name() string {
	return "recording"
}

func (r *recordingSink) Publish(_ context.Context, event entity.AssistantEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) byKind(kind entity.EventKind) []entity.AssistantEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.AssistantEvent
	for _, event := range r.events {
		if event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, audio io.Reader) (string, error) {
	if _, err := io.ReadAll(audio); err != nil {
		return "", err
	}
	return f.text, f.err
}

type testEnv struct {
	svc         *assistantService
	sink        *recordingSink
	transcriber *fakeTranscriber
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEnv(t *testing.T, opts ...func(*AssistantConfig)) *testEnv {
	t.Helper()
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	config := &AssistantConfig{
		HandlerLatency:  0,
		SettlementDelay: time.Hour,
		SessionTTL:      time.Hour,
		JanitorInterval: time.Minute,
		AudioURLTTL:     time.Minute,
		LocalCurrency:   "CNY",
		DisplayLimit:    10,
	}
	for _, opt := range opts {
		opt(config)
	}

	log := quietLogger()
	sink := &recordingSink{}
	transcriber := &fakeTranscriber{}

	svc := NewAssistantService(
		log,
		assistantRepository.New(log),
		nlp.NewMatcher(nlp.DefaultRules()),
		nlp.NewExtractor(config.LocalCurrency),
		utils.New(),
		notifier.New(log, sink),
		transcriber,
		config,
	).(*assistantService)
	t.Cleanup(svc.Shutdown)

	return &testEnv{svc: svc, sink: sink, transcriber: transcriber}
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	created, err := e.svc.CreateSession(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	return created.SessionID
}

func (e *testEnv) submit(t *testing.T, sessionID, text string) *assistant.CommandResponse {
	t.Helper()
	resp, err := e.svc.Submit(context.Background(), sessionID, text)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) command(t *testing.T, sessionID, commandID string) entity.Command {
	t.Helper()
	history, err := e.svc.History(context.Background(), sessionID, true)
	require.NoError(t, err)
	for _, cmd := range history.Commands {
		if cmd.ID == commandID {
			return cmd
		}
	}
	t.Fatalf("command %s not in history", commandID)
	return entity.Command{}
}
