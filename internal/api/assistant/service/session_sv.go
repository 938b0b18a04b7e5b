package assistantService

import (
	"SuperApp/internal/api/assistant"
	assistantRepository "SuperApp/internal/api/assistant/repository"
	"SuperApp/internal/entity"
	contextPkg "SuperApp/pkg/context"
	jwtPkg "SuperApp/pkg/jwt"
	"SuperApp/pkg/scheduler"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// session is one conversation. mu serialises command execution; settlement
// timers never take it.
type session struct {
	mu     sync.Mutex
	info   entity.AssistantSession
	slot   *entity.AwaitingSlot
	tasks  *scheduler.Scheduler
	store  assistantRepository.Client
	closed bool
}

func (s *assistantService) CreateSession(ctx context.Context) (*assistant.CreateSessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.config.MaxSessions > 0 && s.sessionCount() >= s.config.MaxSessions {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"limit":      s.config.MaxSessions,
		}).Warn("Session limit reached")
		return nil, assistant.ErrSessionLimitReached
	}

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate session id")
		return nil, assistant.ErrInternalServerError
	}

	token, expiresAt, err := jwtPkg.SignSession(id, s.config.SessionTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign session token")
		return nil, assistant.ErrInternalServerError
	}

	sess := &session{
		info: entity.AssistantSession{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
			ExpiresAt:    expiresAt,
		},
		tasks: scheduler.New(),
		store: s.repo.Open(id),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": id,
	}).Info("Assistant session created")

	return &assistant.CreateSessionResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *assistantService) GetSession(ctx context.Context, sessionID string) (*entity.AssistantSession, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	info := sess.info
	sess.mu.Unlock()

	return &info, nil
}

// CloseSession cancels every pending settlement and forgets the session's
// history and payment requests.
func (s *assistantService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return assistant.ErrSessionNotFound
	}

	s.teardown(sess)

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": sessionID,
	}).Info("Assistant session closed")

	return nil
}

func (s *assistantService) Subscribe(ctx context.Context, sessionID string) (<-chan entity.AssistantEvent, func(), error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, nil, err
	}

	events, cancel := s.notifier.Subscribe(sessionID)
	return events, cancel, nil
}

// Run purges expired sessions until ctx is done, then tears down the rest.
func (s *assistantService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return
		case now := <-ticker.C:
			if purged := s.purgeExpired(now); purged > 0 {
				s.log.WithField("purged", purged).Info("Expired assistant sessions purged")
			}
		}
	}
}

func (s *assistantService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		s.teardown(sess)
	}
}

func (s *assistantService) purgeExpired(now time.Time) int {
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if now.After(sess.info.ExpiresAt) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.teardown(sess)
	}

	return len(expired)
}

func (s *assistantService) teardown(sess *session) {
	sess.tasks.Stop()

	sess.mu.Lock()
	sess.closed = true
	sess.slot = nil
	sess.mu.Unlock()

	s.repo.Drop(sess.info.ID)
}

// getSession resolves a live session. ExpiresAt is fixed at creation, so it
// is safe to read without the session lock.
func (s *assistantService) getSession(ctx context.Context, sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
		}).Debug("Session not found")
		return nil, assistant.ErrSessionNotFound
	}

	if time.Now().After(sess.info.ExpiresAt) {
		return nil, assistant.ErrSessionExpired
	}

	return sess, nil
}

func (s *assistantService) sessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
