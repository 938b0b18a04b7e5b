package assistantRepository

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Repository keeps session-lifetime state in memory. Nothing outlives the
// process.
type Repository interface {
	Open(sessionID string) Client
	Get(sessionID string) (Client, error)
	Drop(sessionID string)
	Count() int
}

type HistoryStore interface {
	Append(ctx context.Context, cmd entity.Command) error
	Update(ctx context.Context, cmd entity.Command) error
	Get(ctx context.Context, id string) (entity.Command, error)
	List(ctx context.Context, limit int) ([]entity.Command, error)
	Count(ctx context.Context) int
}

type PaymentStore interface {
	Create(ctx context.Context, payment entity.PaymentRequest) error
	Get(ctx context.Context, id string) (entity.PaymentRequest, error)
	Active(ctx context.Context) (entity.PaymentRequest, bool)
	MarkPaid(ctx context.Context, id string, at time.Time) (payment entity.PaymentRequest, changed bool, active bool, err error)
}

type Client struct {
	History  HistoryStore
	Payments PaymentStore
}

type sessionStore struct {
	history  *historyRepository
	payments *paymentRepository
}

type repository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionStore
	log      *logrus.Logger
}

func New(log *logrus.Logger) Repository {
	return &repository{
		sessions: make(map[string]*sessionStore),
		log:      log,
	}
}

// Open returns the stores of a session, creating them on first use.
func (r *repository) Open(sessionID string) Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.sessions[sessionID]
	if !ok {
		store = &sessionStore{
			history:  newHistoryRepository(r.log),
			payments: newPaymentRepository(r.log),
		}
		r.sessions[sessionID] = store
	}

	return Client{History: store.history, Payments: store.payments}
}

func (r *repository) Get(sessionID string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.sessions[sessionID]
	if !ok {
		return Client{}, assistant.ErrSessionNotFound
	}

	return Client{History: store.history, Payments: store.payments}, nil
}

func (r *repository) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

func (r *repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
