package assistantRepository

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	contextPkg "SuperApp/pkg/context"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// paymentRepository is the per-session registry of payment requests. The
// active request is the most recently created one; superseded entries stay
// addressable by id.
type paymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*entity.PaymentRequest
	activeID string
	log      *logrus.Logger
}

func newPaymentRepository(log *logrus.Logger) *paymentRepository {
	return &paymentRepository{
		payments: make(map[string]*entity.PaymentRequest),
		log:      log,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment entity.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[payment.ID]; exists {
		return assistant.ErrDuplicateID
	}

	stored := payment
	r.payments[payment.ID] = &stored

	if r.activeID != "" {
		r.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"previous_id": r.activeID,
			"payment_id":  payment.ID,
		}).Debug("Payment request superseded")
	}
	r.activeID = payment.ID

	return nil
}

func (r *paymentRepository) Get(_ context.Context, id string) (entity.PaymentRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return entity.PaymentRequest{}, assistant.ErrPaymentNotFound
	}
	return *payment, nil
}

func (r *paymentRepository) Active(_ context.Context) (entity.PaymentRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return entity.PaymentRequest{}, false
	}
	return *r.payments[r.activeID], true
}

// MarkPaid moves a waiting request to paid. changed is false when the request
// had already left waiting, so a repeated settlement is a no-op. active reports
// whether id was the active request at the moment it was settled.
func (r *paymentRepository) MarkPaid(_ context.Context, id string, at time.Time) (entity.PaymentRequest, bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return entity.PaymentRequest{}, false, false, assistant.ErrPaymentNotFound
	}

	active := r.activeID == id
	if payment.Status != entity.PaymentWaiting {
		return *payment, false, active, nil
	}

	paidAt := at
	payment.Status = entity.PaymentPaid
	payment.PaidAt = &paidAt

	return *payment, true, active, nil
}
