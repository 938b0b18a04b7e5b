package assistantService

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	contextPkg "SuperApp/pkg/context"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const paymentScheme = "superapp://pay?"

// createPaymentRequest registers a waiting request as the active one and
// schedules its simulated settlement. The task of a superseded request is
// cancelled and that request stays waiting.
func (s *assistantService) createPaymentRequest(ctx context.Context, sess *session, params entity.CommandParams) (entity.PaymentRequest, error) {
	requestID := contextPkg.GetRequestID(ctx)

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.PaymentRequest{}, err
	}

	var amount float64
	if params.Amount != nil {
		amount = *params.Amount
	}

	currency := params.Currency
	if currency == "" {
		currency = string(s.extractor.LocalCurrency())
	}
	method := params.Method
	if method == "" {
		method = "qrcode"
	}

	payment := entity.PaymentRequest{
		ID:        id,
		SessionID: sess.info.ID,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Status:    entity.PaymentWaiting,
		CreatedAt: now,
	}
	payment.Payload = paymentPayload(payment)

	previous, hadPrevious := sess.store.Payments.Active(ctx)

	if err := sess.store.Payments.Create(ctx, payment); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"payment_id": id,
			"error":      err.Error(),
		}).Error("Failed to register payment request")
		return entity.PaymentRequest{}, err
	}

	if hadPrevious && sess.tasks.Cancel(previous.ID) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"payment_id": previous.ID,
		}).Debug("Settlement of superseded payment request cancelled")
	}

	sessionID := sess.info.ID
	sess.tasks.Schedule(payment.ID, s.config.SettlementDelay, func() {
		s.settlePayment(sess, sessionID, payment.ID)
	})

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"payment_id": payment.ID,
		"amount":     payment.Amount,
		"currency":   payment.Currency,
	}).Info("Payment request created")

	return payment, nil
}

// settlePayment runs on the scheduler goroutine. It settles its own entry
// exactly once and announces it only when that entry was the active one at
// the moment it was marked paid.
func (s *assistantService) settlePayment(sess *session, sessionID, paymentID string) {
	ctx := contextPkg.WithSessionID(context.Background(), sessionID)

	paid, changed, active, err := sess.store.Payments.MarkPaid(ctx, paymentID, time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"payment_id": paymentID,
			"error":      err.Error(),
		}).Error("Failed to settle payment request")
		return
	}
	if !changed {
		return
	}

	if !active {
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"payment_id": paymentID,
		}).Debug("Superseded payment request settled silently")
		return
	}

	text := fmt.Sprintf("收到付款 %s", formatAmount(paid.Amount, paid.Currency))
	data := paymentData(paid)

	s.notifier.Publish(ctx, entity.AssistantEvent{
		SessionID: sessionID,
		Kind:      entity.EventPayment,
		Text:      text,
		Data:      data,
	})
	s.notifier.Publish(ctx, entity.AssistantEvent{
		SessionID: sessionID,
		Kind:      entity.EventToast,
		Text:      text,
		Data:      map[string]any{"payment_id": paymentID},
	})
}

func (s *assistantService) ActivePayment(ctx context.Context, sessionID string) (*assistant.PaymentResponse, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	active, ok := sess.store.Payments.Active(ctx)
	if !ok {
		return nil, assistant.ErrNoActivePayment
	}

	return &assistant.PaymentResponse{Payment: active, Active: true}, nil
}

func (s *assistantService) GetPayment(ctx context.Context, sessionID string, paymentID string) (*assistant.PaymentResponse, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payment, err := sess.store.Payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	active, ok := sess.store.Payments.Active(ctx)
	return &assistant.PaymentResponse{
		Payment: payment,
		Active:  ok && active.ID == payment.ID,
	}, nil
}

// paymentPayload is the opaque string rendered as the QR code.
func paymentPayload(payment entity.PaymentRequest) string {
	values := url.Values{}
	values.Set("amount", strconv.FormatFloat(payment.Amount, 'f', -1, 64))
	values.Set("currency", payment.Currency)
	values.Set("method", payment.Method)
	values.Set("id", payment.ID)
	return paymentScheme + values.Encode()
}

func paymentData(payment entity.PaymentRequest) map[string]any {
	return map[string]any{
		"payment_id": payment.ID,
		"amount":     payment.Amount,
		"currency":   payment.Currency,
		"method":     payment.Method,
		"payload":    payment.Payload,
		"status":     string(payment.Status),
	}
}

// formatAmount renders 100 as "100 CNY" and 0.5 as "0.5 CNY".
func formatAmount(amount float64, currency string) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " " + currency
}
