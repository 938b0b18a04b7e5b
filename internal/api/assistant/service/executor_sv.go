package assistantService

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	contextPkg "SuperApp/pkg/context"
	"SuperApp/pkg/nlp"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	notUnderstoodText = "抱歉，我没有理解您的指令。您可以说“帮助”查看可用指令。"
	cancelledText     = "指令已取消"
	failedText        = "指令执行失败，请稍后重试"
)

// Submit resolves one utterance. Commands of a session run one at a time.
func (s *assistantService) Submit(ctx context.Context, sessionID string, text string) (*assistant.CommandResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, assistant.ErrEmptyCommand
	}

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return nil, assistant.ErrSessionNotFound
	}
	sess.info.LastActivity = time.Now()

	ctx = contextPkg.WithSessionID(ctx, sessionID)

	cmd, err := s.execute(ctx, sess, text)
	if err != nil {
		return nil, err
	}

	resp := &assistant.CommandResponse{Command: *cmd}
	if sess.slot != nil {
		slot := *sess.slot
		resp.Awaiting = &slot
	}
	if active, ok := sess.store.Payments.Active(ctx); ok {
		resp.ActivePayment = &active
	}

	return resp, nil
}

func (s *assistantService) execute(ctx context.Context, sess *session, text string) (*entity.Command, error) {
	requestID := contextPkg.GetRequestID(ctx)

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate command id")
		return nil, assistant.ErrInternalServerError
	}

	cmd := &entity.Command{
		ID:        id,
		SessionID: sess.info.ID,
		RawText:   text,
		Status:    entity.CommandPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := sess.store.History.Append(ctx, *cmd); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"command_id": cmd.ID,
			"error":      err.Error(),
		}).Error("Failed to append command to history")
		return nil, err
	}

	rule, ok := s.matcher.Match(text)
	if !ok {
		return s.fallback(ctx, sess, cmd)
	}

	def := s.intents[rule.ID]
	cmd.IntentID = rule.ID
	cmd.Params = def.extract(text)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"command_id": cmd.ID,
		"intent":     rule.ID,
	}).Debug("Intent matched")

	return s.dispatch(ctx, sess, cmd, def, "")
}

// fallback handles unmatched input. An outstanding follow-up is satisfied by
// a bare amount, or by any text when it asks for a recipient; otherwise the
// command completes with the static not-understood reply.
func (s *assistantService) fallback(ctx context.Context, sess *session, cmd *entity.Command) (*entity.Command, error) {
	if slot := sess.slot; slot != nil {
		params, ok := s.fillSlot(*slot, cmd.RawText)
		if ok {
			sess.slot = nil
			cmd.IntentID = slot.IntentID
			cmd.Params = params

			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"command_id": cmd.ID,
				"intent":     slot.IntentID,
				"field":      slot.Field,
			}).Debug("Follow-up satisfied")

			return s.dispatch(ctx, sess, cmd, s.intents[slot.IntentID], slot.CommandID)
		}
	}

	cmd.Status = entity.CommandCompleted
	cmd.Response = notUnderstoodText
	cmd.Action = "fallback"
	if err := s.save(ctx, sess, cmd); err != nil {
		return nil, err
	}

	s.emitResponse(ctx, cmd, "")
	return cmd, nil
}

func (s *assistantService) fillSlot(slot entity.AwaitingSlot, text string) (entity.CommandParams, bool) {
	params := slot.Params

	switch slot.Field {
	case entity.SlotAmount:
		amount, ok := s.extractor.ExtractAmount(text)
		if !ok {
			return params, false
		}
		params.Amount = &amount

		if currency := s.extractor.ExtractCurrency(text); currency != s.extractor.LocalCurrency() {
			params.Currency = string(currency)
		}
		if params.Recipient == "" {
			params.Recipient = s.extractor.ExtractRecipient(text)
		}
		return params, true

	case entity.SlotRecipient:
		if _, ok := s.extractor.ExtractAmount(text); ok {
			return params, false
		}

		recipient := s.extractor.ExtractRecipient(text)
		if recipient == "" {
			recipient = nlp.FirstToken(text)
		}
		if recipient == "" {
			return params, false
		}
		params.Recipient = recipient
		return params, true
	}

	return params, false
}

// dispatch asks for the first missing required field or runs the handler.
// originID is the command that opened the follow-up chain, if any.
func (s *assistantService) dispatch(
	ctx context.Context,
	sess *session,
	cmd *entity.Command,
	def intentDef,
	originID string,
) (*entity.Command, error) {
	if field, missing := def.missing(cmd.Params); missing {
		return s.askFollowUp(ctx, sess, cmd, def, field, originID)
	}
	return s.run(ctx, sess, cmd, def, originID)
}

func (s *assistantService) askFollowUp(
	ctx context.Context,
	sess *session,
	cmd *entity.Command,
	def intentDef,
	field entity.SlotField,
	originID string,
) (*entity.Command, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return s.fail(ctx, sess, cmd, err)
	}

	slotOwner := cmd.ID
	if originID != "" {
		slotOwner = originID
	}

	sess.slot = &entity.AwaitingSlot{
		IntentID:  cmd.IntentID,
		Field:     field,
		CommandID: slotOwner,
		Params:    cmd.Params,
		CreatedAt: time.Now(),
	}

	cmd.Response = def.prompt(field, cmd.Params)
	cmd.Action = "ask_" + string(field)
	cmd.Data = map[string]any{"awaiting": string(field)}

	// Only the command that opened the chain is held pending; answers that
	// lead to another question are done.
	if !def.holdPending || originID != "" {
		cmd.Status = entity.CommandCompleted
	}

	if err := s.save(ctx, sess, cmd); err != nil {
		return nil, err
	}

	s.emitResponse(ctx, cmd, "")
	return cmd, nil
}

func (s *assistantService) run(
	ctx context.Context,
	sess *session,
	cmd *entity.Command,
	def intentDef,
	originID string,
) (*entity.Command, error) {
	cmd.Status = entity.CommandExecuting
	if err := s.save(ctx, sess, cmd); err != nil {
		return nil, err
	}

	if err := s.simulateLatency(ctx); err != nil {
		return s.fail(ctx, sess, cmd, err)
	}

	result, err := def.run(ctx, sess, cmd)
	if err != nil {
		return s.fail(ctx, sess, cmd, err)
	}

	cmd.Status = entity.CommandCompleted
	cmd.Response = result.Text
	cmd.Action = result.Action
	cmd.Data = result.Data
	if err := s.save(ctx, sess, cmd); err != nil {
		return nil, err
	}

	if originID != "" && originID != cmd.ID {
		s.completeOrigin(ctx, sess, originID, cmd)
	}

	s.emitResponse(ctx, cmd, result.Toast)
	return cmd, nil
}

// completeOrigin closes the command that asked the first question of a
// follow-up chain, unless it already reached a final status.
func (s *assistantService) completeOrigin(ctx context.Context, sess *session, originID string, answer *entity.Command) {
	origin, err := sess.store.History.Get(ctx, originID)
	if err != nil || origin.Status.IsTerminal() {
		return
	}

	origin.Status = entity.CommandCompleted
	origin.Params = answer.Params
	origin.Response = answer.Response
	origin.Action = answer.Action
	origin.Data = answer.Data
	origin.UpdatedAt = time.Now()

	if err := sess.store.History.Update(ctx, origin); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"command_id": originID,
			"error":      err.Error(),
		}).Warn("Failed to complete originating command")
	}
}

// fail marks the command failed. A cancelled context is reported as
// ErrCommandCancelled.
func (s *assistantService) fail(ctx context.Context, sess *session, cmd *entity.Command, cause error) (*entity.Command, error) {
	cancelled := errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded)

	cmd.Status = entity.CommandFailed
	cmd.Response = failedText
	if cancelled {
		cmd.Response = cancelledText
	}

	saveCtx := context.WithoutCancel(ctx)
	if err := s.save(saveCtx, sess, cmd); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"command_id": cmd.ID,
		"intent":     cmd.IntentID,
		"error":      cause.Error(),
	}).Warn("Command failed")

	s.emitResponse(saveCtx, cmd, "")

	if cancelled {
		return nil, assistant.ErrCommandCancelled
	}
	return nil, assistant.ErrInternalServerError
}

func (s *assistantService) save(ctx context.Context, sess *session, cmd *entity.Command) error {
	cmd.UpdatedAt = time.Now()
	if err := sess.store.History.Update(ctx, *cmd); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"command_id": cmd.ID,
			"status":     cmd.Status,
			"error":      err.Error(),
		}).Error("Failed to update command history")
		return err
	}
	return nil
}

// simulateLatency stands in for the network round trip of a real handler.
func (s *assistantService) simulateLatency(ctx context.Context) error {
	if s.config.HandlerLatency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.config.HandlerLatency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// emitResponse forwards the reply to the output collaborators. Completed
// commands also raise a toast.
func (s *assistantService) emitResponse(ctx context.Context, cmd *entity.Command, toast string) {
	data := map[string]any{
		"command_id": cmd.ID,
		"status":     string(cmd.Status),
	}
	if cmd.IntentID != "" {
		data["intent_id"] = string(cmd.IntentID)
	}
	if cmd.Action != "" {
		data["action"] = cmd.Action
	}

	s.notifier.Publish(ctx, entity.AssistantEvent{
		SessionID: cmd.SessionID,
		Kind:      entity.EventResponse,
		Text:      cmd.Response,
		Data:      data,
	})

	if cmd.Status != entity.CommandCompleted {
		return
	}

	if toast == "" {
		toast = cmd.Response
	}
	s.notifier.Publish(ctx, entity.AssistantEvent{
		SessionID: cmd.SessionID,
		Kind:      entity.EventToast,
		Text:      toast,
		Data:      map[string]any{"command_id": cmd.ID},
	})
}
