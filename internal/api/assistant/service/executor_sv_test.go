package assistantService

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	"SuperApp/pkg/notifier"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitCollectCreatesPaymentRequest(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	resp := env.submit(t, sessionID, "收款100元")

	cmd := resp.Command
	assert.Equal(t, entity.IntentCollect, cmd.IntentID)
	assert.Equal(t, entity.CommandCompleted, cmd.Status)
	require.True(t, cmd.Params.HasAmount())
	assert.Equal(t, 100.0, *cmd.Params.Amount)
	assert.Equal(t, "CNY", cmd.Params.Currency)
	assert.Contains(t, cmd.Response, "100")
	assert.Equal(t, "payment_request_created", cmd.Action)

	require.NotNil(t, resp.ActivePayment)
	assert.Equal(t, entity.PaymentWaiting, resp.ActivePayment.Status)
	assert.Equal(t, 100.0, resp.ActivePayment.Amount)
	assert.Equal(t, "CNY", resp.ActivePayment.Currency)
	assert.True(t, strings.HasPrefix(resp.ActivePayment.Payload, "superapp://pay?"))
	assert.Contains(t, resp.ActivePayment.Payload, "amount=100")
	assert.Contains(t, resp.ActivePayment.Payload, "id="+resp.ActivePayment.ID)
	assert.Nil(t, resp.Awaiting)

	toasts := env.sink.byKind(entity.EventToast)
	require.Len(t, toasts, 1)
	assert.Equal(t, "收款码已生成", toasts[0].Text)
	responses := env.sink.byKind(entity.EventResponse)
	require.Len(t, responses, 1)
	assert.Equal(t, cmd.Response, responses[0].Text)
}

func TestSubmitBalance(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	resp := env.submit(t, sessionID, "查一下余额")

	assert.Equal(t, entity.IntentBalance, resp.Command.IntentID)
	assert.Equal(t, entity.CommandCompleted, resp.Command.Status)
	assert.Equal(t, "您的钱包余额：12580.5 CNY，0.85 ETH，1200 USDT", resp.Command.Response)
	assert.Nil(t, resp.ActivePayment)
}

func TestSubmitTransferFollowUpByAmount(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	first := env.submit(t, sessionID, "转账给小明")
	assert.Equal(t, entity.IntentTransfer, first.Command.IntentID)
	assert.Equal(t, entity.CommandPending, first.Command.Status)
	assert.Equal(t, "请问要转给小明多少金额？", first.Command.Response)
	require.NotNil(t, first.Awaiting)
	assert.Equal(t, entity.IntentTransfer, first.Awaiting.IntentID)
	assert.Equal(t, entity.SlotAmount, first.Awaiting.Field)
	assert.Equal(t, first.Command.ID, first.Awaiting.CommandID)

	second := env.submit(t, sessionID, "100")
	assert.Equal(t, entity.IntentTransfer, second.Command.IntentID)
	assert.Equal(t, entity.CommandCompleted, second.Command.Status)
	assert.Equal(t, "已向小明转账 100 CNY，交易已提交", second.Command.Response)
	assert.Equal(t, "transfer_submitted", second.Command.Action)
	assert.Nil(t, second.Awaiting)

	origin := env.command(t, sessionID, first.Command.ID)
	assert.Equal(t, entity.CommandCompleted, origin.Status)
	assert.Equal(t, second.Command.Response, origin.Response)
}

func TestSubmitTransferAsksAmountThenRecipient(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	first := env.submit(t, sessionID, "转账")
	assert.Equal(t, entity.CommandPending, first.Command.Status)
	assert.Equal(t, "请问要转账多少金额？", first.Command.Response)

	second := env.submit(t, sessionID, "200")
	assert.Equal(t, entity.CommandCompleted, second.Command.Status)
	assert.Equal(t, "请问要转给谁？", second.Command.Response)
	require.NotNil(t, second.Awaiting)
	assert.Equal(t, entity.SlotRecipient, second.Awaiting.Field)
	assert.Equal(t, first.Command.ID, second.Awaiting.CommandID)
	assert.Equal(t, entity.CommandPending, env.command(t, sessionID, first.Command.ID).Status)

	third := env.submit(t, sessionID, "小红")
	assert.Equal(t, entity.CommandCompleted, third.Command.Status)
	assert.Equal(t, "已向小红转账 200 CNY，交易已提交", third.Command.Response)
	assert.Nil(t, third.Awaiting)
	assert.Equal(t, entity.CommandCompleted, env.command(t, sessionID, first.Command.ID).Status)
}

func TestSubmitCollectFollowUpCompletesImmediately(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	first := env.submit(t, sessionID, "收款")
	assert.Equal(t, entity.CommandCompleted, first.Command.Status)
	assert.Equal(t, "请问要收款多少金额？", first.Command.Response)
	assert.Equal(t, "ask_amount", first.Command.Action)
	require.NotNil(t, first.Awaiting)
	assert.Nil(t, first.ActivePayment)

	second := env.submit(t, sessionID, "50 usdt")
	assert.Equal(t, entity.IntentCollect, second.Command.IntentID)
	require.NotNil(t, second.ActivePayment)
	assert.Equal(t, 50.0, second.ActivePayment.Amount)
	assert.Equal(t, "USDT", second.ActivePayment.Currency)

	origin := env.command(t, sessionID, first.Command.ID)
	assert.Equal(t, "请问要收款多少金额？", origin.Response)
}

func TestSubmitUnmatched(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no keyword", text: "今天天气如何"},
		{name: "bare number without follow-up", text: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			sessionID := env.newSession(t)

			resp := env.submit(t, sessionID, tt.text)
			assert.Empty(t, resp.Command.IntentID)
			assert.Equal(t, entity.CommandCompleted, resp.Command.Status)
			assert.Equal(t, notUnderstoodText, resp.Command.Response)
			assert.Nil(t, resp.ActivePayment)
		})
	}
}

func TestUnmatchedTextWithoutAmountKeepsAmountSlot(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	env.submit(t, sessionID, "转账给小明")
	resp := env.submit(t, sessionID, "嗯")
	assert.Equal(t, notUnderstoodText, resp.Command.Response)
	require.NotNil(t, resp.Awaiting)

	done := env.submit(t, sessionID, "30")
	assert.Equal(t, "已向小明转账 30 CNY，交易已提交", done.Command.Response)
}

func TestNewFollowUpOverridesPrevious(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	transfer := env.submit(t, sessionID, "转账给小明")
	collect := env.submit(t, sessionID, "收款")
	require.NotNil(t, collect.Awaiting)
	assert.Equal(t, entity.IntentCollect, collect.Awaiting.IntentID)

	resp := env.submit(t, sessionID, "100")
	assert.Equal(t, entity.IntentCollect, resp.Command.IntentID)
	require.NotNil(t, resp.ActivePayment)
	assert.Equal(t, entity.CommandPending, env.command(t, sessionID, transfer.Command.ID).Status)
}

func TestUnrelatedCommandKeepsFollowUp(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	env.submit(t, sessionID, "转账给小明")
	balance := env.submit(t, sessionID, "查一下余额")
	require.NotNil(t, balance.Awaiting)

	resp := env.submit(t, sessionID, "100")
	assert.Equal(t, "已向小明转账 100 CNY，交易已提交", resp.Command.Response)
}

func TestSubmitQRCodeZeroAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "qrcode without amount", text: "生成二维码"},
		{name: "collect zero", text: "收款0元"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			sessionID := env.newSession(t)

			resp := env.submit(t, sessionID, tt.text)
			require.NotNil(t, resp.ActivePayment)
			assert.Equal(t, 0.0, resp.ActivePayment.Amount)
			assert.Contains(t, resp.Command.Response, "0 CNY")
			assert.Equal(t, entity.PaymentWaiting, resp.ActivePayment.Status)
		})
	}
}

func TestSubmitPrice(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	resp := env.submit(t, sessionID, "比特币价格")
	assert.Equal(t, entity.IntentPrice, resp.Command.IntentID)
	assert.Equal(t, "BTC", resp.Command.Params.Coin)
	assert.Equal(t, "BTC 当前价格 67250 USD，24小时涨跌 +2.35%", resp.Command.Response)

	resp = env.submit(t, sessionID, "eth price")
	assert.Equal(t, "ETH 当前价格 3520.8 USD，24小时涨跌 -1.12%", resp.Command.Response)
}

func TestSubmitHistorySummary(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	empty := env.submit(t, sessionID, "查看历史")
	assert.Equal(t, "暂无历史记录", empty.Command.Response)

	env.submit(t, sessionID, "帮助")
	env.submit(t, sessionID, "查一下余额")

	resp := env.submit(t, sessionID, "show history")
	assert.Equal(t, "共有 3 条指令记录，最近：查一下余额；帮助；查看历史", resp.Command.Response)
}

func TestSubmitHelp(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	resp := env.submit(t, sessionID, "你能做什么")
	assert.Equal(t, entity.IntentHelp, resp.Command.IntentID)
	assert.Equal(t, helpText, resp.Command.Response)
	assert.Len(t, resp.Command.Data["examples"], 7)
}

func TestSubmitEmptyText(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	_, err := env.svc.Submit(context.Background(), sessionID, "   ")
	assert.ErrorIs(t, err, assistant.ErrEmptyCommand)
}

func TestSubmitCancelledDuringLatency(t *testing.T) {
	env := newTestEnv(t, func(c *AssistantConfig) {
		c.HandlerLatency = time.Second
	})
	sessionID := env.newSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := env.svc.Submit(ctx, sessionID, "查一下余额")
	require.ErrorIs(t, err, assistant.ErrCommandCancelled)

	history, err := env.svc.History(context.Background(), sessionID, true)
	require.NoError(t, err)
	require.Len(t, history.Commands, 1)
	assert.Equal(t, entity.CommandFailed, history.Commands[0].Status)
	assert.Equal(t, cancelledText, history.Commands[0].Response)
	assert.Empty(t, env.sink.byKind(entity.EventToast))
}

func TestHistoryKeepsInsertionOrder(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.newSession(t)

	var texts []string
	for i := 0; i < 15; i++ {
		text := fmt.Sprintf("查一下余额 %d", i)
		texts = append(texts, text)
		env.submit(t, sessionID, text)
	}

	all, err := env.svc.History(context.Background(), sessionID, true)
	require.NoError(t, err)
	require.Len(t, all.Commands, 15)
	for i, cmd := range all.Commands {
		assert.Equal(t, texts[i], cmd.RawText)
	}

	recent, err := env.svc.History(context.Background(), sessionID, false)
	require.NoError(t, err)
	require.Len(t, recent.Commands, 10)
	assert.Equal(t, 15, recent.Total)
	assert.Equal(t, texts[5], recent.Commands[0].RawText)
	assert.Equal(t, texts[14], recent.Commands[9].RawText)
}

type slowPublisher struct {
	delay time.Duration
	mu    sync.Mutex
	count int
}

func (p *slowPublisher) Publish(ctx context.Context, _ string, _ []byte) error {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

func TestSubmitNotHeldUpBySlowBroker(t *testing.T) {
	env := newTestEnv(t)
	broker := &slowPublisher{delay: 300 * time.Millisecond}
	env.svc.notifier.AddSink(notifier.NewChannelSink(broker, ""))
	sessionID := env.newSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	resp, err := env.svc.Submit(ctx, sessionID, "收款100元")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, entity.CommandCompleted, resp.Command.Status)
	assert.Less(t, elapsed, 100*time.Millisecond)
	assert.NoError(t, ctx.Err())

	require.Eventually(t, func() bool {
		broker.mu.Lock()
		defer broker.mu.Unlock()
		return broker.count == 2
	}, 2*time.Second, 10*time.Millisecond)
}
