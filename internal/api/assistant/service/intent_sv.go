package assistantService

import (
	"SuperApp/internal/entity"
	"context"
	"fmt"
	"strings"
)

type HandlerResult struct {
	Text   string
	Action string
	Data   map[string]any
	Toast  string
}

// intentDef binds a rule id to its behaviour. required fields are asked for
// in order before the handler runs; holdPending keeps the asking command
// pending instead of completed.
type intentDef struct {
	required    []entity.SlotField
	holdPending bool
	extract     func(text string) entity.CommandParams
	prompt      func(field entity.SlotField, params entity.CommandParams) string
	run         func(ctx context.Context, sess *session, cmd *entity.Command) (*HandlerResult, error)
}

func (def intentDef) missing(params entity.CommandParams) (entity.SlotField, bool) {
	for _, field := range def.required {
		switch field {
		case entity.SlotAmount:
			if !params.HasAmount() {
				return field, true
			}
		case entity.SlotRecipient:
			if params.Recipient == "" {
				return field, true
			}
		}
	}
	return "", false
}

type quote struct {
	price  float64
	change float64
}

var (
	walletBalances = []struct {
		currency string
		amount   float64
	}{
		{"CNY", 12580.5},
		{"ETH", 0.85},
		{"USDT", 1200},
	}

	quotes = map[string]quote{
		"BTC":  {price: 67250, change: 2.35},
		"ETH":  {price: 3520.8, change: -1.12},
		"USDT": {price: 1, change: 0.01},
		"BNB":  {price: 592.4, change: 0.87},
		"SOL":  {price: 148.6, change: 4.21},
		"DOGE": {price: 0.1523, change: -3.05},
	}

	methodNames = map[string]string{
		"alipay": "支付宝",
		"wechat": "微信支付",
		"bank":   "银行转账",
		"crypto": "加密货币",
		"qrcode": "二维码",
	}
)

const helpText = "我可以帮您：收款（如“收款100元”）、转账（如“转账给小明100元”）、查询余额、查询币价（如“比特币价格”）、生成收款二维码、查看历史记录。"

func (s *assistantService) intentTable() map[entity.IntentID]intentDef {
	noParams := func(string) entity.CommandParams { return entity.CommandParams{} }

	return map[entity.IntentID]intentDef{
		entity.IntentCollect: {
			required: []entity.SlotField{entity.SlotAmount},
			extract:  s.extractPaymentParams,
			prompt: func(entity.SlotField, entity.CommandParams) string {
				return "请问要收款多少金额？"
			},
			run: s.handleCollect,
		},
		entity.IntentTransfer: {
			required:    []entity.SlotField{entity.SlotAmount, entity.SlotRecipient},
			holdPending: true,
			extract:     s.extractTransferParams,
			prompt:      transferPrompt,
			run:         s.handleTransfer,
		},
		entity.IntentBalance: {
			extract: noParams,
			run:     s.handleBalance,
		},
		entity.IntentPrice: {
			extract: func(text string) entity.CommandParams {
				return entity.CommandParams{Coin: s.extractor.ExtractCoin(text)}
			},
			run: s.handlePrice,
		},
		entity.IntentQRCode: {
			extract: s.extractPaymentParams,
			run:     s.handleQRCode,
		},
		entity.IntentHistory: {
			extract: noParams,
			run:     s.handleHistory,
		},
		entity.IntentHelp: {
			extract: noParams,
			run:     s.handleHelp,
		},
	}
}

func (s *assistantService) extractPaymentParams(text string) entity.CommandParams {
	params := entity.CommandParams{
		Currency: string(s.extractor.ExtractCurrency(text)),
		Method:   string(s.extractor.ExtractMethod(text)),
	}
	if amount, ok := s.extractor.ExtractAmount(text); ok {
		params.Amount = &amount
	}
	return params
}

func (s *assistantService) extractTransferParams(text string) entity.CommandParams {
	params := entity.CommandParams{
		Currency:  string(s.extractor.ExtractCurrency(text)),
		Recipient: s.extractor.ExtractRecipient(text),
	}
	if amount, ok := s.extractor.ExtractAmount(text); ok {
		params.Amount = &amount
	}
	return params
}

func transferPrompt(field entity.SlotField, params entity.CommandParams) string {
	if field == entity.SlotRecipient {
		return "请问要转给谁？"
	}
	if params.Recipient != "" {
		return fmt.Sprintf("请问要转给%s多少金额？", params.Recipient)
	}
	return "请问要转账多少金额？"
}

func (s *assistantService) handleCollect(ctx context.Context, sess *session, cmd *entity.Command) (*HandlerResult, error) {
	payment, err := s.createPaymentRequest(ctx, sess, cmd.Params)
	if err != nil {
		return nil, err
	}

	return &HandlerResult{
		Text: fmt.Sprintf("已创建收款请求：%s，收款方式：%s，等待付款",
			formatAmount(payment.Amount, payment.Currency), methodName(payment.Method)),
		Action: "payment_request_created",
		Data:   paymentData(payment),
		Toast:  "收款码已生成",
	}, nil
}

func (s *assistantService) handleQRCode(ctx context.Context, sess *session, cmd *entity.Command) (*HandlerResult, error) {
	params := cmd.Params
	if !params.HasAmount() {
		open := 0.0
		params.Amount = &open
		cmd.Params = params
	}

	payment, err := s.createPaymentRequest(ctx, sess, params)
	if err != nil {
		return nil, err
	}

	return &HandlerResult{
		Text:   fmt.Sprintf("已生成收款二维码：%s", formatAmount(payment.Amount, payment.Currency)),
		Action: "qrcode_generated",
		Data:   paymentData(payment),
		Toast:  "收款码已生成",
	}, nil
}

func (s *assistantService) handleTransfer(ctx context.Context, _ *session, cmd *entity.Command) (*HandlerResult, error) {
	reference, err := s.utils.NewULIDFromTimestamp(cmd.CreatedAt)
	if err != nil {
		return nil, err
	}

	params := cmd.Params
	amount := formatAmount(*params.Amount, params.Currency)

	return &HandlerResult{
		Text:   fmt.Sprintf("已向%s转账 %s，交易已提交", params.Recipient, amount),
		Action: "transfer_submitted",
		Data: map[string]any{
			"reference": reference,
			"recipient": params.Recipient,
			"amount":    *params.Amount,
			"currency":  params.Currency,
		},
		Toast: fmt.Sprintf("转账 %s 已提交", amount),
	}, nil
}

func (s *assistantService) handleBalance(_ context.Context, _ *session, _ *entity.Command) (*HandlerResult, error) {
	parts := make([]string, 0, len(walletBalances))
	data := make(map[string]any, len(walletBalances))
	for _, balance := range walletBalances {
		parts = append(parts, formatAmount(balance.amount, balance.currency))
		data[balance.currency] = balance.amount
	}

	return &HandlerResult{
		Text:   "您的钱包余额：" + strings.Join(parts, "，"),
		Action: "show_balance",
		Data:   data,
	}, nil
}

func (s *assistantService) handlePrice(_ context.Context, _ *session, cmd *entity.Command) (*HandlerResult, error) {
	coin := cmd.Params.Coin
	q, ok := quotes[coin]
	if !ok {
		coin = "BTC"
		q = quotes[coin]
	}

	return &HandlerResult{
		Text: fmt.Sprintf("%s 当前价格 %s，24小时涨跌 %+.2f%%",
			coin, formatAmount(q.price, "USD"), q.change),
		Action: "show_price",
		Data: map[string]any{
			"coin":   coin,
			"price":  q.price,
			"change": q.change,
		},
	}, nil
}

// handleHistory summarises earlier commands of the session, newest first.
func (s *assistantService) handleHistory(ctx context.Context, sess *session, cmd *entity.Command) (*HandlerResult, error) {
	all, err := sess.store.History.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	previous := make([]string, 0, len(all))
	for _, entry := range all {
		if entry.ID != cmd.ID {
			previous = append(previous, entry.RawText)
		}
	}

	if len(previous) == 0 {
		return &HandlerResult{
			Text:   "暂无历史记录",
			Action: "show_history",
			Data:   map[string]any{"count": 0},
		}, nil
	}

	recent := make([]string, 0, 3)
	for i := len(previous) - 1; i >= 0 && len(recent) < 3; i-- {
		recent = append(recent, previous[i])
	}

	return &HandlerResult{
		Text:   fmt.Sprintf("共有 %d 条指令记录，最近：%s", len(previous), strings.Join(recent, "；")),
		Action: "show_history",
		Data:   map[string]any{"count": len(previous), "recent": recent},
	}, nil
}

func (s *assistantService) handleHelp(_ context.Context, _ *session, _ *entity.Command) (*HandlerResult, error) {
	examples := make([]string, 0)
	for _, rule := range s.matcher.Rules() {
		if len(rule.Examples) > 0 {
			examples = append(examples, rule.Examples[0])
		}
	}

	return &HandlerResult{
		Text:   helpText,
		Action: "show_help",
		Data:   map[string]any{"examples": examples},
	}, nil
}

func methodName(method string) string {
	if name, ok := methodNames[method]; ok {
		return name
	}
	return method
}
