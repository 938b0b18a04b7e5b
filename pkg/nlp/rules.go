package nlp

import "SuperApp/internal/entity"

// DefaultRules is the intent table. The first rule with a keyword contained
// in the input wins, so "收款二维码" resolves to COLLECT, not QRCODE.
func DefaultRules() []IntentRule {
	return []IntentRule{
		{
			ID:       entity.IntentCollect,
			Keywords: []string{"收款", "收钱", "collect", "receive"},
			Category: "payment",
			Examples: []string{"收款100元", "帮我收钱50", "collect 20 usdt", "用支付宝收款88"},
		},
		{
			ID:       entity.IntentTransfer,
			Keywords: []string{"转账", "转给", "汇款", "transfer", "send"},
			Category: "payment",
			Examples: []string{"转账给小明", "转给小红200元", "transfer 10 eth", "send 5 usdt"},
		},
		{
			ID:       entity.IntentBalance,
			Keywords: []string{"余额", "balance", "还有多少钱"},
			Category: "wallet",
			Examples: []string{"查一下余额", "what is my balance", "我还有多少钱"},
		},
		{
			ID:       entity.IntentPrice,
			Keywords: []string{"价格", "行情", "币价", "报价", "price", "quote"},
			Category: "market",
			Examples: []string{"比特币价格", "eth price", "今天以太坊行情"},
		},
		{
			ID:       entity.IntentQRCode,
			Keywords: []string{"二维码", "qrcode", "qr code", "扫码"},
			Category: "payment",
			Examples: []string{"生成二维码", "show my qrcode", "扫码付款30元"},
		},
		{
			ID:       entity.IntentHistory,
			Keywords: []string{"历史", "记录", "账单", "history"},
			Category: "wallet",
			Examples: []string{"查看历史", "最近的交易记录", "show history"},
		},
		{
			ID:       entity.IntentHelp,
			Keywords: []string{"帮助", "怎么用", "你能做什么", "help"},
			Category: "support",
			Examples: []string{"帮助", "你能做什么", "help me"},
		},
	}
}
