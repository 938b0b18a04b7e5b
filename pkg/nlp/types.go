package nlp

import "SuperApp/internal/entity"

type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyUSDT Currency = "USDT"
	CurrencyETH  Currency = "ETH"
	CurrencyBTC  Currency = "BTC"
	CurrencyCNY  Currency = "CNY"
)

type Method string

const (
	MethodAlipay Method = "alipay"
	MethodWechat Method = "wechat"
	MethodBank   Method = "bank"
	MethodCrypto Method = "crypto"
	MethodQRCode Method = "qrcode"
)

// IntentRule is one row of the ordered rule table. Examples double as the
// regression corpus for the matcher.
type IntentRule struct {
	ID       entity.IntentID `json:"id"`
	Keywords []string        `json:"keywords"`
	Category string          `json:"category"`
	Examples []string        `json:"examples"`
}

type keywordSet[T any] struct {
	value    T
	keywords []string
}

type IMatcher interface {
	Match(text string) (*IntentRule, bool)
	Rules() []IntentRule
}

type IExtractor interface {
	ExtractAmount(text string) (float64, bool)
	ExtractCurrency(text string) Currency
	ExtractMethod(text string) Method
	ExtractRecipient(text string) string
	ExtractCoin(text string) string
	LocalCurrency() Currency
}
