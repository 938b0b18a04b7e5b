package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

const recipientMarker = "给"

var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

type Extractor struct {
	localCurrency Currency
	currencies    []keywordSet[Currency]
	methods       []keywordSet[Method]
	coins         []keywordSet[string]
}

func NewExtractor(localCurrency string) *Extractor {
	local := Currency(strings.ToUpper(strings.TrimSpace(localCurrency)))
	if local == "" {
		local = CurrencyCNY
	}

	return &Extractor{
		localCurrency: local,
		// Order matters: every set is checked and a later match overwrites
		// an earlier one.
		currencies: []keywordSet[Currency]{
			{CurrencyUSD, []string{"usd", "美元", "美金", "dollar"}},
			{CurrencyUSDT, []string{"usdt", "泰达币"}},
			{CurrencyETH, []string{"eth", "以太"}},
			{CurrencyBTC, []string{"btc", "比特币"}},
		},
		methods: []keywordSet[Method]{
			{MethodAlipay, []string{"支付宝", "alipay"}},
			{MethodWechat, []string{"微信", "wechat", "weixin"}},
			{MethodBank, []string{"银行", "bank"}},
			{MethodCrypto, []string{"加密", "链上", "crypto"}},
		},
		coins: []keywordSet[string]{
			{"BTC", []string{"btc", "比特"}},
			{"ETH", []string{"eth", "以太"}},
			{"USDT", []string{"usdt", "泰达"}},
			{"BNB", []string{"bnb", "币安币"}},
			{"SOL", []string{"sol", "索拉纳"}},
			{"DOGE", []string{"doge", "狗狗币"}},
		},
	}
}

func (e *Extractor) LocalCurrency() Currency {
	return e.localCurrency
}

// ExtractAmount returns the first number in the text. Later numbers are
// ignored.
func (e *Extractor) ExtractAmount(text string) (float64, bool) {
	match := amountPattern.FindString(Normalize(text))
	if match == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	return amount, true
}

func (e *Extractor) ExtractCurrency(text string) Currency {
	return lastMatch(Normalize(text), e.currencies, e.localCurrency)
}

func (e *Extractor) ExtractMethod(text string) Method {
	return lastMatch(Normalize(text), e.methods, MethodQRCode)
}

// ExtractRecipient returns the first whitespace-delimited token after the
// recipient marker. "给小明100元" yields "小明100元".
func (e *Extractor) ExtractRecipient(text string) string {
	parts := strings.SplitN(fold(text), recipientMarker, 2)
	if len(parts) < 2 {
		return ""
	}

	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// ExtractCoin returns the first coin of the table mentioned in the text,
// BTC when none is.
func (e *Extractor) ExtractCoin(text string) string {
	normalized := Normalize(text)
	for _, coin := range e.coins {
		if containsAny(normalized, coin.keywords) {
			return coin.value
		}
	}
	return "BTC"
}

func lastMatch[T any](text string, sets []keywordSet[T], fallback T) T {
	result := fallback
	for _, set := range sets {
		if containsAny(text, set.keywords) {
			result = set.value
		}
	}
	return result
}
