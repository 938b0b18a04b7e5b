package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmount(t *testing.T) {
	extractor := NewExtractor("CNY")

	amount, ok := extractor.ExtractAmount("收款100.5元")
	require.True(t, ok)
	assert.Equal(t, 100.5, amount)

	_, ok = extractor.ExtractAmount("没有数字")
	assert.False(t, ok)

	amount, ok = extractor.ExtractAmount("转给小明30元，再转20元")
	require.True(t, ok)
	assert.Equal(t, 30.0, amount)

	amount, ok = extractor.ExtractAmount("收款０")
	require.True(t, ok)
	assert.Equal(t, 0.0, amount)

	amount, ok = extractor.ExtractAmount("收款１２０")
	require.True(t, ok)
	assert.Equal(t, 120.0, amount)
}

func TestExtractCurrencyLastCheckedWins(t *testing.T) {
	extractor := NewExtractor("CNY")

	order := []struct {
		currency Currency
		keyword  string
	}{
		{CurrencyUSD, "美元"},
		{CurrencyUSDT, "usdt"},
		{CurrencyETH, "eth"},
		{CurrencyBTC, "btc"},
	}

	for i := range order {
		for j := range order {
			if i == j {
				continue
			}
			text := "收款10 " + order[i].keyword + " " + order[j].keyword
			want := order[i].currency
			if j > i {
				want = order[j].currency
			}
			t.Run(text, func(t *testing.T) {
				assert.Equal(t, want, extractor.ExtractCurrency(text))
			})
		}
	}
}

func TestExtractCurrencyDefaultsToLocal(t *testing.T) {
	assert.Equal(t, CurrencyCNY, NewExtractor("").ExtractCurrency("收款100元"))
	assert.Equal(t, Currency("HKD"), NewExtractor("hkd").ExtractCurrency("收款100元"))
	assert.Equal(t, CurrencyUSDT, NewExtractor("CNY").ExtractCurrency("收款100 USDT"))
}

func TestExtractMethod(t *testing.T) {
	extractor := NewExtractor("CNY")

	tests := []struct {
		text string
		want Method
	}{
		{text: "用支付宝收款", want: MethodAlipay},
		{text: "微信收款", want: MethodWechat},
		{text: "银行卡转账", want: MethodBank},
		{text: "crypto collect", want: MethodCrypto},
		{text: "支付宝或者微信", want: MethodWechat},
		{text: "收款100", want: MethodQRCode},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.ExtractMethod(tt.text))
		})
	}
}

func TestExtractRecipient(t *testing.T) {
	extractor := NewExtractor("CNY")

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "marker then name", text: "转账给小明", want: "小明"},
		{name: "first token only", text: "转账给 小红 100元", want: "小红"},
		{name: "compound word is not split", text: "转账给小明100元", want: "小明100元"},
		{name: "no marker", text: "transfer 10 eth", want: ""},
		{name: "marker at end", text: "转账给", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.ExtractRecipient(tt.text))
		})
	}
}

func TestExtractCoin(t *testing.T) {
	extractor := NewExtractor("CNY")

	assert.Equal(t, "ETH", extractor.ExtractCoin("以太坊价格"))
	assert.Equal(t, "DOGE", extractor.ExtractCoin("doge price"))
	assert.Equal(t, "BTC", extractor.ExtractCoin("行情"))
	assert.Equal(t, "BTC", extractor.ExtractCoin("btc and eth price"))
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "小明", FirstToken("  小明 吧"))
	assert.Equal(t, "Bob", FirstToken("Ｂｏｂ please"))
	assert.Equal(t, "", FirstToken("   "))
}
