package nlp

import (
	"testing"

	"SuperApp/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherResolvesEveryRuleExample(t *testing.T) {
	matcher := NewMatcher(DefaultRules())

	for _, rule := range DefaultRules() {
		for _, example := range rule.Examples {
			t.Run(string(rule.ID)+"/"+example, func(t *testing.T) {
				got, ok := matcher.Match(example)
				require.True(t, ok, "no rule matched %q", example)
				assert.Equal(t, rule.ID, got.ID)
			})
		}
	}
}

func TestMatcherFirstMatchWins(t *testing.T) {
	matcher := NewMatcher(DefaultRules())

	tests := []struct {
		name string
		text string
		want entity.IntentID
	}{
		{name: "collect before qrcode", text: "收款二维码", want: entity.IntentCollect},
		{name: "transfer before history", text: "转账记录", want: entity.IntentTransfer},
		{name: "case insensitive", text: "SHOW MY BALANCE", want: entity.IntentBalance},
		{name: "full width latin", text: "ｈｅｌｐ", want: entity.IntentHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matcher.Match(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestMatcherNoMatch(t *testing.T) {
	matcher := NewMatcher(DefaultRules())

	for _, text := range []string{"今天天气如何", "100", "", "   "} {
		got, ok := matcher.Match(text)
		assert.False(t, ok, text)
		assert.Nil(t, got, text)
	}
}

func TestMatcherRulesKeepTableOrder(t *testing.T) {
	rules := NewMatcher(DefaultRules()).Rules()

	ids := make([]entity.IntentID, 0, len(rules))
	for _, rule := range rules {
		ids = append(ids, rule.ID)
	}

	assert.Equal(t, []entity.IntentID{
		entity.IntentCollect,
		entity.IntentTransfer,
		entity.IntentBalance,
		entity.IntentPrice,
		entity.IntentQRCode,
		entity.IntentHistory,
		entity.IntentHelp,
	}, ids)
}
