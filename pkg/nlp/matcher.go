package nlp

type Matcher struct {
	rules []IntentRule
}

func NewMatcher(rules []IntentRule) *Matcher {
	normalized := make([]IntentRule, len(rules))
	for i, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if k := Normalize(keyword); k != "" {
				keywords = append(keywords, k)
			}
		}
		rule.Keywords = keywords
		normalized[i] = rule
	}

	return &Matcher{rules: normalized}
}

// Match scans the table in order and returns the first rule that has any
// keyword as a substring of the input.
func (m *Matcher) Match(text string) (*IntentRule, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, false
	}

	for i := range m.rules {
		if containsAny(normalized, m.rules[i].Keywords) {
			rule := m.rules[i]
			return &rule, true
		}
	}

	return nil, false
}

func (m *Matcher) Rules() []IntentRule {
	rules := make([]IntentRule, len(m.rules))
	copy(rules, m.rules)
	return rules
}
