package nlp

import (
	"strings"

	"golang.org/x/text/width"
)

// Normalize folds full-width characters (１００, ＵＳＤＴ) to their narrow
// form and lower-cases the result. Matching and extraction run on this form.
func Normalize(text string) string {
	return strings.ToLower(fold(text))
}

func fold(text string) string {
	return strings.TrimSpace(width.Fold.String(text))
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// FirstToken returns the first whitespace-delimited token of the folded text.
func FirstToken(text string) string {
	fields := strings.Fields(fold(text))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
