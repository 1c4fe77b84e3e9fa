package translate

import (
	"fmt"
	"strings"
)

// Language is a translation target from the fixed set the UI offers.
type Language string

const (
	English            Language = "English"
	SimplifiedChinese  Language = "Simplified Chinese"
	TraditionalChinese Language = "Traditional Chinese"
	Japanese           Language = "Japanese"
	Korean             Language = "Korean"
	Cantonese          Language = "Cantonese"
	French             Language = "French"
	German             Language = "German"
	Spanish            Language = "Spanish"
	Russian            Language = "Russian"
	Portuguese         Language = "Portuguese"
	Turkish            Language = "Turkish"
)

// SupportedLanguages lists every valid translation target, in UI order.
func SupportedLanguages() []Language {
	return []Language{
		English,
		SimplifiedChinese,
		TraditionalChinese,
		Japanese,
		Korean,
		Cantonese,
		French,
		German,
		Spanish,
		Russian,
		Portuguese,
		Turkish,
	}
}

// ParseLanguage validates a target language supplied by the API surface.
// Matching is case-insensitive.
func ParseLanguage(raw string) (Language, error) {
	want := strings.TrimSpace(raw)
	for _, lang := range SupportedLanguages() {
		if strings.EqualFold(string(lang), want) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unsupported target language %q", raw)
}
