package models

import (
	"golang.org/x/text/language"
)

// Locale selects the language of every buyer-facing string.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)

// Locales returns the supported locales. English is the fallback.
func Locales() []Locale {
	return []Locale{LocaleEnglish, LocaleSpanish}
}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// ParseLocale resolves a BCP 47 tag or an Accept-Language header value to a
// supported locale. Unparseable or unsupported input falls back to English.
func ParseLocale(raw string) Locale {
	if raw == "" {
		return LocaleEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return LocaleEnglish
	}
	if index == 1 {
		return LocaleSpanish
	}
	return LocaleEnglish
}
