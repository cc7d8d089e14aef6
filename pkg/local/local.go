// Package local keeps the bot's short texts together with their translations.
package local

import (
	"fmt"
	"strings"
)

type Language string

const (
	Eng = Language("en")
	Ara = Language("ar")
)

// ParseLanguage maps a language code such as "ar" or "ar-EG" to a known language, defaulting to English.
func ParseLanguage(code string) Language {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(code)), "-")
	switch Language(base) {
	case Ara:
		return Ara
	default:
		return Eng
	}
}

// IsRTL reports whether the language is written right to left.
func (l Language) IsRTL() bool {
	return l == Ara
}

type Localization struct {
	language Language
	text     string
}

func NewTrans(language Language, text string) Localization {
	return Localization{
		language: language,
		text:     text,
	}
}

// TextSet is one message in English plus its translations. Missing translations fall back to English.
type TextSet struct {
	Default      string
	translations map[Language]string
}

func NewSet(defaultText string, localizations ...Localization) TextSet {
	set := TextSet{
		Default:      defaultText,
		translations: make(map[Language]string, len(localizations)),
	}
	for _, localization := range localizations {
		set.translations[localization.language] = localization.text
	}
	return set
}

func (s TextSet) Text(language Language) string {
	if text, ok := s.translations[language]; ok {
		return text
	}
	return s.Default
}

func (s TextSet) Has(language Language) bool {
	if language == Eng {
		return true
	}
	_, ok := s.translations[language]
	return ok
}

func (s TextSet) DefaultFormat(a ...any) string {
	return fmt.Sprintf(s.Default, a...)
}

func (s TextSet) Format(language Language, a ...any) string {
	return fmt.Sprintf(s.Text(language), a...)
}
