package document

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is the locale tag threaded through scoring, identification and
// mutation. It is inferred once per document and never re-inferred.
type Language string

const (
	LanguageZH Language = "zh"
	LanguageEN Language = "en"
)

// ideographThreshold is the absolute ideograph count above which a document is
// always treated as zh.
const ideographThreshold = 100

var latinWord = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// Valid reports whether l is one of the supported locales.
func (l Language) Valid() bool {
	return l == LanguageZH || l == LanguageEN
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage accepts "zh" or "en" (case-insensitive). The empty string
// parses to the empty Language, meaning "detect".
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "zh", "zh-cn", "chinese":
		return LanguageZH, nil
	case "en", "en-us", "english":
		return LanguageEN, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

// DetectLanguage infers the locale from character-class statistics.
func DetectLanguage(text string) Language {
	ideographs := CountIdeographs(text)
	if ideographs > ideographThreshold {
		return LanguageZH
	}
	words := len(latinWord.FindAllStringIndex(text, -1))
	if words > ideographs*3 {
		return LanguageEN
	}
	return LanguageZH
}

// Resolve returns override when it is set, otherwise the detected language.
func Resolve(text string, override Language) Language {
	if override.Valid() {
		return override
	}
	return DetectLanguage(text)
}

// CountIdeographs counts runes in the CJK Unified Ideographs block.
func CountIdeographs(text string) int {
	n := 0
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			n++
		}
	}
	return n
}
