package tidy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Classify decides whether a scalar should become nil under cfg.
//
// Non-string values are returned unchanged. Strings are trimmed; the
// trimmed string is returned unless it is empty (per the empty-string
// settings) or matches one of cfg.NAValues, in which case Classify returns
// nil. In [MatchCompressed] mode only letters and digits are compared, so
// with a sentinel like "-" every blank or punctuation-only string is nil
// even when empty strings are kept. Classify never modifies cfg.
func Classify(v any, cfg Config) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	trimmed := strings.TrimSpace(s)

	if cfg.TreatEmptyStringAsNull {
		if cfg.TreatWhitespaceAsEmpty && trimmed == "" {
			return nil
		}
		if !cfg.TreatWhitespaceAsEmpty && s == "" {
			return nil
		}
	}

	if matchesNA(trimmed, cfg) {
		return nil
	}
	return trimmed
}

// IsNA reports whether s matches one of the sentinel values of cfg
func IsNA(s string, cfg Config) bool {
	return matchesNA(strings.TrimSpace(s), cfg)
}

func matchesNA(trimmed string, cfg Config) bool {
	if len(cfg.NAValues) == 0 {
		return false
	}

	lower := cases.Lower(language.Und)
	candidate := lower.String(trimmed)
	if cfg.NAMatchMode == MatchExact {
		for _, na := range cfg.NAValues {
			if lower.String(strings.TrimSpace(na)) == candidate {
				return true
			}
		}
		return false
	}

	// A candidate with nothing alphanumeric left matches any sentinel that
	// also compresses to "", such as "-".
	compressed := compress(candidate)
	for _, na := range cfg.NAValues {
		if compress(lower.String(na)) == compressed {
			return true
		}
	}
	return false
}

// compress drops every rune that is not a letter or a digit
func compress(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
