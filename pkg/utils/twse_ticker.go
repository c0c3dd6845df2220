package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// stockCodeRe matches a bare TWSE/TPEx code of 4–6 digits.
var stockCodeRe = regexp.MustCompile(`^\d{4,6}$`)

// embeddedCodeRe finds the first 4–6 digit run inside a longer string.
var embeddedCodeRe = regexp.MustCompile(`(?:^|\D)(\d{4,6})(?:\D|$)`)

// exchangeSuffixes are the Yahoo-style suffixes users tend to paste in.
var exchangeSuffixes = []string{".TWO", ".TW"}

// NormalizeInput canonicalizes raw user input for directory lookups.
// Full-width characters are folded to half-width, surrounding whitespace is
// dropped, letters are uppercased and a trailing exchange suffix is removed.
func NormalizeInput(raw string) string {
	s := width.Fold.String(raw)
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "$")
	for _, suffix := range exchangeSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	return strings.TrimSpace(s)
}

// IsStockCode reports whether s (already normalized) looks like a numeric code.
func IsStockCode(s string) bool {
	return stockCodeRe.MatchString(s)
}

// ExtractCode returns the first 4–6 digit run found in s, or "".
func ExtractCode(s string) string {
	m := embeddedCodeRe.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
