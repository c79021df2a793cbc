package spanlog

import (
	"strings"
	"unicode"
)

// Case selects the identifier style applied to every emitted key,
// structural keys included.
type Case uint8

const (
	// CaseNone leaves keys untouched.
	CaseNone Case = iota
	// CaseSnake converts keys to snake_case.
	CaseSnake
	// CaseCamel converts keys to camelCase.
	CaseCamel
	// CasePascal converts keys to PascalCase.
	CasePascal
)

// casedKey maps key to the requested identifier style.
// Pure and total - unknown cases behave like CaseNone.
func casedKey(key string, c Case) string {
	switch c {
	case CaseSnake:
		return snakeKey(key)
	case CaseCamel:
		return camelKey(key)
	case CasePascal:
		return pascalKey(key)
	default:
		return key
	}
}

// snakeKey inserts an underscore before an uppercase letter that is not
// preceded by another uppercase letter or an underscore, then lowercases.
// A key with no uppercase letters passes through unchanged, and acronym
// runs collapse to a single segment: "SCREAMING_SNAKE_CASE" becomes
// "screaming_snake_case".
func snakeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 2)
	upperOrUnderscoreLast := false
	for i, ch := range key {
		if i > 0 && unicode.IsUpper(ch) && !upperOrUnderscoreLast {
			b.WriteByte('_')
		}
		upperOrUnderscoreLast = unicode.IsUpper(ch) || ch == '_'
		b.WriteRune(unicode.ToLower(ch))
	}
	return b.String()
}

// pascalKey splits on underscores, capitalizes the first letter of every
// segment, and lowercases the remainder of consecutive-uppercase runs so
// acronyms do not survive as miskeyed islands.
func pascalKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	capitalize := true
	upperLast := false
	for _, ch := range key {
		if unicode.IsLower(ch) {
			upperLast = false
		}
		switch {
		case ch == '_':
			capitalize = true
			upperLast = false
		case upperLast:
			b.WriteRune(unicode.ToLower(ch))
		case capitalize:
			b.WriteRune(unicode.ToUpper(ch))
			capitalize = false
			upperLast = true
		default:
			b.WriteRune(ch)
			upperLast = false
		}
	}
	return b.String()
}

// camelKey is pascalKey with the leading character lowercased.
func camelKey(key string) string {
	p := pascalKey(key)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}
