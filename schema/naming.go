package schema

import (
	"strings"
	"unicode"
)

// SnakeCase derives a table name from a type name.
//
// The first byte is lower-cased; every later ASCII upper-case letter becomes
// '_' followed by its lower-case form. Names shorter than two bytes are
// returned unchanged, so "A" stays "A".
func SnakeCase(name string) string {
	if len(name) < 2 {
		return name
	}

	var sb strings.Builder
	sb.Grow(len(name) + 4)
	sb.WriteByte(toLower(name[0]))
	for i := 1; i < len(name); i++ {
		ch := name[i]
		if ch >= 'A' && ch <= 'Z' {
			sb.WriteByte('_')
			sb.WriteByte(toLower(ch))
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

// ColumnName derives a column name from a struct field name. Runs of
// capitals stay together, so "UserID" becomes "user_id" and "HTTPStatus"
// becomes "http_status". Table names use SnakeCase instead.
func ColumnName(field string) string {
	runes := []rune(field)
	var sb strings.Builder
	sb.Grow(len(field) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
