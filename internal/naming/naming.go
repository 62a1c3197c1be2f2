// Package naming converts schema id segments and property names into valid
// TypeScript identifiers.
package naming

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stoewer/go-strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upperCaser performs proper Unicode upper casing for leading letters that
// strcase leaves untouched.
var upperCaser = cases.Upper(language.Und)

// TypeName converts an id segment into a PascalCase TypeScript
// namespace/type identifier. Path-template braces are stripped, invalid
// characters act as word separators, and a leading digit is prefixed with $
// (so response statuses become $200).
func TypeName(segment string) string {
	trimmed := strings.Trim(segment, "{}")
	var b strings.Builder
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := strcase.UpperCamelCase(b.String())
	if name == "" {
		return "Empty"
	}
	name = upperFirst(name)
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(first) {
		name = "$" + name
	}
	return name
}

// PropertyName renders a property name for an interface body: bare when it is
// a valid TypeScript identifier, quoted otherwise.
func PropertyName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

// upperFirst upper-cases the leading rune using Unicode casing rules.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upperCaser.String(string(r)) + s[size:]
}

// isIdentifier reports whether s is usable as a bare TypeScript property name.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == '$':
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
