// Package textre compiles regular expressions whose \d, \D, \s and \S
// classes match Unicode digits and whitespace instead of ASCII only.
package textre

import (
	"regexp"
	"strings"
)

// spaceClass is every rune treated as whitespace by str.isspace-style
// matching, including NBSP, NEL and the Unicode separators.
const spaceClass = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

// Widen rewrites the Perl character classes in expr to their Unicode forms.
// Escaped backslashes and all other escapes are left untouched. Negated
// classes inside a bracket expression cannot be expanded and stay ASCII.
func Widen(expr string) string {
	var b strings.Builder
	b.Grow(len(expr))
	inBracket := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if c == '\\' && i+1 < len(expr) {
			i++
			next := expr[i]
			switch {
			case next == 'd':
				b.WriteString(`\p{Nd}`)
			case next == 'D' && !inBracket:
				b.WriteString(`\P{Nd}`)
			case next == 's' && inBracket:
				b.WriteString(spaceClass)
			case next == 's':
				b.WriteString("[" + spaceClass + "]")
			case next == 'S' && !inBracket:
				b.WriteString("[^" + spaceClass + "]")
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
			continue
		}
		switch {
		case c == '[' && !inBracket:
			inBracket = true
			b.WriteByte(c)
			// a leading ']' (optionally after '^') is a literal
			if i+1 < len(expr) && expr[i+1] == '^' {
				i++
				b.WriteByte('^')
			}
			if i+1 < len(expr) && expr[i+1] == ']' {
				i++
				b.WriteByte(']')
			}
			continue
		case c == ']' && inBracket:
			inBracket = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Compile widens expr and compiles it.
func Compile(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(Widen(expr))
}

// MustCompile is like Compile but panics if expr cannot be parsed.
func MustCompile(expr string) *regexp.Regexp {
	return regexp.MustCompile(Widen(expr))
}
