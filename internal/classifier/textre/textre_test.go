package textre

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWiden(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{"plain text unchanged", `charged twice`, `charged twice`},
		{"digit", `\d+`, `\p{Nd}+`},
		{"non-digit", `\D`, `\P{Nd}`},
		{"space", `a\sb`, `a[` + spaceClass + `]b`},
		{"non-space", `http\S+`, `http[^` + spaceClass + `]+`},
		{"escaped backslash", `\\d`, `\\d`},
		{"other escapes kept", `\w\.\b`, `\w\.\b`},
		{"space inside bracket", `[\s,]`, `[` + spaceClass + `,]`},
		{"digit inside bracket", `[\d.]`, `[\p{Nd}.]`},
		{"leading bracket literal", `[]\s]`, `[]` + spaceClass + `]`},
		{"negated bracket", `[^\d]`, `[^\p{Nd}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Widen(tt.expr))
		})
	}
}

func TestCompile_MatchesUnicode(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		text    string
		matches bool
	}{
		{"arabic-indic digit", `^\d+$`, "\u0663", true},
		{"fullwidth digit", `^\d+$`, "\uff13", true},
		{"latin letter is not a digit", `^\d+$`, "x", false},
		{"no-break space", `^a\sb$`, "a\u00a0b", true},
		{"ideographic space", `^a\sb$`, "a\u3000b", true},
		{"vertical tab", `^a\sb$`, "a\vb", true},
		{"next line", `^a\sb$`, "a\u0085b", true},
		{"no-break space is not a non-space", `^\S+$`, "abc\u00a0def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, re.MatchString(tt.text))
		})
	}

	t.Run("non-space match excludes no-break space", func(t *testing.T) {
		assert.Equal(t, "abc", MustCompile(`\S+`).FindString("abc\u00a0def"))
	})
}

func TestCompile_InvalidExpression(t *testing.T) {
	_, err := Compile(`(\d+`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`[\s`) })
}
