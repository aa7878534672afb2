package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// mathGlyphs maps LaTeX-style escapes that models embed in text to their
// Unicode glyphs.
var mathGlyphs = map[string]string{
	"rightarrow":     "→",
	"leftarrow":      "←",
	"Rightarrow":     "⇒",
	"Leftarrow":      "⇐",
	"leftrightarrow": "↔",
	"times":          "×",
	"div":            "÷",
	"pm":             "±",
	"cdot":           "·",
	"leq":            "≤",
	"geq":            "≥",
	"neq":            "≠",
	"approx":         "≈",
	"infty":          "∞",
	"to":             "→",
}

// mathRe matches one or more backslashes followed by a known escape name
// that is not the prefix of a longer word.
var mathRe = regexp.MustCompile(`\\+(leftrightarrow|rightarrow|leftarrow|Rightarrow|Leftarrow|times|div|pm|cdot|leq|geq|neq|approx|infty|to)\b`)

// escapedSpaceRe matches a literal "\n", "\t" or "\r" (with any number of
// backslashes) together with the letters that follow it, so LaTeX commands
// such as \theta or \nabla can be told apart from escaped whitespace.
var escapedSpaceRe = regexp.MustCompile(`\\+[ntr][A-Za-z]*`)

// latexCommands are LaTeX command names that begin with a JSON escape
// letter. A lone backslash before one of them is LaTeX, not an escape.
var latexCommands = map[string]bool{
	"backslash": true, "bar": true, "begin": true, "beta": true, "bf": true,
	"big": true, "bigg": true, "binom": true, "bmod": true, "boldsymbol": true,
	"bot": true, "bullet": true,
	"flat": true, "forall": true, "frac": true, "frak": true,
	"nabla": true, "ne": true, "neg": true, "neq": true, "ni": true,
	"nolimits": true, "not": true, "notin": true, "nu": true,
	"rangle": true, "rbrace": true, "rceil": true, "rfloor": true, "rho": true,
	"right": true, "rm": true, "rvert": true,
	"tan": true, "tanh": true, "tau": true, "text": true, "textbf": true,
	"textit": true, "textrm": true, "tfrac": true, "therefore": true,
	"theta": true, "tilde": true, "times": true, "to": true, "top": true,
	"triangle": true,
}

// replaceMath swaps math escapes for glyphs.
func replaceMath(s string) string {
	return mathRe.ReplaceAllStringFunc(s, func(m string) string {
		return mathGlyphs[strings.TrimLeft(m, `\`)]
	})
}

// stripControl turns newlines, tabs and carriage returns into spaces and
// drops other control characters.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// collapseEscapedSpace turns literal \n \t \r sequences into spaces,
// leaving LaTeX commands that merely start with those letters alone.
func collapseEscapedSpace(s string) string {
	return escapedSpaceRe.ReplaceAllStringFunc(s, func(m string) string {
		word := strings.TrimLeft(m, `\`)
		if latexCommands[word] {
			return m
		}
		return " " + word[1:]
	})
}

// collapseBackslashes shortens runs of two or more backslashes. A run
// before a letter becomes an escaped backslash so the letter never forms a
// JSON escape; other runs keep their parity.
func collapseBackslashes(s string) string {
	if !strings.Contains(s, `\\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '\\' {
			j++
		}
		n := j - i
		switch {
		case n == 1:
			b.WriteByte('\\')
		case j < len(s) && isLetter(s[j]), n%2 == 0:
			b.WriteString(`\\`)
		default:
			b.WriteString(`\\\`)
		}
		i = j
	}
	return b.String()
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// leadingWord returns the ASCII letters at the start of s.
func leadingWord(s string) string {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	return s[:i]
}

// Normalize rewrites model text so that a strict JSON parser has a chance
// with it. In order: math escapes become glyphs, literal \n \t \r become
// spaces, runs of backslashes collapse, control characters are stripped,
// and any backslash that does not start a valid JSON escape (or that
// starts a LaTeX command) is doubled.
func Normalize(s string) string {
	s = replaceMath(s)
	s = collapseEscapedSpace(s)
	s = collapseBackslashes(s)
	s = stripControl(s)
	return repairEscapes(s)
}

// protectEscapes is the light pre-pass for a strict parse: math escapes
// become glyphs and lone backslashes before LaTeX commands or invalid
// escapes are doubled. Well-formed JSON is otherwise left as is.
func protectEscapes(s string) string {
	return repairEscapes(replaceMath(s))
}

func repairEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && latexCommands[leadingWord(s[i+1:])] {
			b.WriteString(`\\`)
			continue
		}
		if i+1 < len(s) && validEscape(s[i+1:]) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func validEscape(rest string) bool {
	switch rest[0] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if len(rest) < 5 {
			return false
		}
		for _, h := range rest[1:5] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", h) {
				return false
			}
		}
		return true
	}
	return false
}

// CleanText tidies a single decoded field value: math escapes become
// glyphs, escaped and real whitespace controls become spaces, and runs of
// whitespace collapse. Other LaTeX is kept verbatim.
func CleanText(s string) string {
	s = replaceMath(s)
	s = collapseEscapedSpace(s)
	s = stripControl(s)
	return strings.Join(strings.Fields(s), " ")
}
