package extract

import (
	"regexp"
	"strings"
)

// maxSpanAttempts bounds how many candidate spans are tried per text.
const maxSpanAttempts = 8

// balancedEnd returns the index just past the bracket that closes the one
// at text[start], or -1 if it is never closed. Brackets inside JSON string
// literals are ignored.
func balancedEnd(text string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// balancedSpans returns up to max balanced spans opened by open, in order of
// their opening position. Spans nested in an earlier span are skipped.
func balancedSpans(text string, open, close byte, max int) []string {
	var spans []string
	for i := 0; i < len(text) && len(spans) < max; {
		j := strings.IndexByte(text[i:], open)
		if j < 0 {
			break
		}
		start := i + j
		end := balancedEnd(text, start, open, close)
		if end < 0 {
			// Unclosed; a later opener may still be balanced.
			i = start + 1
			continue
		}
		spans = append(spans, text[start:end])
		i = end
	}
	return spans
}

// arraySpans locates candidate [...] spans in commentary-wrapped text.
func arraySpans(text string) []string {
	return balancedSpans(text, '[', ']', maxSpanAttempts)
}

// objectSpans locates candidate {...} spans.
func objectSpans(text string) []string {
	return balancedSpans(text, '{', '}', maxSpanAttempts)
}

var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\n?(.*?)```")

// fencedBlocks returns the interiors of fenced code blocks.
func fencedBlocks(text string) []string {
	var out []string
	for _, m := range fenceRe.FindAllStringSubmatch(text, maxSpanAttempts) {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}
