package extract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"arrow single", `a \rightarrow b`, "a → b"},
		{"arrow double", `a \\rightarrow b`, "a → b"},
		{"implies", `p \Rightarrow q`, "p ⇒ q"},
		{"times and div", `2 \times 3 \div 6`, "2 × 3 ÷ 6"},
		{"pm cdot", `\pm 1 \cdot x`, "± 1 · x"},
		{"comparisons", `a \leq b \geq c \neq d \approx e`, "a ≤ b ≥ c ≠ d ≈ e"},
		{"to but not top", `x \to y`, "x → y"},
		{"escaped newline", `line\nnext`, "line next"},
		{"escaped tab and cr", `a\tb\rc`, "a b c"},
		{"doubled backslash", `C:\\\\dir`, `C:\\dir`},
		{"control chars", "a\x00b\x07c\nd", "abc d"},
		{"stray backslash doubled", `\alpha`, `\\alpha`},
		{"quote escape kept", `say \"hi\"`, `say \"hi\"`},
		{"unicode escape kept", `caf\u00e9`, `caf\u00e9`},
		{"escaped frac kept", `$\\frac{1}{2}$`, `$\\frac{1}{2}$`},
		{"lone theta escaped", `$\theta$`, `$\\theta$`},
		{"quadruple theta", `$\\\\theta$`, `$\\theta$`},
		{"nabla not a newline", `\\nabla f`, `\\nabla f`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_MakesStrictParsePossible(t *testing.T) {
	raw := "[{\"front\":\"Limits\",\"back\":\"as x \\to \\infty, 1/x \\to 0 and \\alpha stays\"}]"
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		// \i is not a JSON escape.
		t.Fatal("expected raw text to be invalid JSON")
	}
	if err := json.Unmarshal([]byte(Normalize(raw)), &v); err != nil {
		t.Fatalf("normalized text should parse: %v", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  spaced \\n out \t text \\rightarrow  ", "spaced out text →"},
		{`$\theta$ and $\beta$`, `$\theta$ and $\beta$`},
		{`$\frac{1}{2}$ \text{cm}`, `$\frac{1}{2}$ \text{cm}`},
		{`step one\nstep two`, "step one step two"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArraySpans(t *testing.T) {
	text := `see [1] then ["a]", [2, 3]] and [unclosed`
	spans := arraySpans(text)
	if len(spans) != 2 {
		t.Fatalf("spans = %q", spans)
	}
	if spans[0] != "[1]" || spans[1] != `["a]", [2, 3]]` {
		t.Errorf("spans = %q", spans)
	}
}

func TestFencedBlocks(t *testing.T) {
	text := "intro\n```json\n{\"a\":1}\n```\nand\n```\n[2]\n```"
	blocks := fencedBlocks(text)
	if len(blocks) != 2 || blocks[0] != `{"a":1}` || blocks[1] != "[2]" {
		t.Fatalf("blocks = %q", blocks)
	}
}

func TestSentences_LengthBounds(t *testing.T) {
	long := "This sentence is padded " + strings.Repeat("x", 490) + "."
	text := "Too short. " + long + " A sentence that is comfortably within the bounds."
	got := Sentences(text)
	if len(got) != 1 {
		t.Fatalf("sentences = %q", got)
	}
	if got[0] != "A sentence that is comfortably within the bounds." {
		t.Errorf("sentence = %q", got[0])
	}
}
