package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/edchat/internal/content"
)

// Field aliases, in canonical form (lower case, no separators). The first
// alias present on an element wins.
var (
	questionKeys    = []string{"question", "prompt", "q", "text"}
	optionsKeys     = []string{"options", "choices", "alternatives", "answers"}
	correctKeys     = []string{"correctindex", "answerindex", "correct", "correctoption", "correctanswer", "answer"}
	explanationKeys = []string{"explanation", "rationale", "reason", "solution"}
	frontKeys       = []string{"front", "concept", "term", "question", "prompt", "title"}
	backKeys        = []string{"back", "explanation", "definition", "answer", "description", "meaning"}
)

// listKeys are object fields that commonly wrap the record list.
var listKeys = []string{"questions", "flashcards", "cards", "items", "data", "quiz", "results"}

// canonicalKey lower-cases k and drops '_', '-' and spaces, so that
// "correct_index", "correctIndex" and "Correct Index" compare equal.
func canonicalKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(k))
}

// element is one parsed list entry with canonicalized keys.
type element map[string]any

func newElement(v any) (element, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	e := make(element, len(m))
	for k, val := range m {
		ck := canonicalKey(k)
		if _, dup := e[ck]; !dup {
			e[ck] = val
		}
	}
	return e, true
}

func (e element) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := e[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// text returns the first alias that holds a scalar, rendered as cleaned text.
func (e element) text(keys []string) string {
	for _, k := range keys {
		if v, ok := e[k]; ok {
			if s, ok := scalarText(v); ok {
				return s
			}
		}
	}
	return ""
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return CleanText(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func (e element) options() []string {
	v, ok := e.lookup(optionsKeys)
	if !ok {
		return nil
	}
	var raw []any
	switch t := v.(type) {
	case []any:
		raw = t
	case map[string]any:
		// {"A": "...", "B": "..."} keyed by letter.
		for i := 0; i < content.MaxOptions+1; i++ {
			letter := string(rune('A' + i))
			if o, ok := t[letter]; ok {
				raw = append(raw, o)
			} else if o, ok := t[strings.ToLower(letter)]; ok {
				raw = append(raw, o)
			} else {
				break
			}
		}
	default:
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		s, ok := scalarText(o)
		if !ok {
			return nil
		}
		out = append(out, stripOptionLetter(s))
	}
	return out
}

// stripOptionLetter removes a leading "A) ", "B. " or "C: " label.
func stripOptionLetter(s string) string {
	if len(s) >= 3 && s[0] >= 'A' && s[0] <= 'F' && (s[1] == ')' || s[1] == '.' || s[1] == ':') && s[2] == ' ' {
		return strings.TrimSpace(s[3:])
	}
	return s
}

// correctIndex resolves the correct option from a number, a numeric string,
// a single letter, or the option text itself. Out-of-range values are
// returned as-is for the validator to reject.
func (e element) correctIndex(options []string) (int, error) {
	v, ok := e.lookup(correctKeys)
	if !ok {
		return 0, fmt.Errorf("no correct answer field")
	}
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("correct index %v is not an integer", t)
		}
		return int(t), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		if len(s) == 1 {
			c := s[0] | 0x20
			if c >= 'a' && c < 'a'+byte(len(options)) {
				return int(c - 'a'), nil
			}
		}
		want := strings.ToLower(stripOptionLetter(CleanText(s)))
		for i, o := range options {
			if strings.ToLower(o) == want {
				return i, nil
			}
		}
		return 0, fmt.Errorf("correct answer %q matches no option", s)
	}
	return 0, fmt.Errorf("unsupported correct answer type %T", v)
}

// mapQuestion maps an element onto a Question.
func mapQuestion(v any) (content.Question, error) {
	e, ok := newElement(v)
	if !ok {
		return content.Question{}, fmt.Errorf("element is not an object")
	}
	q := content.Question{
		Question:    e.text(questionKeys),
		Options:     e.options(),
		Explanation: e.text(explanationKeys),
	}
	if len(q.Options) == 0 {
		return q, fmt.Errorf("no options")
	}
	idx, err := e.correctIndex(q.Options)
	if err != nil {
		return q, err
	}
	q.CorrectIndex = idx
	return q, nil
}

// mapFlashcard maps an element onto a Flashcard of the given card kind.
// Elements shaped like quiz questions become quiz-derived cards.
func mapFlashcard(v any, kind content.CardKind) (content.Flashcard, error) {
	e, ok := newElement(v)
	if !ok {
		return content.Flashcard{}, fmt.Errorf("element is not an object")
	}
	if _, hasOptions := e.lookup(optionsKeys); hasOptions {
		if q, err := mapQuestion(v); err == nil && q.CorrectOption() != "" {
			card := q.ToFlashcard()
			if kind == content.CardFact {
				card.Kind = content.CardFact
				card.SourceOptions = nil
			}
			return card, nil
		}
	}
	return content.Flashcard{
		Front: e.text(frontKeys),
		Back:  e.text(backKeys),
		Kind:  kind,
	}, nil
}

// elements unwraps a parsed JSON value into a list of candidate records.
func elements(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		e, _ := newElement(t)
		if inner, ok := e.lookup(listKeys); ok {
			if list, ok := inner.([]any); ok {
				return list
			}
		}
		return []any{t}
	}
	return nil
}
