package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/edchat/internal/content"
)

// Sentence length bounds, in characters.
const (
	MinSentenceLen = 30
	MaxSentenceLen = 500

	// MinSentences is the fewest usable sentences the segmentation layer
	// needs before it counts as a success.
	MinSentences = 3
)

var (
	fenceMarkerRe = regexp.MustCompile("```[a-zA-Z]*")
	sentenceEndRe = regexp.MustCompile(`[.!?]+\s+`)
	bracketChars  = strings.NewReplacer("[", " ", "]", " ", "{", " ", "}", " ")
)

// Sentences strips structural debris from text and splits it into
// sentences whose length falls in [MinSentenceLen, MaxSentenceLen].
func Sentences(text string) []string {
	text = fenceMarkerRe.ReplaceAllString(text, " ")
	text = bracketChars.Replace(text)

	var (
		out  []string
		prev int
	)
	keep := func(s string) {
		s = CleanText(s)
		if n := utf8.RuneCountInString(s); n >= MinSentenceLen && n <= MaxSentenceLen {
			out = append(out, s)
		}
	}
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		// Keep the punctuation, drop the trailing whitespace.
		end := loc[0] + len(strings.TrimRight(text[loc[0]:loc[1]], " \t\r\n"))
		keep(text[prev:end])
		prev = loc[1]
	}
	keep(text[prev:])
	return out
}

// sentenceCards builds one flashcard per sentence, fronted "<name> — Concept N".
func sentenceCards(sentences []string, name string, kind content.CardKind) []content.Flashcard {
	cards := make([]content.Flashcard, 0, len(sentences))
	for i, s := range sentences {
		cards = append(cards, content.Flashcard{
			ID:    i + 1,
			Front: fmt.Sprintf("%s — Concept %d", name, i+1),
			Back:  s,
			Kind:  kind,
		})
	}
	return cards
}
