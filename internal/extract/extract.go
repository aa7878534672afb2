// Package extract turns loosely formatted model output into validated
// quiz questions and flashcards through an ordered list of recovery layers.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/logger"
)

// Layer names the recovery layer that produced a result.
type Layer string

const (
	LayerBracket   Layer = "bracket"
	LayerFence     Layer = "fence"
	LayerObject    Layer = "object"
	LayerSentences Layer = "sentences"
	LayerSynthetic Layer = "synthetic"
)

// ErrNoRecords is returned by a layer that found nothing usable.
var ErrNoRecords = errors.New("no valid records")

// Request describes what to extract.
type Request struct {
	Kind    content.Kind
	Subject string
	Topic   string
}

// Result is the outcome of one layer, or of the whole extraction.
type Result struct {
	Set   content.Set
	Layer Layer
	// Normalized is set when the records only parsed after normalization.
	Normalized bool
	// Rejected counts elements that parsed but failed mapping or validation.
	Rejected int
	Err      error
}

// OK reports whether the result carries at least one record.
func (r Result) OK() bool {
	return r.Err == nil && r.Set.Len() > 0
}

// layer is one step of the recovery chain.
type layer struct {
	name Layer
	run  func(e *Extractor, raw string, req Request) Result
}

// layers are tried in order; the first OK result wins.
var layers = []layer{
	{LayerBracket, func(e *Extractor, raw string, req Request) Result {
		return e.parseSpans(LayerBracket, arraySpans(raw), req)
	}},
	{LayerFence, func(e *Extractor, raw string, req Request) Result {
		return e.parseSpans(LayerFence, fencedBlocks(raw), req)
	}},
	{LayerObject, func(e *Extractor, raw string, req Request) Result {
		return e.parseSpans(LayerObject, objectSpans(raw), req)
	}},
	{LayerSentences, func(e *Extractor, raw string, req Request) Result {
		return e.segment(raw, req)
	}},
}

// Extractor runs the recovery layers and validates their output.
type Extractor struct {
	chain content.Chain
	log   *logger.Logger
}

// New creates an Extractor. A nil chain uses content.DefaultChain; a nil
// logger discards output.
func New(chain content.Chain, log *logger.Logger) *Extractor {
	if chain == nil {
		chain = content.DefaultChain()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{chain: chain, log: log}
}

// Extract recovers records from raw. It never fails: when every layer comes
// up empty the result is the synthetic fallback.
func (e *Extractor) Extract(raw string, req Request) Result {
	for _, l := range layers {
		res := l.run(e, raw, req)
		if res.OK() {
			res.Set.Renumber()
			e.log.Debug("extraction layer succeeded",
				"layer", l.name, "records", res.Set.Len(), "rejected", res.Rejected, "normalized", res.Normalized)
			return res
		}
		e.log.Debug("extraction layer failed", "layer", l.name, "error", res.Err)
	}
	e.log.Info("extraction fell back to synthetic records", "kind", req.Kind, "topic", req.Topic)
	return Result{Set: Synthetic(req.Kind, req.Subject, req.Topic), Layer: LayerSynthetic}
}

// parseSpans tries each candidate span in its parse forms and returns the
// first that yields valid records.
func (e *Extractor) parseSpans(name Layer, spans []string, req Request) Result {
	if len(spans) == 0 {
		return Result{Layer: name, Err: fmt.Errorf("%s: no candidate span", name)}
	}
	var lastErr error = ErrNoRecords
	for _, span := range spans {
		for _, attempt := range parseAttempts(span) {
			var v any
			if err := json.Unmarshal([]byte(attempt.text), &v); err != nil {
				lastErr = fmt.Errorf("%s: %w", name, err)
				continue
			}
			res := e.mapElements(elements(v), req)
			res.Layer = name
			res.Normalized = attempt.normalized
			if res.OK() {
				return res
			}
			lastErr = res.Err
		}
	}
	return Result{Layer: name, Err: lastErr}
}

type parseAttempt struct {
	text       string
	normalized bool
}

// parseAttempts lists the forms of span to parse, in order: the strict
// form (math glyphs in, lone LaTeX backslashes protected), the span as
// given, and the fully normalized span.
func parseAttempts(span string) []parseAttempt {
	var out []parseAttempt
	add := func(text string, normalized bool) {
		for _, a := range out {
			if a.text == text {
				return
			}
		}
		out = append(out, parseAttempt{text: text, normalized: normalized})
	}
	strict := protectEscapes(span)
	add(strict, strict != span)
	add(span, false)
	add(Normalize(span), true)
	return out
}

// mapElements applies tolerant field mapping and validation per element.
func (e *Extractor) mapElements(elems []any, req Request) Result {
	res := Result{Set: content.Set{Kind: req.Kind}}
	if len(elems) == 0 {
		res.Err = ErrNoRecords
		return res
	}

	if req.Kind.IsFlashcard() {
		cardKind := cardKindFor(req.Kind)
		cards := make([]content.Flashcard, 0, len(elems))
		for _, el := range elems {
			c, err := mapFlashcard(el, cardKind)
			if err != nil {
				res.Rejected++
				continue
			}
			cards = append(cards, c)
		}
		valid, rejected := e.chain.FilterFlashcards(cards)
		res.Set.Flashcards = valid
		res.Rejected += len(rejected)
	} else {
		qs := make([]content.Question, 0, len(elems))
		for _, el := range elems {
			q, err := mapQuestion(el)
			if err != nil {
				res.Rejected++
				continue
			}
			qs = append(qs, q)
		}
		valid, rejected := e.chain.FilterQuestions(qs)
		res.Set.Questions = valid
		res.Rejected += len(rejected)
	}

	if res.Set.Len() == 0 {
		res.Err = ErrNoRecords
	}
	return res
}

// segment is the sentence fallback. Quiz questions cannot be built from
// bare sentences, so it only serves flashcard kinds.
func (e *Extractor) segment(raw string, req Request) Result {
	res := Result{Layer: LayerSentences, Set: content.Set{Kind: req.Kind}}
	if !req.Kind.IsFlashcard() {
		res.Err = fmt.Errorf("sentences: not applicable to %s", req.Kind)
		return res
	}
	sentences := Sentences(raw)
	if len(sentences) < MinSentences {
		res.Err = fmt.Errorf("sentences: %d usable, need %d", len(sentences), MinSentences)
		return res
	}
	cards := sentenceCards(sentences, displayName(req.Subject, req.Topic), cardKindFor(req.Kind))
	valid, rejected := e.chain.FilterFlashcards(cards)
	res.Set.Flashcards = valid
	res.Rejected = len(rejected)
	if len(valid) < MinSentences {
		res.Err = ErrNoRecords
	}
	return res
}

func cardKindFor(k content.Kind) content.CardKind {
	if k == content.KindFlashcardQuiz {
		return content.CardQuizDerived
	}
	return content.CardFact
}
