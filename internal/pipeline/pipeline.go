// Package pipeline produces a validated content set for a study session,
// falling back through curated, generated and synthetic sources so that a
// request always yields something to study.
package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/corpus"
	"github.com/abhisek/edchat/internal/extract"
	"github.com/abhisek/edchat/internal/logger"
	"github.com/abhisek/edchat/internal/metrics"
	"github.com/abhisek/edchat/internal/quizgen"
	"github.com/abhisek/edchat/internal/topics"
)

// Strategy names the source that produced a result.
type Strategy string

const (
	StrategyCorpus       Strategy = "corpus"
	StrategyLive         Strategy = "live"
	StrategyCrossSubject Strategy = "cross-subject"
	StrategySynthetic    Strategy = "synthetic"
	StrategyText         Strategy = "text"
)

// Defaults applied to zero-valued request fields.
const (
	DefaultCount   = 5
	DefaultMinimum = 3
)

// Request describes the content wanted for one session.
type Request struct {
	Kind       content.Kind
	Subject    string
	Topic      string
	Difficulty content.Difficulty
	Count      int
	Minimum    int

	// Generation is the session generation the result is destined for.
	// It is copied to the result untouched.
	Generation uint64

	// Prior lists question texts already studied, passed to live
	// generation to avoid repeats.
	Prior []string
}

func (r Request) normalized() Request {
	if !r.Kind.Valid() {
		r.Kind = content.KindQuiz
	}
	if r.Count <= 0 {
		r.Count = DefaultCount
	}
	if r.Minimum <= 0 {
		r.Minimum = DefaultMinimum
	}
	if r.Minimum > r.Count {
		r.Minimum = r.Count
	}
	return r
}

func (r Request) key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d", r.Kind, r.Subject, r.Topic, r.Difficulty, r.Count, r.Minimum, r.Generation)
}

// Result is the pipeline's answer. Set always holds at least one record.
type Result struct {
	Set        content.Set
	Strategy   Strategy
	Generation uint64

	// Layer is the text recovery layer, for live and text results
	// that went through extraction.
	Layer extract.Layer

	// Relaxed is set when a corpus match dropped the topic filter.
	Relaxed bool

	// Rejected counts records dropped by validation along the way.
	Rejected int

	// Notice is a user-facing remark when live generation failed and an
	// earlier or later fallback was used instead.
	Notice string
}

// Pipeline runs the strategies in order. It is safe for concurrent use.
type Pipeline struct {
	corpus    *corpus.Corpus
	gen       quizgen.Generator
	extractor *extract.Extractor
	chain     content.Chain
	log       *logger.Logger
	metrics   *metrics.Metrics
	core      []string

	rngMu sync.Mutex
	rng   *rand.Rand

	group singleflight.Group
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRand sets the random source used for corpus sampling.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pipeline) { p.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCoreSubjects overrides the cross-subject whitelist.
func WithCoreSubjects(subjects []string) Option {
	return func(p *Pipeline) { p.core = subjects }
}

// New creates a Pipeline. c may be nil for an empty corpus; gen may be nil
// when no LLM is configured, which skips live generation.
func New(c *corpus.Corpus, gen quizgen.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		corpus: c,
		gen:    gen,
		chain:  content.DefaultChain(),
		core:   topics.CoreSubjects,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.corpus == nil {
		p.corpus = corpus.New(nil, nil)
	}
	if p.log == nil {
		p.log = logger.NewNop()
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p.extractor = extract.New(p.chain, p.log)
	return p
}

// Extract returns content for req. It never fails; the worst case is the
// synthetic fallback. Concurrent identical requests share one run.
func (p *Pipeline) Extract(ctx context.Context, req Request) Result {
	req = req.normalized()
	v, _, _ := p.group.Do(req.key(), func() (any, error) {
		return p.run(ctx, req), nil
	})
	res := v.(Result)
	res.Generation = req.Generation
	return res
}

func (p *Pipeline) run(ctx context.Context, req Request) Result {
	start := time.Now()
	log := p.log.With("kind", req.Kind, "subject", req.Subject, "topic", req.Topic, "generation", req.Generation)

	var (
		rejected int
		notice   string
	)
	finish := func(res Result) Result {
		res.Rejected += rejected
		if res.Notice == "" {
			res.Notice = notice
		}
		p.metrics.ObserveExtraction(string(res.Strategy), string(req.Kind), time.Since(start))
		p.metrics.AddRejected(res.Rejected)
		log.Info("content ready", "strategy", res.Strategy, "records", res.Set.Len(), "rejected", res.Rejected)
		return res
	}

	if res, ok := p.fromCorpus(req); ok {
		return finish(res)
	}

	if p.gen != nil {
		res, err := p.fromLive(ctx, req)
		if err == nil && res.Set.Len() >= req.Minimum {
			return finish(res)
		}
		rejected += res.Rejected
		if err != nil {
			log.Warn("live generation failed", "error", err)
			notice = "Couldn't reach the tutor for fresh questions; using saved ones instead."
		} else {
			log.Info("live generation under-filled", "records", res.Set.Len(), "minimum", req.Minimum)
		}
	}

	if res, ok := p.fromCrossSubject(req); ok {
		return finish(res)
	}

	log.Info("falling back to synthetic content")
	return finish(Result{
		Set:      extract.Synthetic(req.Kind, req.Subject, req.Topic),
		Strategy: StrategySynthetic,
	})
}

func (p *Pipeline) fromCorpus(req Request) (Result, bool) {
	if req.Subject == "" && req.Topic == "" {
		// Unscoped requests are left to the cross-subject fallback.
		return Result{}, false
	}
	set, relaxed := p.corpus.Lookup(corpus.Query{
		Kind:    req.Kind,
		Subject: req.Subject,
		Topic:   req.Topic,
		Minimum: req.Minimum,
	})
	if set.Len() < req.Minimum {
		return Result{}, false
	}
	return Result{Set: p.sample(set, req.Count), Strategy: StrategyCorpus, Relaxed: relaxed}, true
}

func (p *Pipeline) fromLive(ctx context.Context, req Request) (Result, error) {
	out, err := p.gen.Generate(ctx, quizgen.Input{
		Kind:       req.Kind,
		Subject:    req.Subject,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Count:      req.Count,
		Prior:      req.Prior,
	})
	if err != nil {
		return Result{Strategy: StrategyLive}, err
	}

	if out.Structured {
		res := Result{Set: content.Set{Kind: req.Kind}, Strategy: StrategyLive}
		var rejected []*content.ValidationError
		if req.Kind.IsFlashcard() {
			res.Set.Flashcards, rejected = p.chain.FilterFlashcards(out.Set.Flashcards)
		} else {
			res.Set.Questions, rejected = p.chain.FilterQuestions(out.Set.Questions)
		}
		res.Rejected = len(rejected)
		res.Set = truncate(res.Set, req.Count)
		return res, nil
	}

	ex := p.extractor.Extract(out.Raw, extract.Request{Kind: req.Kind, Subject: req.Subject, Topic: req.Topic})
	if ex.Layer == extract.LayerSynthetic {
		// Synthetic records are the pipeline's last resort, not a live
		// result.
		return Result{Strategy: StrategyLive, Rejected: ex.Rejected}, nil
	}
	p.metrics.ObserveLayer(string(ex.Layer))
	return Result{
		Set:      truncate(ex.Set, req.Count),
		Strategy: StrategyLive,
		Layer:    ex.Layer,
		Rejected: ex.Rejected,
	}, nil
}

func (p *Pipeline) fromCrossSubject(req Request) (Result, bool) {
	pool := content.Set{Kind: req.Kind}
	for _, subject := range p.core {
		set := p.corpus.Collect(req.Kind, subject, "")
		pool.Questions = append(pool.Questions, set.Questions...)
		pool.Flashcards = append(pool.Flashcards, set.Flashcards...)
	}
	if pool.Len() < req.Minimum {
		return Result{}, false
	}
	return Result{Set: p.sample(pool, req.Count), Strategy: StrategyCrossSubject}, true
}

func (p *Pipeline) sample(set content.Set, n int) content.Set {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return corpus.Sample(set, n, p.rng)
}

// ExtractText turns raw model text into records directly, falling back to
// synthetic content when fewer than minimum records are recovered. Output
// depends only on the arguments.
func (p *Pipeline) ExtractText(raw string, kind content.Kind, subject, topic string, minimum int) Result {
	if !kind.Valid() {
		kind = content.KindQuiz
	}
	if minimum <= 0 {
		minimum = 1
	}
	ex := p.extractor.Extract(raw, extract.Request{Kind: kind, Subject: subject, Topic: topic})
	if ex.Layer != extract.LayerSynthetic && ex.Set.Len() >= minimum {
		p.metrics.ObserveLayer(string(ex.Layer))
		return Result{Set: ex.Set, Strategy: StrategyText, Layer: ex.Layer, Rejected: ex.Rejected}
	}
	return Result{
		Set:      extract.Synthetic(kind, subject, topic),
		Strategy: StrategySynthetic,
		Layer:    extract.LayerSynthetic,
		Rejected: ex.Rejected,
	}
}

func truncate(set content.Set, n int) content.Set {
	if len(set.Questions) > n {
		set.Questions = set.Questions[:n]
	}
	if len(set.Flashcards) > n {
		set.Flashcards = set.Flashcards[:n]
	}
	set.Renumber()
	return set
}
