// Package app runs the word-cloud pipeline: it reads one input, extracts and
// tokenizes its text, filters and weights the tokens, and sizes the result
// for rendering. CLI and HTTP concerns stay with the caller.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/chriscorrea/wordsift/internal/cache"
	"github.com/chriscorrea/wordsift/internal/counter"
	"github.com/chriscorrea/wordsift/internal/extract"
	"github.com/chriscorrea/wordsift/internal/fetch"
	"github.com/chriscorrea/wordsift/internal/reference"
	"github.com/chriscorrea/wordsift/internal/sizing"
	"github.com/chriscorrea/wordsift/internal/tokenize"
	"github.com/chriscorrea/wordsift/internal/weight"
)

// EmptyResultWarning is added to Result.Warnings when no term survives.
const EmptyResultWarning = "no terms survived filtering"

// LoadFunc resolves an input reference into a document.
type LoadFunc func(ctx context.Context, ref string) (*fetch.Document, error)

// Generator runs generation requests. It is safe for concurrent use; the
// extraction cache is the only state shared between runs.
type Generator struct {
	cache    *cache.Cache
	load     LoadFunc
	measure  counter.Counter
	progress func(stage string)
}

// Option configures a Generator.
type Option func(*Generator)

// WithLoader replaces fetch.Load as the input collaborator.
func WithLoader(load LoadFunc) Option {
	return func(g *Generator) {
		g.load = load
	}
}

// WithCounter adds an extra measure of the extracted text to every summary.
func WithCounter(c counter.Counter) Option {
	return func(g *Generator) {
		g.measure = c
	}
}

// WithProgress registers fn to be told when a run enters a new stage.
func WithProgress(fn func(stage string)) Option {
	return func(g *Generator) {
		g.progress = fn
	}
}

// NewGenerator creates a Generator backed by c. A nil cache disables caching.
func NewGenerator(c *cache.Cache, opts ...Option) *Generator {
	g := &Generator{cache: c, load: fetch.Load}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run executes one request.
//
// Processing Pipeline:
// 1. validate the request and apply defaults
// 2. read the input and resolve its type
// 3. extract text, tokens and references (cache-checked)
// 4. length filter, stopword filter, optional variant folding
// 5. aggregate weights; analysis-only requests stop here
// 6. rank, drop zero weights, truncate and size
//
// Validation failures return a *ValidationError, unreadable input an
// *InputError. An empty result is not an error.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	p, err := req.resolve()
	if err != nil {
		return nil, err
	}

	g.report("Reading input")
	doc, err := g.load(ctx, p.ref)
	if err != nil {
		return nil, &InputError{Ref: p.ref, Reason: "cannot read input", Err: err}
	}
	if len(bytes.TrimSpace(doc.Body)) == 0 {
		return nil, &InputError{Ref: p.ref, Reason: "input is empty"}
	}

	kind := fetch.ResolveKind(doc, p.kind)
	slog.Debug("Resolved input", "ref", p.ref, "kind", kind, "bytes", len(doc.Body))

	g.report("Extracting text")
	ext, err := g.extraction(doc, kind, p)
	if err != nil {
		return nil, err
	}

	g.report("Weighing words")
	tokens := tokenize.DropShort(ext.Tokens, p.minTokenLength, p.filter.Keep())
	tokens = p.filter.Apply(tokens)
	if p.mergeVariants {
		tokens = tokenize.NewVariantFolder().FoldAll(tokens)
	}
	slog.Debug("Filtered tokens", "extracted", len(ext.Tokens), "kept", len(tokens))

	in := weight.Input{
		Tokens:      tokens,
		Stream:      ext.Tokens,
		Boosts:      p.boosts,
		Adjustments: p.adjustments,
	}
	if p.detect {
		in.ReferenceMatches = ext.ReferenceBonuses
		in.ReferenceOrder = ext.ReferenceOrder
		in.ReferenceWeight = p.referenceWeight
	}
	terms := weight.Rank(weight.Aggregate(in))

	result := &Result{
		AnalysisOnly: p.analysisOnly,
		Summary:      g.summarize(ext, tokens, terms, p.detect),
	}

	if p.analysisOnly {
		result.Words = terms
		slog.Debug("Analysis complete", "words", len(terms))
		return result, nil
	}

	g.report("Sizing terms")
	ranked := weight.Truncate(weight.Positive(terms), p.maxItems)
	result.Terms = sizing.Apply(ranked, p.curve, sizing.DefaultBreaks)
	if len(result.Terms) == 0 {
		result.Warnings = append(result.Warnings, EmptyResultWarning)
	}

	slog.Debug("Generation complete", "terms", len(result.Terms), "candidates", len(terms), "maxItems", p.maxItems)
	return result, nil
}

func (g *Generator) report(stage string) {
	if g.progress != nil {
		g.progress(stage)
	}
}

// extraction returns the cached extraction for doc, computing it on a miss.
func (g *Generator) extraction(doc *fetch.Document, kind fetch.Kind, p *plan) (cache.Extraction, error) {
	compute := func() (cache.Extraction, error) {
		return extractDocument(doc, kind, p)
	}
	if p.skipCache {
		return compute()
	}

	key := cache.Key(cache.KeyParts{
		Content:          doc.Body,
		InputType:        string(kind),
		JSONKeys:         p.jsonKeys,
		CollectAll:       p.collectAll,
		DetectReferences: p.detect,
		HTMLSelector:     p.htmlSelector,
		IncludeAllHTML:   p.includeAllHTML,
	})
	ext, hit, err := g.cache.GetOrCompute(key, compute)
	if err != nil {
		return cache.Extraction{}, err
	}
	slog.Debug("Extraction ready", "cacheHit", hit, "tokens", len(ext.Tokens))
	return ext, nil
}

// extractDocument turns doc into text segments, tokens and, when enabled,
// reference matches. Reference detection runs on the raw segments.
func extractDocument(doc *fetch.Document, kind fetch.Kind, p *plan) (cache.Extraction, error) {
	segments, err := textSegments(doc, kind, p)
	if err != nil {
		return cache.Extraction{}, err
	}

	ext := cache.Extraction{
		Text:   strings.Join(segments, "\n\n"),
		Tokens: tokenize.TokenizeAll(segments),
	}
	if p.detect {
		refs := reference.DetectAll(segments)
		ext.ReferenceBonuses = refs.Bonuses
		ext.ReferenceOrder = refs.Keys
		ext.Citations = refs.Citations
		ext.Matches = refs.Matches
	}
	return ext, nil
}

func textSegments(doc *fetch.Document, kind fetch.Kind, p *plan) ([]string, error) {
	switch kind {
	case fetch.KindJSON:
		segments, err := extract.JSONStrings(doc.Body, extract.JSONOptions{Keys: p.jsonKeys, CollectAll: p.collectAll})
		if err != nil {
			reason := "cannot extract JSON strings"
			if errors.Is(err, extract.ErrInvalidJSON) {
				reason = "malformed JSON"
			}
			return nil, &InputError{Ref: doc.Ref, Reason: reason, Err: err}
		}
		return segments, nil

	case fetch.KindHTML:
		var baseURL *url.URL
		if strings.HasPrefix(doc.Ref, "http://") || strings.HasPrefix(doc.Ref, "https://") {
			baseURL, _ = url.Parse(doc.Ref) // ignore parse errors, readability copes with nil
		}
		text, err := extract.HTMLText(bytes.NewReader(doc.Body), extract.HTMLOptions{
			Selector:   p.htmlSelector,
			IncludeAll: p.includeAllHTML,
			BaseURL:    baseURL,
		})
		if err != nil {
			return nil, &InputError{Ref: doc.Ref, Reason: "cannot extract HTML text", Err: err}
		}
		return []string{text}, nil

	case fetch.KindText:
		return []string{string(doc.Body)}, nil
	}
	return nil, fmt.Errorf("unsupported input kind %q", kind)
}

func (g *Generator) summarize(ext cache.Extraction, tokens []string, terms []weight.Term, detect bool) Summary {
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}

	s := Summary{
		TotalTokens:     len(tokens),
		UniqueTokens:    len(unique),
		InputCharacters: counter.NewCharCounter().Count(ext.Text),
		InputWords:      counter.NewWordCounter().Count(ext.Text),
	}
	for _, t := range terms {
		s.TotalFinal += t.FinalWeight
	}
	if detect {
		s.ReferenceMatches = ext.Matches
		if len(ext.Citations) > 0 {
			s.References = make(map[string]int, len(ext.Citations))
			for citation, n := range ext.Citations {
				s.References[citation] = n
			}
		}
	}
	if g.measure != nil {
		m := counter.Measure(g.measure, ext.Text)
		s.Measure = &m
	}
	return s
}
