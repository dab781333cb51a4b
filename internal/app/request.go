package app

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chriscorrea/wordsift/internal/fetch"
	"github.com/chriscorrea/wordsift/internal/sizing"
	"github.com/chriscorrea/wordsift/internal/stopwords"
	"github.com/chriscorrea/wordsift/internal/tokenize"
)

// Defaults applied to zero-valued (or nil) request fields.
const (
	DefaultMaxItems        = 420
	DefaultMinFontSize     = 9
	DefaultMaxFontSize     = 180
	DefaultCurvePower      = 0.75
	DefaultReferenceWeight = 4
)

// Request describes one word-cloud generation. The same shape is decoded from
// JSON by HTTP callers and from YAML preset files.
type Request struct {
	InputRef              string   `json:"inputRef" yaml:"inputRef"`
	InputType             string   `json:"inputType,omitempty" yaml:"inputType,omitempty"` // json, text, html or auto
	JSONKeys              []string `json:"jsonKeys,omitempty" yaml:"jsonKeys,omitempty"`
	CollectAllJSONStrings bool     `json:"collectAllJsonStrings,omitempty" yaml:"collectAllJsonStrings,omitempty"`
	HTMLSelector          string   `json:"htmlSelector,omitempty" yaml:"htmlSelector,omitempty"`
	IncludeAllHTML        bool     `json:"includeAllHtml,omitempty" yaml:"includeAllHtml,omitempty"`

	StopwordGroups []string `json:"stopwordGroups,omitempty" yaml:"stopwordGroups,omitempty"`
	ExtraStopwords []string `json:"extraStopwords,omitempty" yaml:"extraStopwords,omitempty"`
	KeepWords      []string `json:"keepWords,omitempty" yaml:"keepWords,omitempty"`
	MinTokenLength int      `json:"minTokenLength,omitempty" yaml:"minTokenLength,omitempty"`
	MergeVariants  bool     `json:"mergeVariants,omitempty" yaml:"mergeVariants,omitempty"`

	Boosts            map[string]float64 `json:"boosts,omitempty" yaml:"boosts,omitempty"`
	ManualAdjustments map[string]int     `json:"manualAdjustments,omitempty" yaml:"manualAdjustments,omitempty"`

	// DetectReferences defaults to true when nil. ReferenceWeight defaults
	// to DefaultReferenceWeight when nil; 0 detects without weighting.
	DetectReferences *bool `json:"detectReferences,omitempty" yaml:"detectReferences,omitempty"`
	ReferenceWeight  *int  `json:"referenceWeight,omitempty" yaml:"referenceWeight,omitempty"`

	MaxItems    int `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	MinFontSize int `json:"minFontSize,omitempty" yaml:"minFontSize,omitempty"`
	MaxFontSize int `json:"maxFontSize,omitempty" yaml:"maxFontSize,omitempty"`
	// CurvePower defaults to DefaultCurvePower when nil. A non-positive
	// value is rejected, never corrected.
	CurvePower   *float64 `json:"curvePower,omitempty" yaml:"curvePower,omitempty"`
	AnalysisOnly bool     `json:"analysisOnly,omitempty" yaml:"analysisOnly,omitempty"`

	// SkipCache bypasses the extraction cache for this run only.
	SkipCache bool `json:"skipCache,omitempty" yaml:"skipCache,omitempty"`
}

// Bool returns a pointer to v, for optional request fields.
func Bool(v bool) *bool {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// ReferencesEnabled reports whether reference detection runs.
func (r *Request) ReferencesEnabled() bool {
	return r.DetectReferences == nil || *r.DetectReferences
}

// plan is a validated request with defaults applied.
type plan struct {
	ref             string
	kind            fetch.Kind
	jsonKeys        []string
	collectAll      bool
	htmlSelector    string
	includeAllHTML  bool
	filter          *stopwords.Filter
	minTokenLength  int
	mergeVariants   bool
	boosts          map[string]float64
	adjustments     map[string]int
	detect          bool
	referenceWeight int
	maxItems        int
	curve           sizing.Curve
	analysisOnly    bool
	skipCache       bool
}

// resolve validates r and applies defaults. Every failure is a *ValidationError.
func (r *Request) resolve() (*plan, error) {
	ref := strings.TrimSpace(r.InputRef)
	if ref == "" {
		return nil, &ValidationError{Field: "inputRef", Reason: "an input reference is required"}
	}

	kind, err := fetch.ParseKind(r.InputType)
	if err != nil {
		return nil, &ValidationError{Field: "inputType", Reason: err.Error()}
	}

	filter, err := stopwords.NewFilter(r.StopwordGroups, r.ExtraStopwords, r.KeepWords)
	if err != nil {
		var unknown *stopwords.UnknownGroupError
		if errors.As(err, &unknown) {
			return nil, &ValidationError{Field: "stopwordGroups", Reason: err.Error()}
		}
		return nil, fmt.Errorf("failed to build stopword filter: %w", err)
	}

	for phrase, factor := range r.Boosts {
		if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
			return nil, &ValidationError{Field: "boosts", Reason: fmt.Sprintf("factor for %q must be a non-negative number, got %v", phrase, factor)}
		}
	}

	p := &plan{
		ref:             ref,
		kind:            kind,
		jsonKeys:        r.JSONKeys,
		collectAll:      r.CollectAllJSONStrings,
		htmlSelector:    strings.TrimSpace(r.HTMLSelector),
		includeAllHTML:  r.IncludeAllHTML,
		filter:          filter,
		minTokenLength:  orDefault(r.MinTokenLength, tokenize.DefaultMinLength),
		mergeVariants:   r.MergeVariants,
		boosts:          r.Boosts,
		adjustments:     r.ManualAdjustments,
		detect:          r.ReferencesEnabled(),
		referenceWeight: valueOr(r.ReferenceWeight, DefaultReferenceWeight),
		maxItems:        orDefault(r.MaxItems, DefaultMaxItems),
		curve: sizing.Curve{
			MinFontSize: orDefault(r.MinFontSize, DefaultMinFontSize),
			MaxFontSize: orDefault(r.MaxFontSize, DefaultMaxFontSize),
			Power:       valueOr(r.CurvePower, DefaultCurvePower),
		},
		analysisOnly: r.AnalysisOnly,
		skipCache:    r.SkipCache,
	}

	switch {
	case p.minTokenLength < 0:
		return nil, &ValidationError{Field: "minTokenLength", Reason: fmt.Sprintf("must not be negative, got %d", r.MinTokenLength)}
	case p.referenceWeight < 0:
		return nil, &ValidationError{Field: "referenceWeight", Reason: fmt.Sprintf("must not be negative, got %d", p.referenceWeight)}
	case p.maxItems < 0:
		return nil, &ValidationError{Field: "maxItems", Reason: fmt.Sprintf("must not be negative, got %d", r.MaxItems)}
	}
	if err := p.curve.Validate(); err != nil {
		return nil, &ValidationError{Field: "curve", Reason: err.Error()}
	}

	return p, nil
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
