// Package weight aggregates filtered tokens, reference bonuses, manual
// adjustments and boost multipliers into one weighted term per distinct word
// or boosted phrase.
//
// The final weight of a term is
//
//	round((baseCount + referenceBonus + manualAdjustment) * boostMultiplier)
//
// floored at zero. Boost keys made of several words are counted as exact
// contiguous phrases over the unfiltered token stream; the single-word counts
// of the phrase's constituents are left untouched.
package weight

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/chriscorrea/wordsift/internal/tokenize"
)

// Term is the aggregated weight of one distinct word or phrase.
type Term struct {
	Text             string  `json:"text"`
	BaseCount        int     `json:"baseCount"`
	ReferenceBonus   int     `json:"referenceBonus"`
	ManualAdjustment int     `json:"manualAdjustment"`
	BoostMultiplier  float64 `json:"boostMultiplier"`
	FinalWeight      int     `json:"finalWeight"`
	PhraseCount      int     `json:"phraseCount,omitempty"` // contiguous occurrences of a boosted phrase

	// FirstSeen orders terms by first appearance in the source; it breaks
	// ranking ties.
	FirstSeen int `json:"-"`
}

// Input holds everything the aggregator needs for one document.
type Input struct {
	// Tokens are the tokens that survived filtering, in document order.
	Tokens []string
	// Stream is the unfiltered normalized token stream used for phrase
	// counting and first-seen positions. Tokens is used when Stream is nil.
	Stream []string

	ReferenceMatches map[string]int // reference key -> number of matches
	ReferenceOrder   []string       // reference keys in first-seen order
	ReferenceWeight  int            // bonus per reference match

	Boosts      map[string]float64
	Adjustments map[string]int
}

// Aggregate produces one Term per distinct token, boosted phrase with at
// least one occurrence, reference key, and manual adjustment key.
// Terms are returned in first-seen order.
func Aggregate(in Input) []Term {
	stream := in.Stream
	if stream == nil {
		stream = in.Tokens
	}

	boosts := normalizeBoosts(in.Boosts)
	adjustments := normalizeAdjustments(in.Adjustments)
	positions := firstPositions(stream)

	terms := make(map[string]*Term)
	var order []string
	tail := len(stream)

	termFor := func(text string) *Term {
		if t, ok := terms[text]; ok {
			return t
		}
		pos, ok := positions[text]
		if !ok {
			pos = tail
			tail++
		}
		t := &Term{Text: text, BoostMultiplier: 1.0, FirstSeen: pos}
		terms[text] = t
		order = append(order, text)
		return t
	}

	for _, token := range in.Tokens {
		termFor(token).BaseCount++
	}

	phrases := countPhrases(stream, boosts)
	for _, phrase := range sortedPhrases(phrases) {
		hit := phrases[phrase]
		if _, ok := positions[phrase]; !ok {
			positions[phrase] = hit.first
		}
		t := termFor(phrase)
		t.BaseCount += hit.count
		t.PhraseCount = hit.count
	}

	for _, key := range in.ReferenceOrder {
		if n := in.ReferenceMatches[key]; n > 0 {
			termFor(key).ReferenceBonus += n * in.ReferenceWeight
		}
	}

	for _, key := range sortedKeys(adjustments) {
		termFor(key).ManualAdjustment = adjustments[key]
	}

	result := make([]Term, 0, len(order))
	for _, text := range order {
		t := terms[text]
		if factor, ok := boosts[text]; ok {
			t.BoostMultiplier = factor
		}
		t.FinalWeight = FinalWeight(t.BaseCount, t.ReferenceBonus, t.ManualAdjustment, t.BoostMultiplier)
		result = append(result, *t)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].FirstSeen < result[j].FirstSeen })

	slog.Debug("Aggregated term weights", "tokens", len(in.Tokens), "terms", len(result), "boosts", len(boosts), "adjustments", len(adjustments))
	return result
}

// FinalWeight applies the weight formula, rounding half away from zero and
// clamping negative values to zero.
func FinalWeight(base, referenceBonus, adjustment int, boost float64) int {
	w := math.Round(float64(base+referenceBonus+adjustment) * boost)
	if w < 0 || math.IsNaN(w) {
		return 0
	}
	return int(w)
}

// Rank returns a copy of terms ordered by final weight descending, ties
// broken by first appearance.
func Rank(terms []Term) []Term {
	ranked := make([]Term, len(terms))
	copy(ranked, terms)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalWeight != ranked[j].FinalWeight {
			return ranked[i].FinalWeight > ranked[j].FinalWeight
		}
		return ranked[i].FirstSeen < ranked[j].FirstSeen
	})
	return ranked
}

// Truncate keeps at most maxItems terms. Callers rank first.
func Truncate(terms []Term, maxItems int) []Term {
	if maxItems <= 0 || len(terms) <= maxItems {
		return terms
	}
	return terms[:maxItems]
}

// Positive drops terms whose final weight is zero.
func Positive(terms []Term) []Term {
	kept := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.FinalWeight > 0 {
			kept = append(kept, t)
		}
	}
	return kept
}

type phraseHit struct {
	count int
	first int // stream index of the first occurrence
}

// countPhrases counts exact contiguous occurrences of every multi-word boost
// key in stream. Phrases that never occur are omitted.
func countPhrases(stream []string, boosts map[string]float64) map[string]phraseHit {
	hits := make(map[string]phraseHit)
	for phrase := range boosts {
		words := strings.Fields(phrase)
		if len(words) < 2 {
			continue
		}
		for i := 0; i+len(words) <= len(stream); i++ {
			if !matchesAt(stream, i, words) {
				continue
			}
			hit, seen := hits[phrase]
			if !seen {
				hit.first = i
			}
			hit.count++
			hits[phrase] = hit
		}
	}
	return hits
}

func sortedPhrases(hits map[string]phraseHit) []string {
	phrases := make([]string, 0, len(hits))
	for p := range hits {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if hits[phrases[i]].first != hits[phrases[j]].first {
			return hits[phrases[i]].first < hits[phrases[j]].first
		}
		return phrases[i] < phrases[j]
	})
	return phrases
}

func matchesAt(stream []string, i int, words []string) bool {
	for j, w := range words {
		if stream[i+j] != w {
			return false
		}
	}
	return true
}

// firstPositions records the first stream index of every token. Phrase
// positions are added by Aggregate so phrases sort where they first begin.
func firstPositions(stream []string) map[string]int {
	positions := make(map[string]int, len(stream))
	for i, token := range stream {
		if _, ok := positions[token]; !ok {
			positions[token] = i
		}
	}
	return positions
}

func normalizeBoosts(boosts map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(boosts))
	for key, factor := range boosts {
		if k := tokenize.Phrase(key); k != "" {
			normalized[k] = factor
		}
	}
	return normalized
}

func normalizeAdjustments(adjustments map[string]int) map[string]int {
	normalized := make(map[string]int, len(adjustments))
	for key, delta := range adjustments {
		if k := tokenize.Phrase(key); k != "" {
			normalized[k] += delta
		}
	}
	return normalized
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
