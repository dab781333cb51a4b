package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/wordsift/internal/cache"
	"github.com/chriscorrea/wordsift/internal/counter"
	"github.com/chriscorrea/wordsift/internal/fetch"
	"github.com/chriscorrea/wordsift/internal/sizing"
	"github.com/chriscorrea/wordsift/internal/weight"
)

// memoryLoader serves documents from a map and counts reads.
type memoryLoader struct {
	mu    sync.Mutex
	docs  map[string]fetch.Document
	reads int
}

func newLoader(docs map[string]string) *memoryLoader {
	l := &memoryLoader{docs: make(map[string]fetch.Document)}
	for ref, body := range docs {
		l.docs[ref] = fetch.Document{Ref: ref, Body: []byte(body)}
	}
	return l
}

func (l *memoryLoader) load(_ context.Context, ref string) (*fetch.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads++
	doc, ok := l.docs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fetch.ErrNotFound, ref)
	}
	return &doc, nil
}

func newTestGenerator(docs map[string]string, c *cache.Cache) *Generator {
	return NewGenerator(c, WithLoader(newLoader(docs).load))
}

func termTexts(terms []sizing.SizedTerm) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Text
	}
	return out
}

func TestGeneratorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Should count and rank words with first occurrence tie-break", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "faith hope faith love faith"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", MaxItems: 10})
		require.NoError(t, err)

		require.Len(t, res.Terms, 3)
		assert.Equal(t, []string{"faith", "hope", "love"}, termTexts(res.Terms))
		assert.Equal(t, 3, res.Terms[0].BaseCount)
		assert.Equal(t, 3, res.Terms[0].FinalWeight)
		assert.Equal(t, 1, res.Terms[1].FinalWeight)
		assert.Equal(t, 1, res.Terms[2].FinalWeight)
		assert.Equal(t, 5, res.Summary.TotalTokens)
		assert.Equal(t, 3, res.Summary.UniqueTokens)
		assert.Empty(t, res.Warnings)
	})

	t.Run("Should rank a manually adjusted word first", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "faith hope faith love faith"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", MaxItems: 10, ManualAdjustments: map[string]int{"hope": 5}})
		require.NoError(t, err)

		require.NotEmpty(t, res.Terms)
		assert.Equal(t, "hope", res.Terms[0].Text)
		assert.Equal(t, 6, res.Terms[0].FinalWeight)
	})

	t.Run("Should add reference bonuses to the book name", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "Read John 3:16 and John 3:17 today"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", DetectReferences: Bool(true), ReferenceWeight: Int(4)})
		require.NoError(t, err)

		require.NotEmpty(t, res.Terms)
		john := res.Terms[0]
		assert.Equal(t, "john", john.Text)
		assert.Equal(t, 8, john.ReferenceBonus)
		assert.Equal(t, 2, john.BaseCount)
		assert.Equal(t, 10, john.FinalWeight)
		assert.Equal(t, 2, res.Summary.ReferenceMatches)
		assert.Equal(t, map[string]int{"John 3:16": 1, "John 3:17": 1}, res.Summary.References)
	})

	t.Run("Should credit a generic citation to the name after a capitalized word", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "Read Enoch 1:9 and Enoch 1:10 about enoch"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", AnalysisOnly: true})
		require.NoError(t, err)

		words := make(map[string]weight.Term, len(res.Words))
		for _, w := range res.Words {
			words[w.Text] = w
		}
		assert.NotContains(t, words, "read enoch")
		assert.Equal(t, 3, words["enoch"].BaseCount)
		assert.Equal(t, 8, words["enoch"].ReferenceBonus)
		assert.Equal(t, 11, words["enoch"].FinalWeight)
	})

	t.Run("Should detect without weighting when the reference weight is zero", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "Read John 3:16 and John 3:17 today"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", ReferenceWeight: Int(0)})
		require.NoError(t, err)

		require.NotEmpty(t, res.Terms)
		assert.Equal(t, "john", res.Terms[0].Text)
		assert.Equal(t, 0, res.Terms[0].ReferenceBonus)
		assert.Equal(t, 2, res.Terms[0].FinalWeight)
		assert.Equal(t, 2, res.Summary.ReferenceMatches)
	})

	t.Run("Should skip reference detection when disabled", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "Read John 3:16 and John 3:17 today"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", DetectReferences: Bool(false)})
		require.NoError(t, err)

		for _, term := range res.Terms {
			assert.Zero(t, term.ReferenceBonus, term.Text)
		}
		assert.Zero(t, res.Summary.ReferenceMatches)
		assert.Nil(t, res.Summary.References)
	})

	t.Run("Should stop after aggregation for analysis-only runs", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "faith hope faith love faith"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", AnalysisOnly: true, MaxItems: 1})
		require.NoError(t, err)

		assert.Nil(t, res.Terms)
		assert.Len(t, res.Words, 3, "analysis output is not truncated")
		assert.Equal(t, 5, res.Summary.TotalTokens)
		assert.Equal(t, 3, res.Summary.UniqueTokens)
		assert.Equal(t, 5, res.Summary.TotalFinal)

		out, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"words"`)
		assert.NotContains(t, string(out), `"terms"`)
	})

	t.Run("Should warn instead of failing when nothing survives", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "I you"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", StopwordGroups: []string{"personal"}})
		require.NoError(t, err)

		assert.Empty(t, res.Terms)
		assert.Equal(t, 0, res.Summary.UniqueTokens)
		assert.Equal(t, []string{EmptyResultWarning}, res.Warnings)

		out, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"terms":[]`)
	})

	t.Run("Should keep words listed in keepWords", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "you and I love you"}, nil)

		res, err := g.Run(ctx, Request{
			InputRef:       "a.txt",
			StopwordGroups: []string{"personal", "base"},
			KeepWords:      []string{"you", "i"},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"you", "i", "love"}, termTexts(res.Terms))
	})

	t.Run("Should size terms on the configured curve", func(t *testing.T) {
		text := strings.Repeat("grace ", 10) + "mercy"
		g := newTestGenerator(map[string]string{"a.txt": text}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", CurvePower: Float64(1), MinFontSize: 10, MaxFontSize: 20})
		require.NoError(t, err)

		require.Len(t, res.Terms, 2)
		assert.Equal(t, 20, res.Terms[0].Size)
		assert.Equal(t, 10, res.Terms[1].Size)
	})

	t.Run("Should truncate to the top maxItems", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "alpha beta beta gamma gamma gamma delta"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", MaxItems: 2})
		require.NoError(t, err)

		assert.Equal(t, []string{"gamma", "beta"}, termTexts(res.Terms))
	})

	t.Run("Should count boosted phrases through stopwords", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "the kingdom of God is near; seek the kingdom of God"}, nil)

		res, err := g.Run(ctx, Request{
			InputRef:       "a.txt",
			StopwordGroups: []string{"base"},
			Boosts:         map[string]float64{"Kingdom of God": 3},
		})
		require.NoError(t, err)

		require.NotEmpty(t, res.Terms)
		assert.Equal(t, "kingdom of god", res.Terms[0].Text)
		assert.Equal(t, 2, res.Terms[0].BaseCount)
		assert.Equal(t, 6, res.Terms[0].FinalWeight)
		assert.Equal(t, 2, res.Terms[0].PhraseCount)
	})

	t.Run("Should merge variants when asked", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": "pray prays praying prayed"}, nil)

		res, err := g.Run(ctx, Request{InputRef: "a.txt", MergeVariants: true})
		require.NoError(t, err)

		require.Len(t, res.Terms, 1)
		assert.Equal(t, "pray", res.Terms[0].Text)
		assert.Equal(t, 4, res.Terms[0].BaseCount)
	})

	t.Run("Should extract JSON strings by key", func(t *testing.T) {
		body := `{"posts":[{"title":"ignored title","plaintext":"grace and grace"},{"plaintext":"mercy"}]}`
		g := newTestGenerator(map[string]string{"posts.json": body}, nil)

		res, err := g.Run(ctx, Request{InputRef: "posts.json"})
		require.NoError(t, err)

		assert.Equal(t, []string{"grace", "and", "mercy"}, termTexts(res.Terms))
	})

	t.Run("Should report an extra measure when configured", func(t *testing.T) {
		g := NewGenerator(nil,
			WithLoader(newLoader(map[string]string{"a.txt": "Grace is free. It is also costly."}).load),
			WithCounter(counter.NewSentenceCounter()))

		res, err := g.Run(ctx, Request{InputRef: "a.txt"})
		require.NoError(t, err)

		require.NotNil(t, res.Summary.Measure)
		assert.Equal(t, "sentences", res.Summary.Measure.Unit)
		assert.Equal(t, 2, res.Summary.Measure.Count)
		assert.Equal(t, 7, res.Summary.InputWords)
		assert.Equal(t, 33, res.Summary.InputCharacters)
	})
}

func TestGeneratorRunErrors(t *testing.T) {
	ctx := context.Background()
	g := newTestGenerator(map[string]string{
		"a.txt":    "faith hope love",
		"bad.json": `{"text": "unterminated`,
		"blank":    "  \n\t ",
	}, nil)

	validation := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing input", Request{}, "inputRef"},
		{"unknown input type", Request{InputRef: "a.txt", InputType: "pdf"}, "inputType"},
		{"unknown stopword group", Request{InputRef: "a.txt", StopwordGroups: []string{"nonsense"}}, "stopwordGroups"},
		{"negative curve power", Request{InputRef: "a.txt", CurvePower: Float64(-1)}, "curve"},
		{"zero curve power", Request{InputRef: "a.txt", CurvePower: Float64(0), MinFontSize: 10, MaxFontSize: 20}, "curve"},
		{"negative reference weight", Request{InputRef: "a.txt", ReferenceWeight: Int(-1)}, "referenceWeight"},
		{"min font above max", Request{InputRef: "a.txt", MinFontSize: 50, MaxFontSize: 20}, "curve"},
		{"negative max items", Request{InputRef: "a.txt", MaxItems: -3}, "maxItems"},
		{"negative boost", Request{InputRef: "a.txt", Boosts: map[string]float64{"love": -2}}, "boosts"},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Run(ctx, tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("Should report a missing input", func(t *testing.T) {
		_, err := g.Run(ctx, Request{InputRef: "missing.txt"})
		var ierr *InputError
		require.ErrorAs(t, err, &ierr)
		assert.True(t, errors.Is(err, fetch.ErrNotFound))
	})

	t.Run("Should report empty input", func(t *testing.T) {
		_, err := g.Run(ctx, Request{InputRef: "blank"})
		var ierr *InputError
		require.ErrorAs(t, err, &ierr)
		assert.Contains(t, ierr.Error(), "empty")
	})

	t.Run("Should report malformed JSON when declared", func(t *testing.T) {
		_, err := g.Run(ctx, Request{InputRef: "a.txt", InputType: "json"})
		var ierr *InputError
		require.ErrorAs(t, err, &ierr)

		_, err = g.Run(ctx, Request{InputRef: "bad.json"})
		require.ErrorAs(t, err, &ierr)
	})
}

func TestGeneratorCache(t *testing.T) {
	ctx := context.Background()
	text := "Grace upon grace. Read John 3:16 and Romans 8:28; grace abounds in John 1:16."
	req := Request{
		InputRef:       "a.txt",
		StopwordGroups: []string{"base"},
		Boosts:         map[string]float64{"grace": 2},
	}

	t.Run("Should produce identical results with and without the cache", func(t *testing.T) {
		cached := newTestGenerator(map[string]string{"a.txt": text}, cache.New(cache.Options{Enabled: true, MaxEntries: 4}))
		uncached := newTestGenerator(map[string]string{"a.txt": text}, cache.New(cache.Options{Enabled: false}))

		first, err := cached.Run(ctx, req)
		require.NoError(t, err)
		second, err := cached.Run(ctx, req)
		require.NoError(t, err)
		plain, err := uncached.Run(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, first, plain)
	})

	t.Run("Should reuse the extraction across requests with different filters", func(t *testing.T) {
		c := cache.New(cache.Options{Enabled: true, MaxEntries: 4})
		g := newTestGenerator(map[string]string{"a.txt": text}, c)

		_, err := g.Run(ctx, req)
		require.NoError(t, err)

		other := req
		other.KeepWords = []string{"in"}
		other.MinTokenLength = 3
		_, err = g.Run(ctx, other)
		require.NoError(t, err)

		stats := c.Stats()
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
		assert.Equal(t, 1, stats.Entries)
	})

	t.Run("Should miss when extraction settings change", func(t *testing.T) {
		c := cache.New(cache.Options{Enabled: true, MaxEntries: 4})
		g := newTestGenerator(map[string]string{"a.txt": text}, c)

		_, err := g.Run(ctx, req)
		require.NoError(t, err)

		other := req
		other.DetectReferences = Bool(false)
		_, err = g.Run(ctx, other)
		require.NoError(t, err)

		assert.Equal(t, uint64(2), c.Stats().Misses)
	})

	t.Run("Should bypass the cache with SkipCache", func(t *testing.T) {
		c := cache.New(cache.Options{Enabled: true, MaxEntries: 4})
		g := newTestGenerator(map[string]string{"a.txt": text}, c)

		skip := req
		skip.SkipCache = true
		_, err := g.Run(ctx, skip)
		require.NoError(t, err)

		assert.Zero(t, c.Stats().Entries)
	})

	t.Run("Should be safe for concurrent runs", func(t *testing.T) {
		g := newTestGenerator(map[string]string{"a.txt": text}, cache.New(cache.Options{Enabled: true, MaxEntries: 2}))
		want, err := g.Run(ctx, req)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]*Result, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = g.Run(ctx, req)
			}(i)
		}
		wg.Wait()

		for _, got := range results {
			assert.Equal(t, want, got)
		}
	})
}
