package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/chriscorrea/wordsift/internal/counter"
	"github.com/chriscorrea/wordsift/internal/sizing"
	"github.com/chriscorrea/wordsift/internal/weight"
)

// Summary holds the exact counts of one run.
type Summary struct {
	TotalTokens      int                  `json:"totalTokens"`
	UniqueTokens     int                  `json:"uniqueTokens"`
	ReferenceMatches int                  `json:"referenceMatches"`
	TotalFinal       int                  `json:"totalFinal"`
	References       map[string]int       `json:"references,omitempty"` // citation -> count
	InputCharacters  int                  `json:"inputCharacters"`
	InputWords       int                  `json:"inputWords"`
	Measure          *counter.Measurement `json:"measure,omitempty"`
}

// Result is the outcome of a run. Sized Terms are produced for normal runs,
// ranked Words for analysis-only runs.
type Result struct {
	Terms        []sizing.SizedTerm
	Words        []weight.Term
	Summary      Summary
	Warnings     []string
	AnalysisOnly bool
}

// MarshalJSON emits {terms, summary} or, for analysis-only runs,
// {summary, words}. An empty term list is written as [].
func (r Result) MarshalJSON() ([]byte, error) {
	if r.AnalysisOnly {
		words := r.Words
		if words == nil {
			words = []weight.Term{}
		}
		return json.Marshal(struct {
			Summary  Summary       `json:"summary"`
			Words    []weight.Term `json:"words"`
			Warnings []string      `json:"warnings,omitempty"`
		}{r.Summary, words, r.Warnings})
	}

	terms := r.Terms
	if terms == nil {
		terms = []sizing.SizedTerm{}
	}
	return json.Marshal(struct {
		Terms    []sizing.SizedTerm `json:"terms"`
		Summary  Summary            `json:"summary"`
		Warnings []string           `json:"warnings,omitempty"`
	}{terms, r.Summary, r.Warnings})
}

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// JSON output format (default)
	JSON OutputFormat = iota
	// plaintext table
	Text
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case JSON:
		return "JSON"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// ParseFormat maps "json" or "text" to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "text", "txt":
		return Text, nil
	}
	return JSON, fmt.Errorf("unknown output format %q (want json or text)", s)
}

// Render writes res to w in the given format.
func Render(w io.Writer, res *Result, format OutputFormat) error {
	switch format {
	case Text:
		return renderText(w, res)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}

func renderText(w io.Writer, res *Result) error {
	var b strings.Builder

	if res.AnalysisOnly {
		fmt.Fprintf(&b, "%-28s %8s %6s %6s %6s %6s\n", "WORD", "WEIGHT", "COUNT", "REF", "ADJ", "BOOST")
		for _, t := range res.Words {
			fmt.Fprintf(&b, "%-28s %8s %6d %6d %+6d %6.2f\n",
				t.Text, humanize.Comma(int64(t.FinalWeight)), t.BaseCount, t.ReferenceBonus, t.ManualAdjustment, t.BoostMultiplier)
		}
	} else {
		fmt.Fprintf(&b, "%-28s %8s %6s %6s\n", "WORD", "WEIGHT", "SIZE", "FACE")
		for _, t := range res.Terms {
			fmt.Fprintf(&b, "%-28s %8s %6d %6s\n", t.Text, humanize.Comma(int64(t.FinalWeight)), t.Size, t.VisualWeight)
		}
	}

	s := res.Summary
	fmt.Fprintf(&b, "\n%s tokens (%s unique) from %s words, %s characters\n",
		humanize.Comma(int64(s.TotalTokens)), humanize.Comma(int64(s.UniqueTokens)),
		humanize.Comma(int64(s.InputWords)), humanize.Comma(int64(s.InputCharacters)))
	if s.Measure != nil {
		fmt.Fprintf(&b, "input size: %s %s\n", humanize.Comma(int64(s.Measure.Count)), s.Measure.Unit)
	}
	if s.ReferenceMatches > 0 {
		citations := make([]string, 0, len(s.References))
		for c := range s.References {
			citations = append(citations, c)
		}
		sort.Strings(citations)
		fmt.Fprintf(&b, "%s %s: %s\n", humanize.Comma(int64(s.ReferenceMatches)),
			english.PluralWord(s.ReferenceMatches, "reference", ""), strings.Join(citations, ", "))
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", warning)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
