// Package sizing maps term weights onto font sizes and font weights.
//
// Sizes follow a power curve over the normalized weight:
//
//	w_norm = (w - minWeight) / (maxWeight - minWeight)   (0 when all weights are equal)
//	size   = minFont + (maxFont - minFont) * w_norm^curvePower
//
// A curve power below 1 lifts the small terms toward the large ones; above 1
// it exaggerates the gap. Font weights are assigned from the rank fraction.
package sizing

import (
	"fmt"
	"math"

	"github.com/chriscorrea/wordsift/internal/weight"
)

// Curve holds the size-curve parameters.
type Curve struct {
	MinFontSize int
	MaxFontSize int
	Power       float64
}

// Validate reports an error for a curve that cannot produce sizes.
func (c Curve) Validate() error {
	switch {
	case c.Power <= 0 || math.IsNaN(c.Power) || math.IsInf(c.Power, 0):
		return fmt.Errorf("curve power must be a positive number, got %v", c.Power)
	case c.MinFontSize <= 0:
		return fmt.Errorf("minimum font size must be positive, got %d", c.MinFontSize)
	case c.MaxFontSize < c.MinFontSize:
		return fmt.Errorf("maximum font size %d is below minimum font size %d", c.MaxFontSize, c.MinFontSize)
	}
	return nil
}

// Size maps w onto the curve given the weight range [minWeight, maxWeight].
func (c Curve) Size(w, minWeight, maxWeight int) int {
	norm := 0.0
	if maxWeight > minWeight {
		norm = float64(w-minWeight) / float64(maxWeight-minWeight)
	}
	norm = math.Max(0, math.Min(1, norm))

	size := float64(c.MinFontSize) + float64(c.MaxFontSize-c.MinFontSize)*math.Pow(norm, c.Power)
	return int(math.Round(size))
}

// Break assigns a font weight to terms whose rank fraction is below Below.
type Break struct {
	Below  float64
	Weight string
}

// DefaultBreaks gives the heaviest faces to the top few percent of terms.
var DefaultBreaks = []Break{
	{Below: 0.04, Weight: "900"},
	{Below: 0.12, Weight: "800"},
	{Below: 0.30, Weight: "700"},
	{Below: 0.60, Weight: "600"},
}

// fallbackWeight applies past the last break.
const fallbackWeight = "500"

// FontWeight returns the font weight for the term at rank (0-based) of total.
func FontWeight(rank, total int, breaks []Break) string {
	if total <= 1 {
		return "600"
	}
	fraction := float64(rank) / float64(max(total-1, 1))
	for _, b := range breaks {
		if fraction < b.Below {
			return b.Weight
		}
	}
	return fallbackWeight
}

// SizedTerm is a ranked term with its rendering attributes.
type SizedTerm struct {
	weight.Term
	Size         int    `json:"size"`
	VisualWeight string `json:"visualWeight"`
}

// Apply sizes ranked terms. Terms must already be ranked by final weight,
// descending; the output preserves their order.
func Apply(ranked []weight.Term, curve Curve, breaks []Break) []SizedTerm {
	sized := make([]SizedTerm, len(ranked))
	if len(ranked) == 0 {
		return sized
	}

	minWeight, maxWeight := ranked[0].FinalWeight, ranked[0].FinalWeight
	for _, t := range ranked[1:] {
		minWeight = min(minWeight, t.FinalWeight)
		maxWeight = max(maxWeight, t.FinalWeight)
	}

	for i, t := range ranked {
		sized[i] = SizedTerm{
			Term:         t,
			Size:         curve.Size(t.FinalWeight, minWeight, maxWeight),
			VisualWeight: FontWeight(i, len(ranked), breaks),
		}
	}
	return sized
}
