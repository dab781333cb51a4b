// Package adjust parses the "key=value" entries used for phrase boosts and
// manual weight adjustments. Parsing is lenient: malformed entries are
// skipped and reported, never fatal.
package adjust

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
)

// LineError describes one skipped entry.
type LineError struct {
	Index  int // position in the input slice
	Entry  string
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("entry %d %q: %s", e.Index+1, e.Entry, e.Reason)
}

var defaultBoosts = map[string]float64{
	"word and sacrament": 4.0, "pastoral care": 3.0, "kingdom of god": 3.0, "kingdom of heaven": 3.0,
	"covenant": 2.5, "grace": 2.0, "mercy": 2.0, "repentance": 2.5, "redemption": 2.5, "salvation": 2.5,
	"holiness": 2.5, "righteousness": 2.5, "discipleship": 2.2, "mission": 2.0, "ministry": 1.8, "vocation": 2.0,
	"calling": 2.0, "shepherd": 2.0, "pastor": 2.0, "flock": 2.0, "sacrament": 2.5, "sacraments": 2.5,
	"eucharist": 2.5, "communion": 2.5, "baptism": 2.5, "worship": 1.8, "prayer": 1.8, "psalm": 1.6, "scripture": 1.8,
	"bible": 1.8, "incarnation": 2.5, "resurrection": 2.5, "pentecost": 2.0, "advent": 2.0, "lent": 2.0, "epiphany": 2.0,
	"lord": 1.6, "saviour": 2.0, "savior": 2.0, "redeemer": 2.2, "alpha": 1.6, "omega": 1.6, "service": 1.2,
	"pastoral": 2.0, "sabbath": 2.0, "beatitudes": 2.0, "parable": 1.9, "parables": 1.9, "sanctification": 2.5,
}

// DefaultBoosts returns a fresh copy of the built-in boost table for
// sermon and ministry writing.
func DefaultBoosts() map[string]float64 {
	return maps.Clone(defaultBoosts)
}

// ParseBoosts parses "phrase=factor" entries. Phrases are lower-cased;
// factors must be finite and non-negative. Later entries override earlier ones.
func ParseBoosts(entries []string) (map[string]float64, []LineError) {
	boosts := make(map[string]float64, len(entries))
	var skipped []LineError

	for i, entry := range entries {
		key, raw, ok := split(entry)
		if !ok {
			skipped = append(skipped, LineError{i, entry, "want phrase=factor"})
			continue
		}
		factor, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(factor) || math.IsInf(factor, 0) {
			skipped = append(skipped, LineError{i, entry, fmt.Sprintf("invalid factor %q", raw)})
			continue
		}
		if factor < 0 {
			skipped = append(skipped, LineError{i, entry, "factor must not be negative"})
			continue
		}
		boosts[key] = factor
	}

	logSkipped("boost", skipped)
	return boosts, skipped
}

// ParseAdjustments parses "word=delta" entries such as "grace=+3" or
// "amen=-2". Fractional deltas are rounded to the nearest integer.
func ParseAdjustments(entries []string) (map[string]int, []LineError) {
	adjustments := make(map[string]int, len(entries))
	var skipped []LineError

	for i, entry := range entries {
		key, raw, ok := split(entry)
		if !ok {
			skipped = append(skipped, LineError{i, entry, "want word=delta"})
			continue
		}
		delta, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(delta) || math.IsInf(delta, 0) {
			skipped = append(skipped, LineError{i, entry, fmt.Sprintf("invalid delta %q", raw)})
			continue
		}
		adjustments[key] = int(math.Round(delta))
	}

	logSkipped("adjustment", skipped)
	return adjustments, skipped
}

// split cuts entry at the last '=' so keys may contain '=' themselves.
func split(entry string) (key, value string, ok bool) {
	i := strings.LastIndex(entry, "=")
	if i < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(entry[:i]))
	value = strings.TrimSpace(entry[i+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func logSkipped(kind string, skipped []LineError) {
	for _, e := range skipped {
		slog.Debug("Skipped "+kind+" entry", "index", e.Index, "entry", e.Entry, "reason", e.Reason)
	}
}
