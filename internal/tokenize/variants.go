package tokenize

import (
	"log/slog"

	"github.com/kljensen/snowball"
)

// VariantFolder maps inflected forms onto the first surface form seen with
// the same English Snowball stem, so "prayer", "prayers" and "praying" can
// be counted as one term.
type VariantFolder struct {
	canonical map[string]string // stem -> first-seen surface form
	stems     map[string]string // surface form -> stem (memo)
}

// NewVariantFolder creates an empty VariantFolder. A folder remembers the
// surface forms it has seen; use a fresh one per document.
func NewVariantFolder() *VariantFolder {
	return &VariantFolder{
		canonical: make(map[string]string),
		stems:     make(map[string]string),
	}
}

// Fold returns the canonical surface form for token.
func (f *VariantFolder) Fold(token string) string {
	stem, ok := f.stems[token]
	if !ok {
		var err error
		stem, err = snowball.Stem(token, "english", true)
		if err != nil || stem == "" {
			// if stemming fails, the token is its own stem
			stem = token
		}
		f.stems[token] = stem
	}

	if first, seen := f.canonical[stem]; seen {
		return first
	}
	f.canonical[stem] = token
	return token
}

// FoldAll folds every token, returning a new slice.
func (f *VariantFolder) FoldAll(tokens []string) []string {
	folded := make([]string, len(tokens))
	merged := 0
	for i, token := range tokens {
		folded[i] = f.Fold(token)
		if folded[i] != token {
			merged++
		}
	}

	slog.Debug("Folded token variants", "tokens", len(tokens), "merged", merged, "stems", len(f.canonical))
	return folded
}
