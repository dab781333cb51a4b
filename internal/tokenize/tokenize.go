// Package tokenize turns raw document text into normalized word tokens.
//
// Normalization lower-cases the text, blanks out URLs and markdown links,
// and splits on whitespace and punctuation. An apostrophe survives only when
// it sits between two letters, so "god's" stays a single token while quoted
// words lose their quotes. Runs of digits never form tokens.
//
// Usage Example:
//
//	tokens := tokenize.Tokenize("Faith, hope & love")
//	// []string{"faith", "hope", "love"}
//
// Tokenize deliberately applies no length filter: the token stream is cached
// across requests, while the minimum length and keep list are per-request, so
// DropShort runs after the cache.
package tokenize

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// DefaultMinLength is the shortest token kept when no keep-list entry applies.
const DefaultMinLength = 2

var (
	urlRegex    = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mdLinkRegex = regexp.MustCompile(`\[[^\]]*\]\([^)]+\)`)
)

// Tokenize returns the normalized tokens of text in document order.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	text = mdLinkRegex.ReplaceAllString(text, " ")
	text = urlRegex.ReplaceAllString(text, " ")

	runes := []rune(text)
	tokens := make([]string, 0, len(runes)/5)
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r):
			current.WriteRune(unicode.ToLower(r))
		case isApostrophe(r):
			// keep only when joining two letters ("god's", "don't")
			if current.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]) {
				current.WriteRune('\'')
				continue
			}
			flush()
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// TokenizeAll tokenizes each segment independently and concatenates the
// results, preserving segment order. Segments come from structured input
// where every extracted string is its own piece of text.
func TokenizeAll(segments []string) []string {
	var tokens []string
	for _, segment := range segments {
		tokens = append(tokens, Tokenize(segment)...)
	}

	slog.Debug("Tokenized segments", "segments", len(segments), "tokens", len(tokens))
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// DropShort removes tokens shorter than minLength runes unless they appear in
// keep. A non-positive minLength falls back to DefaultMinLength.
func DropShort(tokens []string, minLength int, keep map[string]struct{}) []string {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) < minLength {
			if _, ok := keep[token]; !ok {
				continue
			}
		}
		kept = append(kept, token)
	}
	return kept
}

// Phrase normalizes a multi-word phrase (a boost key, a book name) the same
// way document text is normalized, joining the tokens with single spaces.
func Phrase(text string) string {
	return strings.Join(Tokenize(text), " ")
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’' || r == 'ʼ'
}
