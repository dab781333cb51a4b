// Package counter measures the size of extracted input text.
//
// Four strategies are available: LLM tokens (tiktoken's cl100k_base
// encoding), whitespace-separated words, Unicode characters, and sentences
// (prose's segmenter). Every generation reports characters and words; the
// CLI can ask for one more measure with --count.
//
// Usage Example:
//
//	c, err := counter.NewCounter(counter.Sentences)
//	n := c.Count("Grace is free. It is also costly.")
//	// n == 2
package counter

import (
	"fmt"
	"strings"
)

// Counter defines the interface for different text counting strategies.
type Counter interface {
	// Count returns the number of units (tokens, words, characters or sentences) in text.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for logging)
	Name() string
}

// CountingMethod represents the different available counting strategies.
type CountingMethod int

const (
	// Tokens uses tiktoken with cl100k_base encoding
	Tokens CountingMethod = iota
	// Words counts words using whitespace splitting
	Words
	// Characters counts individual characters including whitespace
	Characters
	// Sentences counts sentences found by prose's segmenter
	Sentences
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	case Sentences:
		return "sentences"
	default:
		return "unknown"
	}
}

// ParseMethod maps a method name (as printed by String) to a CountingMethod.
func ParseMethod(name string) (CountingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tokens", "token":
		return Tokens, nil
	case "words", "word":
		return Words, nil
	case "characters", "chars", "char":
		return Characters, nil
	case "sentences", "sentence":
		return Sentences, nil
	}
	return 0, fmt.Errorf("unknown counting method %q (want tokens, words, characters or sentences)", name)
}

// NewCounter creates a new Counter instance based on the specified method.
// Returns an error if the counter cannot be initialized (e.g., tiktoken encoding fails).
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Tokens:
		return NewTokenCounter()
	case Words:
		return NewWordCounter(), nil
	case Characters:
		return NewCharCounter(), nil
	case Sentences:
		return NewSentenceCounter(), nil
	default:
		return nil, fmt.Errorf("unsupported counting method %d", int(method))
	}
}

// Measurement is one named count of a text.
type Measurement struct {
	Unit  string `json:"unit"`
	Count int    `json:"count"`
}

// Measure runs c over text.
func Measure(c Counter, text string) Measurement {
	return Measurement{Unit: c.Name(), Count: c.Count(text)}
}
