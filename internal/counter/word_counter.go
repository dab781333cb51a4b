package counter

import (
	"log/slog"
	"strings"
)

// WordCounter counts whitespace-separated words. It measures raw input
// size and is independent of the tokenizer's notion of a word.
type WordCounter struct{}

// NewWordCounter creates a new WordCounter instance.
func NewWordCounter() Counter {
	return &WordCounter{}
}

// Count returns the number of whitespace-separated fields in text.
func (wc *WordCounter) Count(text string) int {
	wordCount := len(strings.Fields(text))
	if wordCount > 0 {
		slog.Debug("Word count calculated", "textLength", len(text), "wordCount", wordCount)
	}
	return wordCount
}

// Name returns the name of this counting method for logging and debugging.
func (wc *WordCounter) Name() string {
	return "words"
}
