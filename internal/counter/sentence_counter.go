package counter

import (
	"log/slog"
	"strings"

	"github.com/jdkato/prose/v2"
)

// SentenceCounter counts sentences with prose's punkt-based segmenter.
type SentenceCounter struct{}

// NewSentenceCounter creates a new SentenceCounter instance.
func NewSentenceCounter() Counter {
	return &SentenceCounter{}
}

// Count returns the number of sentences in text. Text the segmenter rejects
// counts as a single sentence.
func (sc *SentenceCounter) Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	// only segmentation is needed
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		slog.Debug("Sentence segmentation failed", "error", err)
		return 1
	}

	sentenceCount := len(doc.Sentences())
	slog.Debug("Sentence count calculated", "textLength", len(text), "sentenceCount", sentenceCount)
	return sentenceCount
}

// Name returns the name of this counting method for logging and debugging.
func (sc *SentenceCounter) Name() string {
	return "sentences"
}
