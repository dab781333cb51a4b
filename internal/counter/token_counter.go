package counter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "cl100k_base"

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

// TokenCounter counts LLM tokens with tiktoken's cl100k_base encoding.
// Instances share one encoding, loaded on first use.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter creates a new TokenCounter w/ cl100k_base encoding
func NewTokenCounter() (Counter, error) {
	encodingOnce.Do(func() {
		slog.Debug("Loading tiktoken encoding", "encoding", tokenEncoding)
		encoding, encodingErr = tiktoken.GetEncoding(tokenEncoding)
	})
	if encodingErr != nil {
		return nil, fmt.Errorf("failed to initialize %s encoding: %w", tokenEncoding, encodingErr)
	}
	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the number of tokens in text. Safe for concurrent use.
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	// nil params mean no special tokens allowed/disallowed
	tokenCount := len(tc.encoding.Encode(text, nil, nil))

	slog.Debug("Token count calculated", "textLength", len(text), "tokenCount", tokenCount)
	return tokenCount
}

// Name returns the name of this counting method (for logging and debugging).
func (tc *TokenCounter) Name() string {
	return "tokens (" + tokenEncoding + ")"
}
