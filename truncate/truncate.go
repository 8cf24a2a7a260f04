// Package truncate trims texts to a token budget before they are sent to a
// remote embedding endpoint that rejects over-long inputs.
package truncate

import (
	"errors"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

var (
	// ErrInvalidMaxTokens indicates max tokens is invalid (<=0)
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")

	// ErrTokenizerFailed indicates tokenization failed
	ErrTokenizerFailed = errors.New("tokenization failed")
)

// Truncator defines the interface for token-budget truncation.
type Truncator interface {
	// Truncate returns text cut to at most maxTokens tokens and whether
	// anything was removed.
	Truncate(text string, maxTokens int) (string, bool, error)

	// CountTokens counts the number of tokens in the given text.
	CountTokens(text string) (int, error)
}

// TokenTruncator implements Truncator with a tiktoken encoding.
type TokenTruncator struct {
	encoding tokenizer.Codec
}

// New creates a TokenTruncator using cl100k_base, the encoding used by
// OpenAI's text-embedding-3 models.
func New() (*TokenTruncator, error) {
	return NewWithEncoding(tokenizer.Cl100kBase)
}

// NewWithEncoding creates a TokenTruncator for the given tiktoken encoding.
func NewWithEncoding(encoding tokenizer.Encoding) (*TokenTruncator, error) {
	enc, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return &TokenTruncator{encoding: enc}, nil
}

// CountTokens counts the number of tokens in the given text.
func (t *TokenTruncator) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := t.encoding.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}

	return len(ids), nil
}

// Truncate keeps the first maxTokens tokens of text.
func (t *TokenTruncator) Truncate(text string, maxTokens int) (string, bool, error) {
	if maxTokens <= 0 {
		return "", false, ErrInvalidMaxTokens
	}
	if text == "" {
		return text, false, nil
	}

	ids, _, err := t.encoding.Encode(text)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}
	if len(ids) <= maxTokens {
		return text, false, nil
	}

	out, err := t.encoding.Decode(ids[:maxTokens])
	if err != nil {
		return "", false, fmt.Errorf("failed to decode truncated text: %w", err)
	}
	return out, true, nil
}

// All truncates every text, preserving order, and returns the new slice and the
// number of texts that were shortened.
func All(t Truncator, texts []string, maxTokens int) ([]string, int, error) {
	out := make([]string, len(texts))
	cut := 0
	for i, text := range texts {
		s, truncated, err := t.Truncate(text, maxTokens)
		if err != nil {
			return nil, 0, fmt.Errorf("text %d: %w", i, err)
		}
		if truncated {
			cut++
		}
		out[i] = s
	}
	return out, cut, nil
}
