package embedsim

import (
	"context"
	"fmt"

	"github.com/botirk38/embedsim/similarity"
	"github.com/botirk38/embedsim/types"
)

// PairSimResult holds the result of an async PairSim operation.
type PairSimResult struct {
	Score float64
	Error error
}

// GroupSimResult holds the result of an async GroupSim operation.
type GroupSimResult struct {
	Scores []float64
	Error  error
}

// PairSimAsync computes PairSim in the background.
// Returns a channel that will receive the result when complete.
func (e *Engine) PairSimAsync(ctx context.Context, a, b string, opts ...CallOption) <-chan PairSimResult {
	resultCh := make(chan PairSimResult, 1)
	go func() {
		defer close(resultCh)
		score, err := e.PairSim(ctx, a, b, opts...)
		resultCh <- PairSimResult{Score: score, Error: err}
	}()
	return resultCh
}

// GroupSimAsync computes GroupSim in the background.
// Returns a channel that will receive the result when complete.
func (e *Engine) GroupSimAsync(ctx context.Context, texts []string, opts ...CallOption) <-chan GroupSimResult {
	resultCh := make(chan GroupSimResult, 1)
	go func() {
		defer close(resultCh)
		scores, err := e.GroupSim(ctx, texts, opts...)
		resultCh <- GroupSimResult{Scores: scores, Error: err}
	}()
	return resultCh
}

// PairSimBatch scores many pairs with a single backend call. Each distinct
// text is encoded once; scores are in pair order and match PairSim.
func (e *Engine) PairSimBatch(ctx context.Context, pairs [][2]string, opts ...CallOption) ([]float64, error) {
	if len(pairs) == 0 {
		return []float64{}, nil
	}

	index := make(map[string]int, 2*len(pairs))
	var texts []string
	for i, p := range pairs {
		for _, text := range p {
			if text == "" {
				return nil, types.Invalidf("pair %d has an empty text", i)
			}
			if _, seen := index[text]; !seen {
				index[text] = len(texts)
				texts = append(texts, text)
			}
		}
	}

	m, err := e.encode(ctx, texts, opts)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(pairs))
	for i, p := range pairs {
		score, err := similarity.PairScore(types.Matrix{m[index[p[0]]], m[index[p[1]]]})
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}
