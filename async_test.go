package embedsim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/botirk38/embedsim/types"
)

func TestAsyncOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("PairSimAsync", func(t *testing.T) {
		e := newTestEngine(t, &mockFactory{})

		result := <-e.PairSimAsync(ctx, "hello", "hello")
		if result.Error != nil {
			t.Fatalf("PairSimAsync failed: %v", result.Error)
		}
		if math.Abs(result.Score-1) > 1e-6 {
			t.Errorf("Expected score 1, got %f", result.Score)
		}
	})

	t.Run("PairSimAsync_Error", func(t *testing.T) {
		e := newTestEngine(t, &mockFactory{})

		result := <-e.PairSimAsync(ctx, "", "hello")
		if !errors.Is(result.Error, types.ErrValidation) {
			t.Errorf("Expected validation error, got %v", result.Error)
		}
	})

	t.Run("GroupSimAsync", func(t *testing.T) {
		e := newTestEngine(t, &mockFactory{})

		result := <-e.GroupSimAsync(ctx, []string{"hello", "hi", "goodbye"})
		if result.Error != nil {
			t.Fatalf("GroupSimAsync failed: %v", result.Error)
		}
		if len(result.Scores) != 3 {
			t.Errorf("Expected 3 scores, got %d", len(result.Scores))
		}
	})

	t.Run("PairSimBatch", func(t *testing.T) {
		f := &mockFactory{}
		e := newTestEngine(t, f)

		pairs := [][2]string{
			{"hello", "hello"},
			{"hello", "hi"},
			{"hello", "goodbye"},
		}
		scores, err := e.PairSimBatch(ctx, pairs)
		if err != nil {
			t.Fatalf("PairSimBatch failed: %v", err)
		}
		if len(scores) != len(pairs) {
			t.Fatalf("Expected %d scores, got %d", len(pairs), len(scores))
		}
		for i, p := range pairs {
			want, err := e.PairSim(ctx, p[0], p[1])
			if err != nil {
				t.Fatal(err)
			}
			if scores[i] != want {
				t.Errorf("pair %d: batch score %f, sequential %f", i, scores[i], want)
			}
		}
		if len(f.backends) != 1 {
			t.Errorf("calls should share one backend, got %d", len(f.backends))
		}
	})

	t.Run("PairSimBatch_OneEncode", func(t *testing.T) {
		f := &mockFactory{}
		e := newTestEngine(t, f)

		pairs := make([][2]string, 0, 100)
		for i := 0; i < 50; i++ {
			pairs = append(pairs, [2]string{"hello", "goodbye"}, [2]string{"hi", "world"})
		}
		scores, err := e.PairSimBatch(ctx, pairs)
		if err != nil {
			t.Fatalf("PairSimBatch failed: %v", err)
		}
		if len(scores) != len(pairs) {
			t.Fatalf("Expected %d scores, got %d", len(pairs), len(scores))
		}

		b := f.last()
		if n := b.encodes.Load(); n != 1 {
			t.Errorf("backend Encode called %d times, want 1", n)
		}
		if n := b.texts.Load(); n != 4 {
			t.Errorf("backend encoded %d texts, want 4 distinct", n)
		}
	})

	t.Run("PairSimBatch_Empty", func(t *testing.T) {
		e := newTestEngine(t, &mockFactory{})
		scores, err := e.PairSimBatch(ctx, nil)
		if err != nil || len(scores) != 0 {
			t.Errorf("PairSimBatch(nil) = %v, %v; want empty, nil", scores, err)
		}
	})

	t.Run("PairSimBatch_ZeroVector", func(t *testing.T) {
		e := newTestEngine(t, &mockFactory{})
		_, err := e.PairSimBatch(ctx, [][2]string{{"hello", "hi"}, {"zero", "hi"}})
		if !errors.Is(err, types.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("PairSimBatch_Error", func(t *testing.T) {
		e := newTestEngine(t, &mockFactory{})

		_, err := e.PairSimBatch(ctx, [][2]string{{"hello", "hi"}, {"", "hi"}})
		if !errors.Is(err, types.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}
