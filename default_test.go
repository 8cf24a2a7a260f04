package embedsim

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/botirk38/embedsim/types"
)

// resetDefault isolates the process-wide engine and its environment.
func resetDefault(t *testing.T) {
	t.Helper()
	reset := func() {
		if defaultEngine != nil {
			_ = defaultEngine.Close()
		}
		defaultOnce = sync.Once{}
		defaultEngine, defaultErr = nil, nil
	}
	reset()
	t.Cleanup(reset)

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("EMBEDSIM_LOGGING_LEVEL", "error")
}

// embeddingServer answers OpenAI embeddings requests from a fixed table.
func embeddingServer(t *testing.T, vectors map[string][]float64) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu    sync.Mutex
		model []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		model = append(model, req.Model)
		mu.Unlock()

		data := make([]map[string]any, len(req.Input))
		for i, text := range req.Input {
			vec, ok := vectors[text]
			if !ok {
				vec = []float64{0.5, 0.5, 0.5}
			}
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(server.Close)
	return server, &model
}

func TestDefaultEngine(t *testing.T) {
	resetDefault(t)
	server, models := embeddingServer(t, map[string][]float64{
		"hello":   {1.0, 0.1, 0.0},
		"hi":      {0.9, 0.2, 0.0},
		"goodbye": {0.1, 0.2, 0.95},
	})
	t.Setenv("EMBEDSIM_OPENAI_API_KEY", "test-key")
	t.Setenv("EMBEDSIM_OPENAI_BASE_URL", server.URL)
	t.Setenv("EMBEDSIM_MODEL", "openai/text-embedding-3-large")

	e, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	again, err := Default()
	if err != nil || again != e {
		t.Fatalf("Default should return the same engine, got %p and %p (%v)", e, again, err)
	}
	if got := e.DefaultModel(); got != "openai/text-embedding-3-large" {
		t.Errorf("DefaultModel = %q, want EMBEDSIM_MODEL", got)
	}

	ctx := context.Background()
	score, err := PairSim(ctx, "hello", "hello")
	if err != nil {
		t.Fatalf("PairSim: %v", err)
	}
	if math.Abs(score-1) > 1e-6 {
		t.Errorf("PairSim(hello, hello) = %f, want 1", score)
	}

	scores, err := GroupSim(ctx, []string{"hello", "hi", "goodbye"})
	if err != nil {
		t.Fatalf("GroupSim: %v", err)
	}
	if len(scores) != 3 || scores[2] >= scores[0] || scores[2] >= scores[1] {
		t.Errorf("GroupSim outlier should score lowest, got %v", scores)
	}

	if _, err := PairSim(ctx, "", "hello"); !errors.Is(err, types.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	for _, m := range *models {
		if m != "text-embedding-3-large" {
			t.Errorf("request used model %q, want text-embedding-3-large", m)
		}
	}
}

func TestDefaultEngineUnknownModel(t *testing.T) {
	resetDefault(t)
	t.Setenv("EMBEDSIM_MODEL", "acme/missing")

	if _, err := Default(); !errors.Is(err, types.ErrUnknownModel) {
		t.Fatalf("Default: expected unknown model error, got %v", err)
	}
	if _, err := PairSim(context.Background(), "a", "b"); !errors.Is(err, types.ErrUnknownModel) {
		t.Errorf("PairSim: expected unknown model error, got %v", err)
	}
	if _, err := GroupSim(context.Background(), []string{"a"}); !errors.Is(err, types.ErrUnknownModel) {
		t.Errorf("GroupSim: expected unknown model error, got %v", err)
	}
}
