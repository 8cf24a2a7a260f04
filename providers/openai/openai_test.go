package openai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	openai "github.com/openai/openai-go/v2"

	"github.com/botirk38/embedsim/types"
)

func TestOpenAIProvider_GetMaxTokens(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		maxTokens int
		expected  int
	}{
		{
			name:     "text-embedding-3-small",
			model:    openai.EmbeddingModelTextEmbedding3Small,
			expected: 8191,
		},
		{
			name:     "text-embedding-3-large",
			model:    openai.EmbeddingModelTextEmbedding3Large,
			expected: 8191,
		},
		{
			name:     "unknown model",
			model:    "unknown-model",
			expected: 8191, // Should return safe default
		},
		{
			name:      "explicit limit",
			model:     openai.EmbeddingModelTextEmbedding3Small,
			maxTokens: 512,
			expected:  512,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &OpenAIProvider{
				model:     tt.model,
				maxTokens: tt.maxTokens,
			}

			maxTokens := provider.GetMaxTokens()
			if maxTokens != tt.expected {
				t.Errorf("GetMaxTokens() = %d, want %d for model %s", maxTokens, tt.expected, tt.model)
			}
		})
	}
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	if !errors.Is(err, types.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	var cfgErr *types.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Provider != "openai" {
		t.Errorf("expected *types.ConfigError for openai, got %#v", err)
	}
}

type embedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

func writeEmbeddings(w http.ResponseWriter, rows map[int][]float64) {
	data := make([]map[string]any, 0, len(rows))
	// Emit in reverse index order to exercise reordering.
	for i := len(rows) - 1; i >= 0; i-- {
		data = append(data, map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": rows[i],
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
		"model":  "text-embedding-3-small",
		"usage":  map[string]any{"prompt_tokens": 4, "total_tokens": 4},
	})
}

func TestOpenAIProviderEncode(t *testing.T) {
	var got embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeEmbeddings(w, map[int][]float64{
			0: {0.1, 0.2, 0.3},
			1: {0.4, 0.5, 0.6},
		})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Dimensions: 3,
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	defer func() { _ = p.Close() }()

	m, err := p.Encode(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(got.Input) != 2 || got.Input[0] != "hello" || got.Input[1] != "world" {
		t.Errorf("request input = %v, want [hello world]", got.Input)
	}
	if got.Model != DefaultOpenAIModel {
		t.Errorf("request model = %q", got.Model)
	}
	if got.Dimensions != 3 {
		t.Errorf("request dimensions = %d, want 3", got.Dimensions)
	}

	if len(m) != 2 {
		t.Fatalf("rows = %d, want 2", len(m))
	}
	// Should be reordered by index
	if m[0][0] != float32(0.1) || m[1][0] != float32(0.4) {
		t.Errorf("rows not in request order: %v", m)
	}
}

func TestOpenAIProviderEncodeErrors(t *testing.T) {
	t.Run("http error is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer server.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "bad", BaseURL: server.URL})
		if err != nil {
			t.Fatal(err)
		}

		_, err = p.Encode(context.Background(), []string{"hello"})
		if !errors.Is(err, types.ErrBackend) {
			t.Fatalf("expected backend error, got %v", err)
		}
		if n := calls.Load(); n != 1 {
			t.Errorf("server saw %d requests, want 1", n)
		}
	})

	t.Run("short response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEmbeddings(w, map[int][]float64{0: {1, 0}})
		}))
		defer server.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
		if err != nil {
			t.Fatal(err)
		}

		_, err = p.Encode(context.Background(), []string{"a", "b"})
		if !errors.Is(err, types.ErrBackend) {
			t.Errorf("expected backend error, got %v", err)
		}
	})
}

func TestOpenAIProviderEncodeEmpty(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	m, err := p.Encode(context.Background(), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected no rows, got %d", len(m))
	}
}

func TestOpenAIProviderLive(t *testing.T) {
	// Skip if no API key available
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping OpenAI provider tests")
	}

	provider, err := NewOpenAIProvider(OpenAIConfig{APIKey: apiKey})
	if err != nil {
		t.Fatalf("Failed to create OpenAI provider: %v", err)
	}
	defer func() { _ = provider.Close() }()

	m, err := provider.Encode(context.Background(), []string{"Hello, world!", "Goodbye"})
	if err != nil {
		t.Fatalf("Failed to embed texts: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(m))
	}

	// text-embedding-3-small returns 1536 dimensions
	if m.Dims() != 1536 {
		t.Errorf("Expected 1536 dimensions, got %d", m.Dims())
	}

	// Embeddings should be normalized (roughly unit length)
	var magnitude float64
	for _, val := range m[0] {
		magnitude += float64(val) * float64(val)
	}
	if math.Abs(math.Sqrt(magnitude)-1) > 0.01 {
		t.Errorf("Expected unit-length embedding, got magnitude %f", math.Sqrt(magnitude))
	}
}
