// Package gemini implements an embedding backend over the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/botirk38/embedsim/truncate"
	"github.com/botirk38/embedsim/types"
)

const (
	DefaultModel = "text-embedding-004"

	// DefaultTaskType tunes embeddings for comparing texts with each other.
	DefaultTaskType = "SEMANTIC_SIMILARITY"
)

// Override keys recognized by the Gemini backend.
const (
	OptBaseURL    = "base_url"
	OptDimensions = "dimensions"
	OptTaskType   = "task_type"
)

// OverrideKeys lists the backend-specific override keys.
var OverrideKeys = []string{OptBaseURL, OptDimensions, OptTaskType}

// Config provides configuration options for the Gemini embedding provider.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	TaskType   string
	Dimensions int

	// MaxTokens caps each input before the request when > 0. Counts use
	// cl100k_base, which approximates the Gemini tokenizer; the service
	// truncates whatever still exceeds its own limit.
	MaxTokens int
	// Truncator defaults to a cl100k_base TokenTruncator.
	Truncator truncate.Truncator
	Logger    *zap.Logger
}

// Provider embeds text through the Gemini EmbedContent endpoint.
type Provider struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int
	maxTokens  int
	truncator  truncate.Truncator
	logger     *zap.Logger
}

// New creates a Gemini provider. It fails with a *types.ConfigError when no
// API key is configured.
func New(ctx context.Context, config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, &types.ConfigError{
			Provider: "gemini",
			Setting:  "API key (EMBEDSIM_GEMINI_API_KEY, GEMINI_API_KEY or GOOGLE_API_KEY)",
		}
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	taskType := config.TaskType
	if taskType == "" {
		taskType = DefaultTaskType
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	truncator := config.Truncator
	if truncator == nil && config.MaxTokens > 0 {
		tt, err := truncate.New()
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		truncator = tt
	}

	return &Provider{
		client:     client,
		model:      model,
		taskType:   taskType,
		dimensions: config.Dimensions,
		maxTokens:  config.MaxTokens,
		truncator:  truncator,
		logger:     logger,
	}, nil
}

// Encode embeds all texts with one EmbedContent call.
func (p *Provider) Encode(ctx context.Context, texts []string) (types.Matrix, error) {
	if len(texts) == 0 {
		return types.Matrix{}, nil
	}

	inputs := texts
	if p.maxTokens > 0 {
		cut := 0
		var err error
		inputs, cut, err = truncate.All(p.truncator, texts, p.maxTokens)
		if err != nil {
			return nil, p.fail(err)
		}
		if cut > 0 {
			p.logger.Debug("truncated inputs to token limit",
				zap.String("model", p.model),
				zap.Int("truncated", cut),
				zap.Int("max_tokens", p.maxTokens))
		}
	}

	contents := make([]*genai.Content, len(inputs))
	for i, text := range inputs {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: p.taskType}
	if p.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(p.dimensions))
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, p.fail(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, p.fail(fmt.Errorf("requested %d embeddings, Gemini returned %d", len(texts), len(resp.Embeddings)))
	}

	out := make(types.Matrix, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, p.fail(fmt.Errorf("empty embedding at index %d", i))
		}
		out[i] = emb.Values
	}
	return out, nil
}

func (p *Provider) fail(err error) error {
	return &types.BackendError{ModelID: p.model, Op: "encode", Err: err}
}

// Close is a no-op; the genai client holds no resources needing release.
func (p *Provider) Close() error { return nil }
