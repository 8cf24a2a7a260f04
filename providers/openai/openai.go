package openai

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"

	"github.com/botirk38/embedsim/truncate"
	"github.com/botirk38/embedsim/types"
)

const (
	DefaultOpenAIModel = openai.EmbeddingModelTextEmbedding3Small

	// defaultMaxTokens is the input limit shared by OpenAI embedding models.
	defaultMaxTokens = 8191
)

// openAIModelLimits holds the per-input token limit of known models.
var openAIModelLimits = map[string]int{
	openai.EmbeddingModelTextEmbedding3Small: 8191,
	openai.EmbeddingModelTextEmbedding3Large: 8191,
	openai.EmbeddingModelTextEmbeddingAda002: 8191,
}

// Override keys recognized by the OpenAI backend.
const (
	OptBaseURL      = "base_url"
	OptOrganization = "organization"
	OptDimensions   = "dimensions"
)

// OverrideKeys lists the backend-specific override keys.
var OverrideKeys = []string{OptBaseURL, OptOrganization, OptDimensions}

// OpenAIProvider uses OpenAI's API to embed text.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
	maxTokens  int
	truncator  truncate.Truncator
	logger     *zap.Logger
}

// OpenAIConfig provides configuration options for OpenAI embedding provider
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string

	// Dimensions requests shortened embeddings when > 0.
	Dimensions int
	// MaxTokens caps each input; 0 uses the model's known limit.
	MaxTokens int
	// Truncator defaults to a cl100k_base TokenTruncator.
	Truncator truncate.Truncator
	Logger    *zap.Logger
}

// NewOpenAIProvider creates an embedding provider for OpenAI.
// It fails with a *types.ConfigError when no API key is configured.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, &types.ConfigError{
			Provider: "openai",
			Setting:  "API key (EMBEDSIM_OPENAI_API_KEY or OPENAI_API_KEY)",
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	// Retries are left to callers.
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	truncator := config.Truncator
	if truncator == nil {
		tt, err := truncate.New()
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		truncator = tt
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:     &client,
		model:      model,
		dimensions: config.Dimensions,
		maxTokens:  config.MaxTokens,
		truncator:  truncator,
		logger:     logger,
	}, nil
}

// GetMaxTokens returns the per-input token limit applied before a request.
func (p *OpenAIProvider) GetMaxTokens() int {
	if p.maxTokens > 0 {
		return p.maxTokens
	}
	if limit, ok := openAIModelLimits[p.model]; ok {
		return limit
	}
	return defaultMaxTokens
}

// Encode sends all texts to OpenAI in a single embeddings request.
func (p *OpenAIProvider) Encode(ctx context.Context, texts []string) (types.Matrix, error) {
	if len(texts) == 0 {
		return types.Matrix{}, nil
	}

	inputs, cut, err := truncate.All(p.truncator, texts, p.GetMaxTokens())
	if err != nil {
		return nil, p.fail(err)
	}
	if cut > 0 {
		p.logger.Debug("truncated inputs to token limit",
			zap.String("model", p.model),
			zap.Int("truncated", cut),
			zap.Int("max_tokens", p.GetMaxTokens()))
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
	}
	if p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, p.fail(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, p.fail(fmt.Errorf("requested %d embeddings, OpenAI returned %d", len(texts), len(resp.Data)))
	}

	// Place rows by response index; OpenAI does not promise ordering.
	out := make(types.Matrix, len(texts))
	for _, d := range resp.Data {
		i := int(d.Index)
		if i < 0 || i >= len(out) || out[i] != nil {
			return nil, p.fail(fmt.Errorf("invalid embedding index %d in response", d.Index))
		}
		// OpenAI returns []float64; convert to []float32
		row := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			row[j] = float32(v)
		}
		out[i] = row
	}
	return out, nil
}

func (p *OpenAIProvider) fail(err error) error {
	return &types.BackendError{ModelID: p.model, Op: "encode", Err: err}
}

func (p *OpenAIProvider) Close() error { return nil }
