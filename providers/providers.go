// Package providers builds embedding backends for the closed set of backend
// kinds and knows which override keys each kind accepts.
package providers

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/botirk38/embedsim/providers/gemini"
	"github.com/botirk38/embedsim/providers/local"
	"github.com/botirk38/embedsim/providers/openai"
	"github.com/botirk38/embedsim/types"
)

// Settings carries process-level configuration shared by every backend of
// a kind: credentials, endpoints and file locations.
type Settings struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	ModelDir      string
	OnnxRuntime   string
	Logger        *zap.Logger
}

// Factory constructs a backend of the given kind.
type Factory func(ctx context.Context, kind types.BackendKind, params types.BackendParams) (types.EmbeddingBackend, error)

// OverrideKeys returns the override keys accepted by kind, including the
// keys shared by all kinds.
func OverrideKeys(kind types.BackendKind) ([]string, error) {
	common := []string{types.OptModelName, types.OptMaxSeqLength}
	switch kind {
	case types.KindRemoteAPI:
		return append(common, openai.OverrideKeys...), nil
	case types.KindGeminiAPI:
		return append(common, gemini.OverrideKeys...), nil
	case types.KindLocalTransformer:
		return append(common, local.OverrideKeys...), nil
	default:
		return nil, fmt.Errorf("unsupported backend kind %q", kind)
	}
}

// intKeys holds the override keys whose values are positive integers.
var intKeys = map[string]bool{
	types.OptMaxSeqLength: true,
	openai.OptDimensions:  true,
}

// ParseOverride converts a textual override value, as typed on a command
// line, to the type key expects.
func ParseOverride(key, raw string) (any, error) {
	if !intKeys[key] {
		return raw, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, types.Invalidf("override %s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// ValidateOverride checks the type of a single override value.
func ValidateOverride(key string, value any) error {
	switch {
	case intKeys[key]:
		n, ok := types.AsInt(value)
		if !ok {
			return types.Invalidf("override %s must be an integer, got %T", key, value)
		}
		if n <= 0 {
			return types.Invalidf("override %s must be positive, got %d", key, n)
		}
	case key == local.OptPooling:
		s, ok := value.(string)
		if !ok || (s != local.PoolingMean && s != local.PoolingCLS) {
			return types.Invalidf("override %s must be %q or %q, got %v", key, local.PoolingMean, local.PoolingCLS, value)
		}
	default:
		if _, ok := value.(string); !ok {
			return types.Invalidf("override %s must be a string, got %T", key, value)
		}
	}
	return nil
}

// NewFactory returns a Factory that builds backends from settings.
func NewFactory(settings Settings) Factory {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, kind types.BackendKind, params types.BackendParams) (types.EmbeddingBackend, error) {
		switch kind {
		case types.KindRemoteAPI:
			return NewOpenAIProvider(openai.OpenAIConfig{
				APIKey:     settings.OpenAIAPIKey,
				BaseURL:    params.String(openai.OptBaseURL, settings.OpenAIBaseURL),
				OrgID:      params.String(openai.OptOrganization, ""),
				Model:      params.ModelName,
				Dimensions: params.Int(openai.OptDimensions, 0),
				MaxTokens:  params.MaxSeqLength,
				Logger:     logger,
			})
		case types.KindGeminiAPI:
			p, err := gemini.New(ctx, gemini.Config{
				APIKey:     settings.GeminiAPIKey,
				BaseURL:    params.String(gemini.OptBaseURL, ""),
				Model:      params.ModelName,
				TaskType:   params.String(gemini.OptTaskType, ""),
				Dimensions: params.Int(gemini.OptDimensions, 0),
				MaxTokens:  params.MaxSeqLength,
				Logger:     logger,
			})
			if err != nil {
				return nil, err
			}
			return p, nil
		case types.KindLocalTransformer:
			p, err := local.New(local.Config{
				ModelDir:     params.String(local.OptModelDir, settings.ModelDir),
				ModelName:    params.ModelName,
				MaxSeqLength: params.MaxSeqLength,
				Pooling:      params.String(local.OptPooling, local.PoolingMean),
				RuntimeLib:   settings.OnnxRuntime,
				Logger:       logger,
			})
			if err != nil {
				return nil, err
			}
			return p, nil
		default:
			return nil, fmt.Errorf("unsupported backend kind %q", kind)
		}
	}
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config openai.OpenAIConfig) (types.EmbeddingBackend, error) {
	p, err := openai.NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	return p, nil
}
