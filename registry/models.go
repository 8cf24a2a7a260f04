package registry

import (
	"github.com/botirk38/embedsim/providers/local"
	"github.com/botirk38/embedsim/types"
)

// DefaultModelID is used when neither the caller nor the configuration
// names a model.
const DefaultModelID = "openai/text-embedding-3-small"

// builtinModels is the static model table. Adding a model is an edit here.
var builtinModels = []types.ModelDescriptor{
	{
		ID:           "sentence-transformers/all-MiniLM-L6-v2",
		Kind:         types.KindLocalTransformer,
		ModelName:    "sentence-transformers/all-MiniLM-L6-v2",
		MaxSeqLength: 256,
		Defaults:     types.Overrides{local.OptPooling: local.PoolingMean},
	},
	{
		ID:           "jinaai/jina-embeddings-v2-base-en",
		Kind:         types.KindLocalTransformer,
		ModelName:    "jinaai/jina-embeddings-v2-base-en",
		MaxSeqLength: 8192,
		Defaults:     types.Overrides{local.OptPooling: local.PoolingMean},
	},
	{
		ID:           "BAAI/bge-large-en-v1.5",
		Kind:         types.KindLocalTransformer,
		ModelName:    "BAAI/bge-large-en-v1.5",
		MaxSeqLength: 1024,
		Defaults:     types.Overrides{local.OptPooling: local.PoolingCLS},
	},
	{
		ID:           "intfloat/e5-large-v2",
		Kind:         types.KindLocalTransformer,
		ModelName:    "intfloat/e5-large-v2",
		MaxSeqLength: 1024,
		Defaults:     types.Overrides{local.OptPooling: local.PoolingMean},
	},
	{
		ID:           "openai/text-embedding-3-small",
		Kind:         types.KindRemoteAPI,
		ModelName:    "text-embedding-3-small",
		MaxSeqLength: 8191,
	},
	{
		ID:           "openai/text-embedding-3-large",
		Kind:         types.KindRemoteAPI,
		ModelName:    "text-embedding-3-large",
		MaxSeqLength: 8191,
	},
	{
		ID:           "google/text-embedding-004",
		Kind:         types.KindGeminiAPI,
		ModelName:    "text-embedding-004",
		MaxSeqLength: 2048,
	},
}

// BuiltinModels returns a copy of the built-in model table.
func BuiltinModels() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, len(builtinModels))
	for i, d := range builtinModels {
		d.Defaults = d.Defaults.Clone()
		out[i] = d
	}
	return out
}
