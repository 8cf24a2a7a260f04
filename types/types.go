package types

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Matrix holds one embedding row per input text, in input order.
type Matrix [][]float32

// Dims returns the width of the first row, or 0 for an empty matrix.
func (m Matrix) Dims() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// EmbeddingBackend defines the interface all embedding backends must satisfy.
type EmbeddingBackend interface {
	// Encode turns texts into a matrix with exactly len(texts) rows, where
	// row i is the embedding of texts[i].
	Encode(ctx context.Context, texts []string) (Matrix, error)
	// Close frees any resources held by the backend.
	Close() error
}

// BackendKind represents the type of embedding backend.
type BackendKind string

const (
	// KindLocalTransformer runs a pretrained transformer in-process.
	KindLocalTransformer BackendKind = "local"
	// KindRemoteAPI calls the OpenAI embeddings endpoint.
	KindRemoteAPI BackendKind = "remote"
	// KindGeminiAPI calls the Gemini embeddings endpoint.
	KindGeminiAPI BackendKind = "gemini"
)

// Override keys shared by every backend kind. They replace the matching
// ModelDescriptor fields.
const (
	OptModelName    = "model_name"
	OptMaxSeqLength = "max_seq_length"
)

// Overrides maps override keys to values for a single backend.
type Overrides map[string]any

// Clone returns a shallow copy of o. A nil receiver yields an empty map.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Canonical renders o as sorted key="value" pairs joined by commas. Values
// are quoted, and so are keys holding a separator, so two maps render
// identically only when they hold the same pairs.
func (o Overrides) Canonical() string {
	if len(o) == 0 {
		return ""
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(k, `,="`) {
			k = strconv.Quote(k)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(fmt.Sprint(o[k])))
	}
	return b.String()
}

// ModelDescriptor is the static construction recipe for a model identifier.
type ModelDescriptor struct {
	ID           string
	Kind         BackendKind
	ModelName    string
	MaxSeqLength int
	// Defaults are kind-specific settings that overrides may replace.
	Defaults Overrides
}

// BackendParams carries the merged descriptor and overrides handed to a
// backend constructor.
type BackendParams struct {
	ModelID      string
	ModelName    string
	MaxSeqLength int
	// Options holds the kind-specific settings left after the descriptor
	// fields were applied.
	Options Overrides
}

// String returns the option value for key, or def when unset.
func (p BackendParams) String(key, def string) string {
	if v, ok := p.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the option value for key, or def when unset.
func (p BackendParams) Int(key string, def int) int {
	if v, ok := p.Options[key]; ok {
		if n, ok := AsInt(v); ok {
			return n
		}
	}
	return def
}

// AsInt converts the numeric kinds that config files and JSON decoding
// produce into an int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
