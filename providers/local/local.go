// Package local implements an in-process transformer embedding backend.
//
// Models are read from <model_dir>/<model_name>/ which must hold the
// model's Hugging Face tokenizer.json and an ONNX export (model.onnx or
// onnx/model.onnx).
// Inference needs the onnx build tag and the ONNX Runtime shared library.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/botirk38/embedsim/types"
)

// Override keys recognized by the local backend.
const (
	OptModelDir = "model_dir"
	OptPooling  = "pooling"
)

// OverrideKeys lists the backend-specific override keys.
var OverrideKeys = []string{OptModelDir, OptPooling}

// Pooling strategies for [batch, seq, dims] model outputs.
const (
	PoolingMean = "mean"
	PoolingCLS  = "cls"
)

// Batch is a padded, row-major block of token ids ready for inference.
type Batch struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
	Size          int
	SeqLen        int
}

// Output is the raw float tensor produced by a model.
type Output struct {
	Data  []float32
	Shape []int64
}

// Session runs a loaded model on a batch.
type Session interface {
	Run(ctx context.Context, batch Batch) (Output, error)
	Close() error
}

// Config provides configuration options for the local provider.
type Config struct {
	ModelDir     string
	ModelName    string
	MaxSeqLength int
	Pooling      string
	// RuntimeLib is the path of the ONNX Runtime shared library.
	RuntimeLib string
	Logger     *zap.Logger

	// Session and Tokenizer skip loading from disk when set.
	Session   Session
	Tokenizer Tokenizer
}

// Provider embeds text with a transformer model loaded in-process.
type Provider struct {
	name      string
	maxSeqLen int
	pooling   string
	tokenizer Tokenizer
	session   Session
	logger    *zap.Logger

	closeOnce sync.Once
}

// New loads the tokenizer and model described by config.
func New(config Config) (*Provider, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxSeqLength < 2 {
		return nil, types.Invalidf("max_seq_length must be at least 2, got %d", config.MaxSeqLength)
	}

	pooling := config.Pooling
	if pooling == "" {
		pooling = PoolingMean
	}
	if pooling != PoolingMean && pooling != PoolingCLS {
		return nil, types.Invalidf("pooling must be %q or %q, got %q", PoolingMean, PoolingCLS, pooling)
	}

	dir := filepath.Join(config.ModelDir, filepath.FromSlash(config.ModelName))

	tok := config.Tokenizer
	if tok == nil {
		t, err := LoadTokenizer(filepath.Join(dir, "tokenizer.json"))
		if err != nil {
			return nil, loadErr(config.ModelName, err)
		}
		tok = t
	}

	session := config.Session
	if session == nil {
		modelPath, err := findModel(dir)
		if err != nil {
			return nil, loadErr(config.ModelName, err)
		}
		session, err = newSession(modelPath, config.RuntimeLib, logger)
		if err != nil {
			return nil, loadErr(config.ModelName, err)
		}
	}

	logger.Info("local embedding model loaded",
		zap.String("model", config.ModelName),
		zap.Int("max_seq_length", config.MaxSeqLength),
		zap.String("pooling", pooling))

	return &Provider{
		name:      config.ModelName,
		maxSeqLen: config.MaxSeqLength,
		pooling:   pooling,
		tokenizer: tok,
		session:   session,
		logger:    logger,
	}, nil
}

func loadErr(model string, err error) error {
	return &types.BackendError{ModelID: model, Op: "load", Err: err}
}

func findModel(dir string) (string, error) {
	for _, name := range []string{"model.onnx", filepath.Join("onnx", "model.onnx")} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no ONNX model found in %s", dir)
}

// Encode tokenizes texts, truncating each to the maximum sequence length,
// pads the batch to its longest sequence and runs one inference.
func (p *Provider) Encode(ctx context.Context, texts []string) (types.Matrix, error) {
	if len(texts) == 0 {
		return types.Matrix{}, nil
	}

	batch, err := p.tokenize(texts)
	if err != nil {
		return nil, p.fail(err)
	}
	out, err := p.session.Run(ctx, batch)
	if err != nil {
		return nil, p.fail(err)
	}

	m, err := pool(out, batch, p.pooling)
	if err != nil {
		return nil, p.fail(err)
	}
	return m, nil
}

func (p *Provider) tokenize(texts []string) (Batch, error) {
	seqs := make([]Tokens, len(texts))
	seqLen := 0
	for i, text := range texts {
		toks, err := p.tokenizer.Encode(text)
		if err != nil {
			return Batch{}, fmt.Errorf("tokenize text %d: %w", i, err)
		}
		seqs[i] = clip(toks, p.maxSeqLen)
		if len(seqs[i].IDs) > seqLen {
			seqLen = len(seqs[i].IDs)
		}
	}

	n := len(texts) * seqLen
	b := Batch{
		InputIDs:      make([]int64, n),
		AttentionMask: make([]int64, n),
		TokenTypeIDs:  make([]int64, n),
		Size:          len(texts),
		SeqLen:        seqLen,
	}
	for i, seq := range seqs {
		row := i * seqLen
		for j := 0; j < seqLen; j++ {
			if j < len(seq.IDs) {
				b.InputIDs[row+j] = seq.IDs[j]
				b.TokenTypeIDs[row+j] = seq.TypeIDs[j]
				b.AttentionMask[row+j] = 1
			} else {
				b.InputIDs[row+j] = p.tokenizer.PadID()
			}
		}
	}
	return b, nil
}

func (p *Provider) fail(err error) error {
	return &types.BackendError{ModelID: p.name, Op: "encode", Err: err}
}

// Close releases the inference session.
func (p *Provider) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.session.Close()
	})
	return err
}
