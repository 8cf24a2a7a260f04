package local

import (
	"fmt"
	"os"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokens is one tokenized input, special tokens included.
type Tokens struct {
	IDs     []int64
	TypeIDs []int64
}

// Tokenizer turns text into model input ids.
type Tokenizer interface {
	Encode(text string) (Tokens, error)
	PadID() int64
}

var padTokens = []string{"[PAD]", "<pad>"}

// HFTokenizer runs the pipeline described by a Hugging Face tokenizer.json,
// so each model normalizes and splits text exactly as it was trained to.
type HFTokenizer struct {
	mu    sync.Mutex
	tk    *tokenizer.Tokenizer
	padID int64
}

// LoadTokenizer reads a tokenizer.json file.
func LoadTokenizer(path string) (*HFTokenizer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}

	t := &HFTokenizer{tk: tk}
	for _, tok := range padTokens {
		if id, ok := tk.TokenToId(tok); ok {
			t.padID = int64(id)
			break
		}
	}
	return t, nil
}

// Encode tokenizes text with the model's special tokens. Padding configured
// in tokenizer.json is dropped; batches are padded by the provider.
func (t *HFTokenizer) Encode(text string) (Tokens, error) {
	t.mu.Lock()
	en, err := t.tk.EncodeSingle(text, true)
	t.mu.Unlock()
	if err != nil {
		return Tokens{}, err
	}

	n := len(en.Ids)
	if len(en.AttentionMask) == n {
		n = 0
		for _, m := range en.AttentionMask {
			if m != 0 {
				n++
			}
		}
	}

	out := Tokens{IDs: make([]int64, n), TypeIDs: make([]int64, n)}
	for i := 0; i < n; i++ {
		out.IDs[i] = int64(en.Ids[i])
		if i < len(en.TypeIds) {
			out.TypeIDs[i] = int64(en.TypeIds[i])
		}
	}
	return out, nil
}

// PadID returns the id of the padding token, or 0 when the vocabulary has none.
func (t *HFTokenizer) PadID() int64 { return t.padID }

// clip truncates toks to maxLen positions, keeping the closing special token.
func clip(toks Tokens, maxLen int) Tokens {
	n := len(toks.IDs)
	if n <= maxLen {
		return toks
	}
	out := Tokens{
		IDs:     make([]int64, maxLen),
		TypeIDs: make([]int64, maxLen),
	}
	copy(out.IDs, toks.IDs[:maxLen-1])
	out.IDs[maxLen-1] = toks.IDs[n-1]
	if len(toks.TypeIDs) == n {
		copy(out.TypeIDs, toks.TypeIDs[:maxLen-1])
		out.TypeIDs[maxLen-1] = toks.TypeIDs[n-1]
	}
	return out
}
