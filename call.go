package embedsim

import "github.com/botirk38/embedsim/types"

// CallOption adjusts a single PairSim or GroupSim call.
type CallOption func(*callConfig)

type callConfig struct {
	model     string
	overrides types.Overrides
}

// WithModel selects the model by registry ID.
func WithModel(modelID string) CallOption {
	return func(c *callConfig) {
		if modelID != "" {
			c.model = modelID
		}
	}
}

// WithOverride sets one backend override, e.g. "max_seq_length" or "dimensions".
func WithOverride(key string, value any) CallOption {
	return func(c *callConfig) {
		if c.overrides == nil {
			c.overrides = types.Overrides{}
		}
		c.overrides[key] = value
	}
}

// WithOverrides merges overrides into the call. Later options win.
func WithOverrides(overrides map[string]any) CallOption {
	return func(c *callConfig) {
		if len(overrides) == 0 {
			return
		}
		if c.overrides == nil {
			c.overrides = make(types.Overrides, len(overrides))
		}
		for k, v := range overrides {
			c.overrides[k] = v
		}
	}
}

func (e *Engine) callConfig(opts []CallOption) callConfig {
	c := callConfig{model: e.defaultModel}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
