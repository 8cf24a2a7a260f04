package embedsim

import (
	"context"
	"sync"

	"github.com/botirk38/embedsim/config"
	"github.com/botirk38/embedsim/logging"
	"github.com/botirk38/embedsim/options"
)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Default returns the process-wide Engine, building it on first use from
// config.Load("") so EMBEDSIM_* variables apply. A construction failure
// is returned on every call.
func Default() (*Engine, error) {
	defaultOnce.Do(func() {
		settings, err := config.Load("")
		if err != nil {
			defaultErr = err
			return
		}
		logger, err := logging.New(logging.Config{
			Level:  settings.Logging.Level,
			Format: settings.Logging.Format,
		})
		if err != nil {
			defaultErr = err
			return
		}
		defaultEngine, defaultErr = New(options.WithConfig(settings), options.WithLogger(logger))
	})
	return defaultEngine, defaultErr
}

// PairSim computes similarity between two texts with the default Engine.
func PairSim(ctx context.Context, a, b string, opts ...CallOption) (float64, error) {
	e, err := Default()
	if err != nil {
		return 0, err
	}
	return e.PairSim(ctx, a, b, opts...)
}

// GroupSim computes centroid coherence scores with the default Engine.
func GroupSim(ctx context.Context, texts []string, opts ...CallOption) ([]float64, error) {
	e, err := Default()
	if err != nil {
		return nil, err
	}
	return e.GroupSim(ctx, texts, opts...)
}
