package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/botirk38/embedsim"
	"github.com/botirk38/embedsim/config"
	"github.com/botirk38/embedsim/logging"
	"github.com/botirk38/embedsim/options"
)

var (
	globalEngine *embedsim.Engine
	globalLogger *zap.Logger
)

// Flags
var (
	configPath   string
	modelID      string
	overrideArgs []string
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:   "embedsim",
	Short: "Semantic similarity scores from text embeddings",
	Long: `embedsim embeds texts with a local transformer or a remote embedding API
and reports cosine similarity between them.

Settings come from embedsim.yaml and EMBEDSIM_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := logging.New(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		globalLogger = logger

		opts := []options.Option{
			options.WithConfig(cfg),
			options.WithLogger(logger),
		}
		if modelID != "" {
			opts = append(opts, options.WithDefaultModel(modelID))
		}

		engine, err := embedsim.New(opts...)
		if err != nil {
			return err
		}
		globalEngine = engine
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&modelID, "model", "m", "", "Model ID (see 'embedsim models')")
	rootCmd.PersistentFlags().StringArrayVar(&overrideArgs, "set", nil, "Backend override as key=value, repeatable")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// shutdown closes the engine and flushes the logger. It runs after every
// command, including ones whose RunE failed.
func shutdown() {
	if globalEngine != nil {
		if err := globalEngine.Close(); err != nil {
			globalLogger.Warn("failed to close engine", zap.Error(err))
		}
		globalEngine = nil
	}
	if globalLogger != nil {
		_ = globalLogger.Sync()
		globalLogger = nil
	}
}

// callOptions turns --set flags into per-call options.
func callOptions() ([]embedsim.CallOption, error) {
	overrides, err := parseOverrides(overrideArgs)
	if err != nil {
		return nil, err
	}
	return []embedsim.CallOption{embedsim.WithOverrides(overrides)}, nil
}
