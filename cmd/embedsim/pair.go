package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var pairCmd = &cobra.Command{
	Use:   "pair <text-a> <text-b>",
	Short: "Cosine similarity between two texts",
	Long:  "Embed both texts in one call and print their cosine similarity.",
	Args:  cobra.ExactArgs(2),
	RunE:  runPair,
}

func init() {
	rootCmd.AddCommand(pairCmd)
}

func runPair(cmd *cobra.Command, args []string) error {
	opts, err := callOptions()
	if err != nil {
		return err
	}

	score, err := globalEngine.PairSim(cmd.Context(), args[0], args[1], opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(map[string]any{
			"model": modelOrDefault(),
			"score": score,
		})
	}
	fmt.Fprintf(out, "%.4f\n", score)
	return nil
}

func modelOrDefault() string {
	if modelID != "" {
		return modelID
	}
	return globalEngine.DefaultModel()
}
