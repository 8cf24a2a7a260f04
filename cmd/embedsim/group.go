package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group <text>...",
	Short: "Score each text against the group centroid",
	Long: `Embed all texts in one call and print, for each text, the cosine
similarity between its embedding and the group's centroid. Low scores mark
outliers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGroup,
}

func init() {
	rootCmd.AddCommand(groupCmd)
}

type groupScore struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

func runGroup(cmd *cobra.Command, args []string) error {
	opts, err := callOptions()
	if err != nil {
		return err
	}

	scores, err := globalEngine.GroupSim(cmd.Context(), args, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		results := make([]groupScore, len(args))
		for i, text := range args {
			results[i] = groupScore{Text: text, Score: scores[i]}
		}
		return json.NewEncoder(out).Encode(map[string]any{
			"model":  modelOrDefault(),
			"scores": results,
		})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, text := range args {
		fmt.Fprintf(w, "%.4f\t%s\n", scores[i], text)
	}
	return w.Flush()
}
