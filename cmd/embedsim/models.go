package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available model IDs",
	Long:  "List every registered model ID with its backend kind. The default model is marked with *.",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	models := globalEngine.Models()
	def := globalEngine.DefaultModel()
	out := cmd.OutOrStdout()

	if jsonOutput {
		type entry struct {
			ID           string `json:"id"`
			Kind         string `json:"kind"`
			ModelName    string `json:"model_name"`
			MaxSeqLength int    `json:"max_seq_length"`
			Default      bool   `json:"default"`
		}
		entries := make([]entry, len(models))
		for i, m := range models {
			entries[i] = entry{
				ID:           m.ID,
				Kind:         string(m.Kind),
				ModelName:    m.ModelName,
				MaxSeqLength: m.MaxSeqLength,
				Default:      m.ID == def,
			}
		}
		return json.NewEncoder(out).Encode(entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tKIND\tMODEL NAME\tMAX SEQ")
	for _, m := range models {
		mark := ""
		if m.ID == def {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", mark, m.ID, m.Kind, m.ModelName, m.MaxSeqLength)
	}
	return w.Flush()
}
