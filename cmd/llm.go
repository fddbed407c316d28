package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect model usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		usage, err := st.LLMRequests().Usage(cmd.Context(), model)
		if err != nil {
			return err
		}
		if usage.Requests == 0 {
			fmt.Println("No model requests recorded.")
			return nil
		}
		fmt.Printf("requests: %d (failed %d)\n", usage.Requests, usage.Failures)
		fmt.Printf("tokens:   %d in, %d out\n", usage.InputTokens, usage.OutputTokens)
		return nil
	},
}

func init() {
	llmCmd.Flags().String("model", "", "Filter by model id")
}
