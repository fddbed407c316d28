package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/store"
)

// learner state tables, content tables excluded.
var learnerTables = []string{
	"attempts",
	"atom_progress",
	"review_state",
	"concept_signals",
	"remediation_events",
	"socratic_turns",
	"socratic_sessions",
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete learner history, keeping imported content",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete history without --yes")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		for _, table := range learnerTables {
			if table == "socratic_turns" {
				_, err = st.DB().ExecContext(cmd.Context(), `
					DELETE FROM socratic_turns WHERE session_id IN
						(SELECT id FROM socratic_sessions WHERE learner_id = ?)`, cfg.LearnerID)
			} else {
				_, err = st.DB().ExecContext(cmd.Context(),
					fmt.Sprintf("DELETE FROM %s WHERE learner_id = ?", table), cfg.LearnerID)
			}
			if err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		fmt.Printf("History for learner %s deleted.\n", cfg.LearnerID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
