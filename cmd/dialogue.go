package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/socratic"
)

var dialogueCmd = &cobra.Command{
	Use:   "dialogue",
	Short: "Review past Socratic dialogues",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.Dialogues().ListDialogues(cmd.Context(), cfg.LearnerID)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No dialogues yet.")
			return nil
		}

		fmt.Println(headStyle.Render(fmt.Sprintf("%-36s %-20s %-14s %-14s %s",
			"ID", "Atom", "Resolution", "Scaffold", "Gaps")))
		for _, rec := range recs {
			style := dimStyle
			switch rec.Resolution {
			case socratic.ResolutionSelfSolved, socratic.ResolutionGuidedSolved:
				style = goodStyle
			case socratic.ResolutionRevealed:
				style = warnStyle
			}
			fmt.Printf("%-36s %-20s %-14s %-14s %d\n",
				rec.ID, rec.AtomID,
				style.Render(string(rec.Resolution)),
				rec.ScaffoldLevel, len(rec.DetectedGaps))
		}
		return nil
	},
}

var dialogueShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a dialogue transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.Dialogues().GetDialogue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("unknown dialogue %s", args[0])
		}

		fmt.Println(headStyle.Render(fmt.Sprintf("%s on %s, resolved %s at scaffold %s",
			rec.ID, rec.AtomID, rec.Resolution, rec.ScaffoldLevel)))
		for _, turn := range rec.Turns {
			speaker := "tutor"
			if turn.Role == socratic.RoleLearner {
				speaker = "you"
			}
			suffix := ""
			if turn.Signal != "" {
				suffix = dimStyle.Render(fmt.Sprintf("  [%s]", turn.Signal))
			}
			fmt.Printf("%s: %s%s\n", headStyle.Render(speaker), turn.Content, suffix)
		}
		if len(rec.DetectedGaps) > 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf("Detected gaps: %v", rec.DetectedGaps)))
		}
		return nil
	},
}

func init() {
	dialogueCmd.AddCommand(dialogueShowCmd)
}
