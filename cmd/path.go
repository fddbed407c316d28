package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/content"
)

var pathCmd = &cobra.Command{
	Use:   "path <concept-id>",
	Short: "Show the learning path to a target concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		target := content.ConceptID(args[0])
		targetMastery, _ := cmd.Flags().GetFloat64("target")
		if targetMastery == 0 {
			targetMastery = cfg.Sequencer.TargetMastery
		}

		mastered, err := st.Attempts().MasteredAtoms(ctx, cfg.LearnerID)
		if err != nil {
			return err
		}
		path, err := loop.Sequencer().LearningPath(ctx, cfg.LearnerID, target, targetMastery, mastered)
		if err != nil {
			return fmt.Errorf("build learning path: %w", err)
		}

		status, err := loop.Sequencer().UnlockStatus(ctx, cfg.LearnerID, target)
		if err != nil {
			return err
		}

		fmt.Println(headStyle.Render(fmt.Sprintf("Path to %s (target %.0f%%)",
			loop.Graph().Name(target), targetMastery*100)))
		if len(path.Prerequisites) == 0 {
			fmt.Println(dimStyle.Render("No unresolved prerequisites."))
		}
		for _, step := range path.Prerequisites {
			fmt.Printf("  %s %-28s %s %.0f%% -> %.0f%%\n",
				dimStyle.Render(fmt.Sprintf("d%d", step.Depth)),
				step.Name,
				masteryBar(step.CurrentMastery),
				step.CurrentMastery*100, step.RequiredMastery*100)
		}

		fmt.Printf("%d atoms queued.\n", len(path.Atoms))
		if !status.Unlocked {
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"Locked: about %d atoms of prerequisite work remain.", status.EstimatedAtoms)))
			for _, b := range status.Blocking {
				fmt.Printf("  %s needs %.0f%%, at %.0f%%\n", b.Name, b.RequiredMastery*100, b.CurrentMastery*100)
			}
		}
		return nil
	},
}

func init() {
	pathCmd.Flags().Float64("target", 0, "Target mastery (default from config)")
}
