package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/mastery"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Show per-concept mastery",
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		calc := loop.Calculator()

		ids, err := st.Signals().ConceptsWithSignals(ctx, cfg.LearnerID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No history yet. Run: tutorkit study")
			return nil
		}

		fmt.Println(headStyle.Render(fmt.Sprintf("%-28s %-12s %-10s %s", "Concept", "Bar", "Level", "Detail")))
		for _, id := range ids {
			cm, err := calc.ComputeConceptMastery(ctx, cfg.LearnerID, id)
			if err != nil {
				return err
			}
			lock := ""
			if !cm.IsUnlocked {
				lock = dimStyle.Render(" [locked]")
			}
			fmt.Printf("%-28s %s %-10s rev %.0f%% quiz %.0f%%%s\n",
				loop.Graph().Name(id),
				masteryBar(cm.CombinedMastery),
				cm.Level,
				cm.ReviewMastery*100, cm.QuizMastery*100, lock)
		}

		sum, err := calc.MasterySummary(ctx, cfg.LearnerID)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Printf("%d concepts, average %.0f%%. mastered %d, proficient %d, developing %d, novice %d\n",
			sum.Total, sum.AverageMastery*100,
			sum.ByLevel[mastery.LevelMastered], sum.ByLevel[mastery.LevelProficient],
			sum.ByLevel[mastery.LevelDeveloping], sum.ByLevel[mastery.LevelNovice])
		return nil
	},
}
