package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/remediation"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Scan for knowledge gaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		conceptFlag, _ := cmd.Flags().GetString("concept")
		cluster, _ := cmd.Flags().GetString("cluster")

		gaps, err := loop.Router().KnowledgeGaps(cmd.Context(), cfg.LearnerID, remediation.GapScope{
			ConceptID: content.ConceptID(conceptFlag),
			ClusterID: cluster,
		})
		if err != nil {
			return fmt.Errorf("scan gaps: %w", err)
		}
		if len(gaps) == 0 {
			fmt.Println(goodStyle.Render("No gaps found."))
			return nil
		}

		fmt.Println(headStyle.Render(fmt.Sprintf("%-28s %-8s %-12s %s", "Concept", "Priority", "Bar", "Gap")))
		for _, g := range gaps {
			style := dimStyle
			switch g.Priority {
			case remediation.PriorityHigh:
				style = badStyle
			case remediation.PriorityMedium:
				style = warnStyle
			}
			fmt.Printf("%-28s %s %s %.0f%% -> %.0f%%\n",
				g.Name,
				style.Render(fmt.Sprintf("%-8s", g.Priority)),
				masteryBar(g.CurrentMastery),
				g.CurrentMastery*100, g.RequiredMastery*100)
		}
		return nil
	},
}

func init() {
	gapsCmd.Flags().String("concept", "", "Scope the scan to one concept's prerequisites")
	gapsCmd.Flags().String("cluster", "", "Scope the scan to one cluster")
}
