package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/remediation"
)

var remediateCmd = &cobra.Command{
	Use:   "remediate",
	Short: "List and resolve remediation events",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.Remediation().ListByLearner(cmd.Context(), cfg.LearnerID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No remediation events.")
			return nil
		}

		fmt.Println(headStyle.Render(fmt.Sprintf("%-36s %-20s %-10s %-16s %s",
			"ID", "Gap", "Status", "Trigger", "Mastery")))
		for _, ev := range events {
			status := dimStyle.Render(string(ev.Status))
			switch ev.Status {
			case remediation.StatusTriggered:
				status = warnStyle.Render(string(ev.Status))
			case remediation.StatusCompleted:
				if ev.Successful {
					status = goodStyle.Render(string(ev.Status))
				}
			}
			fmt.Printf("%-36s %-20s %-10s %-16s %.0f%% -> %.0f%%\n",
				ev.ID, ev.GapConceptID, status, ev.Trigger,
				ev.MasteryAtTrigger*100, ev.RequiredMastery*100)
		}
		return nil
	},
}

var remediateCompleteCmd = &cobra.Command{
	Use:   "complete <event-id> <atoms-completed> <atoms-correct>",
	Short: "Mark a remediation event completed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, _, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		completed, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("atoms-completed: %w", err)
		}
		correct, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("atoms-correct: %w", err)
		}

		ev, err := loop.Router().Complete(cmd.Context(), args[0], completed, correct)
		if err != nil {
			return err
		}
		if ev.Successful {
			fmt.Println(goodStyle.Render(fmt.Sprintf(
				"Gap closed: %s improved %.0f points.", ev.GapConceptID, ev.MasteryImprovement*100)))
		} else {
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"Recorded, but %s is still below target (%.0f%% of %.0f%%).",
				ev.GapConceptID, ev.PostRemediationMastery*100, ev.RequiredMastery*100)))
		}
		return nil
	},
}

var remediateSkipCmd = &cobra.Command{
	Use:   "skip <event-id> [reason]",
	Short: "Skip a remediation event",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, _, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		reason := "skipped by learner"
		if len(args) > 1 {
			reason = args[1]
		}
		ev, err := loop.Router().Skip(cmd.Context(), args[0], reason)
		if err != nil {
			return err
		}
		fmt.Printf("Skipped %s (%s).\n", ev.ID, ev.SkipReason)
		return nil
	},
}

func init() {
	remediateCmd.AddCommand(remediateCompleteCmd)
	remediateCmd.AddCommand(remediateSkipCmd)
}
