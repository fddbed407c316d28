package cmd

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/session"
	"github.com/tutorkit/tutorkit/internal/socratic"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Run an adaptive study session",
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		conceptFlag, _ := cmd.Flags().GetString("concept")
		cluster, _ := cmd.Flags().GetString("cluster")
		count, _ := cmd.Flags().GetInt("count")

		ctx := cmd.Context()
		atoms, err := loop.NextAtoms(ctx, cfg.LearnerID, session.NextOptions{
			ConceptID:     content.ConceptID(conceptFlag),
			ClusterID:     cluster,
			Count:         count,
			IncludeReview: true,
		})
		if err != nil {
			return fmt.Errorf("sequence atoms: %w", err)
		}
		if len(atoms) == 0 {
			fmt.Println("Nothing to study right now.")
			return nil
		}

		in := bufio.NewReader(os.Stdin)
		for _, id := range atoms {
			atom, err := st.Catalog().Get(ctx, id)
			if err != nil {
				return err
			}
			if atom == nil {
				continue
			}
			if err := presentAtom(cmd, loop, cfg.LearnerID, atom, in); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	studyCmd.Flags().String("concept", "", "Limit the session to one concept")
	studyCmd.Flags().String("cluster", "", "Limit the session to one cluster")
	studyCmd.Flags().Int("count", 6, "Atoms per session")
}

func presentAtom(cmd *cobra.Command, loop *session.Loop, learnerID string, atom *content.Atom, in *bufio.Reader) error {
	ctx := cmd.Context()

	fmt.Println()
	fmt.Println(headStyle.Render(atom.Prompt))
	perm := orderingPerm(atom)
	printChoices(atom, perm)
	fmt.Println(dimStyle.Render("(answer, or ? when you don't know)"))

	start := time.Now()
	fmt.Print("> ")
	line, err := in.ReadString('\n')
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	latency := time.Since(start).Milliseconds()

	if line == "?" {
		return runDialogue(cmd, loop, learnerID, atom, in)
	}

	correct, graded := gradeAnswer(atom, perm, line)
	if !graded {
		// Self-graded card: reveal and ask.
		fmt.Println(dimStyle.Render(revealBack(atom)))
		fmt.Print("Did you know it? [y/n] ")
		resp, err := in.ReadString('\n')
		if err != nil {
			return err
		}
		correct = strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp)), "y")
	}

	res, err := loop.Submit(ctx, learnerID, session.Answer{
		AtomID:    atom.ID,
		Correct:   correct,
		LatencyMs: latency,
	})
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}

	if correct {
		fmt.Println(goodStyle.Render("Correct."))
	} else {
		fmt.Println(badStyle.Render("Not quite. " + revealBack(atom)))
	}
	if res.AtomMastered {
		fmt.Println(goodStyle.Render("Atom mastered."))
	}
	if res.Plan != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"Gap detected in %s (%s priority). Try: tutorkit remediate",
			res.Plan.GapName, res.Plan.Priority)))
	}
	return nil
}

// runDialogue hands the atom to the Socratic engine instead of scoring it.
func runDialogue(cmd *cobra.Command, loop *session.Loop, learnerID string, atom *content.Atom, in *bufio.Reader) error {
	ctx := cmd.Context()
	s, opening, err := loop.Abstain(ctx, learnerID, atom.ID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(headStyle.Render("tutor: ") + opening)

	for !s.Resolved() {
		start := time.Now()
		fmt.Print("you: ")
		line, readErr := in.ReadString('\n')
		if readErr != nil {
			// Learner interrupt: keep the partial transcript.
			s.Interrupt()
			break
		}
		line = strings.TrimSpace(line)

		prompt, done, err := s.Advance(ctx, socratic.Input{
			Text:      line,
			LatencyMs: time.Since(start).Milliseconds(),
			Abstain:   line == "?",
		})
		if err != nil {
			s.Interrupt()
			break
		}
		fmt.Println(headStyle.Render("tutor: ") + prompt)
		if done {
			break
		}
	}

	events, err := loop.CloseDialogue(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	for _, ev := range events {
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"Noted a gap in %s. Try: tutorkit remediate", ev.GapConceptID)))
	}
	return nil
}

// orderingPerm shuffles the display order for ordering atoms; perm[i] is
// the authored index shown at position i. Nil for every other type.
func orderingPerm(atom *content.Atom) []int {
	p, ok := atom.Payload.(content.OrderingPayload)
	if !ok {
		return nil
	}
	perm := rand.Perm(len(p.Steps))
	return perm
}

func printChoices(atom *content.Atom, perm []int) {
	switch p := atom.Payload.(type) {
	case content.MultipleChoicePayload:
		for i, opt := range p.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
	case content.OrderingPayload:
		fmt.Println(dimStyle.Render("Order the steps, comma-separated numbers:"))
		for i, j := range perm {
			fmt.Printf("  %d) %s\n", i+1, p.Steps[j])
		}
	case content.ClozePayload:
		fmt.Println("  " + p.Text)
	}
}

// gradeAnswer machine-grades where the payload allows it. The second
// return is false for self-graded types (recall cards, matching).
func gradeAnswer(atom *content.Atom, perm []int, input string) (correct, graded bool) {
	input = strings.TrimSpace(strings.ToLower(input))
	switch p := atom.Payload.(type) {
	case content.NumericPayload:
		v, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return false, true
		}
		return math.Abs(v-p.Answer) <= p.Tolerance, true
	case content.TrueFalsePayload:
		want := "false"
		if p.Answer {
			want = "true"
		}
		return input == want || input == want[:1], true
	case content.MultipleChoicePayload:
		n, err := strconv.Atoi(input)
		if err != nil {
			return false, true
		}
		return n-1 == p.CorrectIndex, true
	case content.ClozePayload:
		for _, ans := range p.Answers {
			if input == strings.ToLower(ans) {
				return true, true
			}
		}
		return false, true
	case content.OrderingPayload:
		parts := strings.Split(input, ",")
		if len(parts) != len(p.Steps) {
			return false, true
		}
		for i, part := range parts {
			// The i-th answer must be the displayed number of authored step i.
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 || n > len(perm) || perm[n-1] != i {
				return false, true
			}
		}
		return true, true
	}
	return false, false
}

func revealBack(atom *content.Atom) string {
	switch p := atom.Payload.(type) {
	case content.RecallCardPayload:
		return p.Back
	case content.NumericPayload:
		return fmt.Sprintf("Answer: %g", p.Answer)
	case content.TrueFalsePayload:
		if p.Answer {
			return "Answer: true"
		}
		return "Answer: false"
	case content.MultipleChoicePayload:
		if p.CorrectIndex >= 0 && p.CorrectIndex < len(p.Options) {
			return "Answer: " + p.Options[p.CorrectIndex]
		}
	case content.ClozePayload:
		return "Answer: " + strings.Join(p.Answers, ", ")
	}
	return ""
}
