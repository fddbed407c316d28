package sequencer

import "github.com/tutorkit/tutorkit/internal/content"

// Outcome is one graded attempt, oldest first in any slice of outcomes.
type Outcome struct {
	AtomID   content.AtomID
	Correct  bool
	HintUsed bool
}

// MasteryDecision reports whether recent outcomes justify promoting the
// mastery level and unlocking dependents. True iff the last
// cfg.RequireConsecutive outcomes are all correct with no hint used, or
// accuracy over the last cfg.RollingWindow outcomes meets
// cfg.RollingAccuracy. The rolling gate needs a full window; a short
// history can only promote through the streak gate.
func MasteryDecision(outcomes []Outcome, cfg Config) bool {
	if streakMet(outcomes, cfg.RequireConsecutive) {
		return true
	}
	if cfg.RollingWindow > 0 && len(outcomes) >= cfg.RollingWindow {
		window := outcomes[len(outcomes)-cfg.RollingWindow:]
		correct := 0
		for _, o := range window {
			if o.Correct {
				correct++
			}
		}
		if float64(correct)/float64(len(window)) >= cfg.RollingAccuracy {
			return true
		}
	}
	return false
}

func streakMet(outcomes []Outcome, need int) bool {
	if need <= 0 || len(outcomes) < need {
		return false
	}
	for _, o := range outcomes[len(outcomes)-need:] {
		if !o.Correct || o.HintUsed {
			return false
		}
	}
	return true
}

// NeedsRemediation is the strict consecutive-failure rule: true iff the
// two most recent outcomes are both incorrect. Non-consecutive failures
// do not trigger.
func NeedsRemediation(outcomes []Outcome) bool {
	if len(outcomes) < 2 {
		return false
	}
	last := outcomes[len(outcomes)-1]
	prev := outcomes[len(outcomes)-2]
	return !last.Correct && !prev.Correct
}
