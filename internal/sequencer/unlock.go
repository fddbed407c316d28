package sequencer

import (
	"context"
	"math"

	"github.com/tutorkit/tutorkit/internal/content"
)

// BlockingPrerequisite is one unmet hard-gated prerequisite.
type BlockingPrerequisite struct {
	ConceptID       content.ConceptID
	Name            string
	RequiredMastery float64
	CurrentMastery  float64
}

// UnlockStatus reports whether a concept is reachable and what blocks it.
type UnlockStatus struct {
	ConceptID content.ConceptID
	Unlocked  bool
	Blocking  []BlockingPrerequisite

	// EstimatedAtoms is a heuristic count of atoms to complete before
	// the concept unlocks, proportional to the total mastery gap.
	EstimatedAtoms int
}

// UnlockStatus evaluates only hard-gated direct prerequisites. Soft gates
// surface through the remediation router as recommendations instead.
func (s *Sequencer) UnlockStatus(ctx context.Context, learnerID string, conceptID content.ConceptID) (*UnlockStatus, error) {
	status := &UnlockStatus{ConceptID: conceptID, Unlocked: true}

	var totalGap float64
	for _, e := range s.graph.Edges(conceptID) {
		if e.Gating != content.GatingHard {
			continue
		}
		cm, err := s.calc.ComputeConceptMastery(ctx, learnerID, e.TargetConceptID)
		if err != nil {
			return nil, err
		}
		if cm.CombinedMastery >= e.Threshold {
			continue
		}
		status.Unlocked = false
		status.Blocking = append(status.Blocking, BlockingPrerequisite{
			ConceptID:       e.TargetConceptID,
			Name:            s.graph.Name(e.TargetConceptID),
			RequiredMastery: e.Threshold,
			CurrentMastery:  cm.CombinedMastery,
		})
		totalGap += e.Threshold - cm.CombinedMastery
	}

	if totalGap > 0 && s.cfg.MasteryPerAtom > 0 {
		status.EstimatedAtoms = int(math.Ceil(totalGap / s.cfg.MasteryPerAtom))
	}
	return status, nil
}
