package remediation

import (
	"context"

	"github.com/tutorkit/tutorkit/internal/content"
)

// DialogueGapPlans converts gaps detected during a Socratic dialogue into
// remediation plans. The mastery target for a gap is the prerequisite
// edge threshold from the dialogue's concept when such an edge exists,
// otherwise the proficiency floor. Gaps already at target are dropped.
func (r *Router) DialogueGapPlans(ctx context.Context, learnerID string, sourceConceptID content.ConceptID, gapIDs []content.ConceptID) ([]*Plan, error) {
	thresholds := make(map[content.ConceptID]float64)
	gatings := make(map[content.ConceptID]content.GatingType)
	for _, e := range r.graph.Edges(sourceConceptID) {
		thresholds[e.TargetConceptID] = e.Threshold
		gatings[e.TargetConceptID] = e.Gating
	}

	var plans []*Plan
	for _, id := range gapIDs {
		target, ok := thresholds[id]
		if !ok {
			target = r.cfg.ProficiencyFloor
		}
		gating := gatings[id]
		if gating == "" {
			gating = content.GatingSoft
		}

		cm, err := r.calc.ComputeConceptMastery(ctx, learnerID, id)
		if err != nil {
			return nil, err
		}
		gap := target - cm.CombinedMastery
		if gap <= 0 {
			continue
		}

		atoms, err := r.candidateAtoms(ctx, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, &Plan{
			GapConceptID:  id,
			GapName:       r.graph.Name(id),
			AtomIDs:       atoms,
			Priority:      r.cfg.priorityForGap(gap),
			Gating:        gating,
			MasteryTarget: target,
			Trigger:       TriggerDialogueGap,
		})
	}
	return plans, nil
}
