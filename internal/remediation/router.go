// Package remediation detects knowledge gaps and manages the remediation
// lifecycle: plan, trigger, complete or skip.
package remediation

import (
	"context"
	"fmt"
	"sort"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/mastery"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// Router decides whether a learner needs remediation and builds plans.
type Router struct {
	calc    *mastery.Calculator
	graph   *prereq.MemoryGraph
	catalog content.AtomCatalog
	events  EventRepo // nil degrades the lifecycle to in-memory events
	cfg     Config
}

// NewRouter creates a remediation router.
func NewRouter(calc *mastery.Calculator, graph *prereq.MemoryGraph, catalog content.AtomCatalog, events EventRepo, cfg Config) *Router {
	return &Router{calc: calc, graph: graph, catalog: catalog, events: events, cfg: cfg}
}

// CheckRemediationNeeded inspects one answer. It returns nil when the
// answer was correct and confidence is unknown or confident, when the
// atom's concept cannot be resolved (fail open), or when no prerequisite
// has a positive mastery gap. Otherwise it returns a plan for the single
// prerequisite with the largest gap.
func (r *Router) CheckRemediationNeeded(ctx context.Context, learnerID string, atomID content.AtomID, isCorrect bool, confidence *float64) (*Plan, error) {
	if isCorrect && (confidence == nil || *confidence >= r.cfg.ConfidentThreshold) {
		return nil, nil
	}

	atom, err := r.catalog.Get(ctx, atomID)
	if err != nil {
		return nil, fmt.Errorf("resolve atom %s: %w", atomID, err)
	}
	if atom == nil {
		return nil, nil
	}

	trigger := TriggerIncorrectAnswer
	if isCorrect {
		trigger = TriggerLowConfidence
	}

	var best *Plan
	var bestGap float64
	for _, e := range r.graph.Edges(atom.ConceptID) {
		cm, err := r.calc.ComputeConceptMastery(ctx, learnerID, e.TargetConceptID)
		if err != nil {
			return nil, err
		}
		gap := e.Threshold - cm.CombinedMastery
		if gap <= 0 || gap <= bestGap {
			continue
		}
		bestGap = gap
		best = &Plan{
			GapConceptID:  e.TargetConceptID,
			GapName:       r.graph.Name(e.TargetConceptID),
			Priority:      r.cfg.priorityForGap(gap),
			Gating:        e.Gating,
			MasteryTarget: e.Threshold,
			Trigger:       trigger,
			TriggerAtomID: atomID,
		}
	}
	if best == nil {
		return nil, nil
	}

	best.AtomIDs, err = r.candidateAtoms(ctx, best.GapConceptID)
	if err != nil {
		return nil, err
	}
	return best, nil
}

// GapScope narrows KnowledgeGaps to one concept's prerequisite set or to
// a topical cluster. Zero value means exhaustive.
type GapScope struct {
	ConceptID content.ConceptID
	ClusterID string
}

// KnowledgeGaps finds concepts below required mastery. Concept-scoped
// calls inspect that concept's prerequisite edges; otherwise every concept
// (optionally cluster-filtered) below the proficiency floor is a gap.
// Sorted by priority, high first, largest gap first within a band.
func (r *Router) KnowledgeGaps(ctx context.Context, learnerID string, scope GapScope) ([]KnowledgeGap, error) {
	var gaps []KnowledgeGap

	if scope.ConceptID != "" {
		for _, e := range r.graph.Edges(scope.ConceptID) {
			cm, err := r.calc.ComputeConceptMastery(ctx, learnerID, e.TargetConceptID)
			if err != nil {
				return nil, err
			}
			if gap := e.Threshold - cm.CombinedMastery; gap > 0 {
				gaps = append(gaps, KnowledgeGap{
					ConceptID:       e.TargetConceptID,
					Name:            r.graph.Name(e.TargetConceptID),
					CurrentMastery:  cm.CombinedMastery,
					RequiredMastery: e.Threshold,
					Gap:             gap,
					Priority:        r.cfg.priorityForGap(gap),
					Gating:          e.Gating,
				})
			}
		}
	} else {
		for _, c := range r.graph.Concepts() {
			if scope.ClusterID != "" && c.ClusterID != scope.ClusterID {
				continue
			}
			cm, err := r.calc.ComputeConceptMastery(ctx, learnerID, c.ID)
			if err != nil {
				return nil, err
			}
			if cm.ReviewCount == 0 && cm.QuizCount == 0 {
				continue // untouched, not a gap
			}
			gap := r.cfg.ProficiencyFloor - cm.CombinedMastery
			if gap <= 0 {
				continue
			}
			gaps = append(gaps, KnowledgeGap{
				ConceptID:       c.ID,
				Name:            r.graph.Name(c.ID),
				CurrentMastery:  cm.CombinedMastery,
				RequiredMastery: r.cfg.ProficiencyFloor,
				Gap:             gap,
				Priority:        r.cfg.priorityForGap(gap),
				Gating:          content.GatingSoft,
			})
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Priority != gaps[j].Priority {
			return gaps[i].Priority.Rank() < gaps[j].Priority.Rank()
		}
		return gaps[i].Gap > gaps[j].Gap
	})
	return gaps, nil
}

// RemediationBundle implements the sequencer's bundle source: the
// candidate atoms for the strongest-gap prerequisite of the failed atom's
// concept. Empty when nothing needs remediation.
func (r *Router) RemediationBundle(ctx context.Context, learnerID string, atomID content.AtomID, max int) ([]content.AtomID, error) {
	plan, err := r.CheckRemediationNeeded(ctx, learnerID, atomID, false, nil)
	if err != nil || plan == nil {
		return nil, err
	}
	if max > 0 && len(plan.AtomIDs) > max {
		return plan.AtomIDs[:max], nil
	}
	return plan.AtomIDs, nil
}

// candidateAtoms orders a gap concept's atoms for remediation:
// declarative (foundational) knowledge first, then quality descending.
func (r *Router) candidateAtoms(ctx context.Context, conceptID content.ConceptID) ([]content.AtomID, error) {
	ids, err := r.catalog.ListByConcept(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("list atoms for %s: %w", conceptID, err)
	}

	var atoms []*content.Atom
	for _, id := range ids {
		a, err := r.catalog.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			atoms = append(atoms, a)
		}
	}

	sort.SliceStable(atoms, func(i, j int) bool {
		di := atoms[i].KnowledgeType == content.KnowledgeDeclarative
		dj := atoms[j].KnowledgeType == content.KnowledgeDeclarative
		if di != dj {
			return di
		}
		return atoms[i].QualityScore > atoms[j].QualityScore
	})

	n := len(atoms)
	if r.cfg.MaxBundleAtoms > 0 && n > r.cfg.MaxBundleAtoms {
		n = r.cfg.MaxBundleAtoms
	}
	out := make([]content.AtomID, n)
	for i := 0; i < n; i++ {
		out[i] = atoms[i].ID
	}
	return out, nil
}
