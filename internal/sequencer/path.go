package sequencer

import (
	"context"
	"fmt"
	"sort"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// PathStep is one unresolved prerequisite on a learning path.
type PathStep struct {
	ConceptID       content.ConceptID
	Name            string
	Depth           int
	CurrentMastery  float64
	RequiredMastery float64
}

// LearningPath is the route to a target concept: its unresolved
// prerequisite chain (deepest first) and the atom sequence to traverse
// both. Built on demand and discarded after use.
type LearningPath struct {
	LearnerID       string
	TargetConceptID content.ConceptID
	TargetMastery   float64
	Prerequisites   []PathStep
	Atoms           []content.AtomID
}

// LearningPath resolves the full prerequisite chain for a target concept.
// Traversal is depth-bounded and cycle-safe (prereq.Graph guarantees).
// Atoms for unmet prerequisites come before atoms for the target, deepest
// prerequisite first; atoms already evidenced as mastered are dropped.
// targetMastery <= 0 falls back to cfg.TargetMastery.
func (s *Sequencer) LearningPath(ctx context.Context, learnerID string, targetConceptID content.ConceptID, targetMastery float64, masteredAtoms map[content.AtomID]bool) (*LearningPath, error) {
	if targetMastery <= 0 {
		targetMastery = s.cfg.TargetMastery
	}

	path := &LearningPath{
		LearnerID:       learnerID,
		TargetConceptID: targetConceptID,
		TargetMastery:   targetMastery,
	}

	ancestors := s.graph.Ancestors(targetConceptID, s.cfg.MaxTraversalDepth)
	required := s.requiredMastery(targetConceptID, ancestors)

	for _, anc := range ancestors {
		cm, err := s.calc.ComputeConceptMastery(ctx, learnerID, anc.ConceptID)
		if err != nil {
			return nil, err
		}
		need, ok := required[anc.ConceptID]
		if !ok {
			need = targetMastery
		}
		if cm.CombinedMastery >= need {
			continue
		}
		path.Prerequisites = append(path.Prerequisites, PathStep{
			ConceptID:       anc.ConceptID,
			Name:            anc.Name,
			Depth:           anc.Depth,
			CurrentMastery:  cm.CombinedMastery,
			RequiredMastery: need,
		})
	}

	// Deepest first: foundations are studied before what builds on them.
	sort.SliceStable(path.Prerequisites, func(i, j int) bool {
		return path.Prerequisites[i].Depth > path.Prerequisites[j].Depth
	})

	for _, step := range path.Prerequisites {
		if err := s.appendConceptAtoms(ctx, path, step.ConceptID, masteredAtoms); err != nil {
			return nil, err
		}
	}
	if err := s.appendConceptAtoms(ctx, path, targetConceptID, masteredAtoms); err != nil {
		return nil, err
	}

	return path, nil
}

func (s *Sequencer) appendConceptAtoms(ctx context.Context, path *LearningPath, conceptID content.ConceptID, mastered map[content.AtomID]bool) error {
	ids, err := s.catalog.ListByConcept(ctx, conceptID)
	if err != nil {
		return fmt.Errorf("list atoms for %s: %w", conceptID, err)
	}
	for _, id := range ids {
		if !mastered[id] {
			path.Atoms = append(path.Atoms, id)
		}
	}
	return nil
}

// requiredMastery collects each prerequisite's threshold: the maximum over
// every edge in the closure that targets it. Concepts no edge targets
// (only possible for the traversal root) are absent from the map.
func (s *Sequencer) requiredMastery(target content.ConceptID, ancestors []prereq.Ancestor) map[content.ConceptID]float64 {
	out := make(map[content.ConceptID]float64)
	scan := []content.ConceptID{target}
	for _, anc := range ancestors {
		scan = append(scan, anc.ConceptID)
	}
	for _, cid := range scan {
		for _, e := range s.graph.Edges(cid) {
			if e.Threshold > out[e.TargetConceptID] {
				out[e.TargetConceptID] = e.Threshold
			}
		}
	}
	return out
}
