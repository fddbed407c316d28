package sequencer

import "github.com/tutorkit/tutorkit/internal/content"

// applyPrerequisiteGating filters atoms by per-concept atom prerequisites:
// an atom for concept C passes only if every id in prereqs[C] is in the
// mastered set. Pure set membership; the traversal happened when the
// prereqs map was built. A concept absent from the map has no constraint,
// so authoring gaps never block atoms.
func applyPrerequisiteGating(atoms []*content.Atom, prereqs map[content.ConceptID][]content.AtomID, mastered map[content.AtomID]bool) []*content.Atom {
	if len(prereqs) == 0 {
		return atoms
	}
	out := atoms[:0:0]
	for _, a := range atoms {
		if gatingSatisfied(prereqs[a.ConceptID], mastered) {
			out = append(out, a)
		}
	}
	return out
}

func gatingSatisfied(required []content.AtomID, mastered map[content.AtomID]bool) bool {
	for _, id := range required {
		if !mastered[id] {
			return false
		}
	}
	return true
}
