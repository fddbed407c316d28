package prereq

import (
	"sort"

	"github.com/tutorkit/tutorkit/internal/content"
)

// DefaultMaxDepth bounds prerequisite traversal. Authored graphs deeper
// than this are treated as if they ended at the bound.
const DefaultMaxDepth = 10

// Ancestors walks prerequisite edges breadth-first up to maxDepth.
// A visited set keyed by the minimum depth seen makes the walk tolerate
// cycles and diamonds: a concept reachable along several paths is reported
// once, at its shallowest depth. maxDepth <= 0 falls back to DefaultMaxDepth.
func (g *MemoryGraph) Ancestors(conceptID content.ConceptID, maxDepth int) []Ancestor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	type frame struct {
		id    content.ConceptID
		depth int
	}

	minDepth := make(map[content.ConceptID]int)
	queue := []frame{{id: conceptID, depth: 0}}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		if f.depth >= maxDepth {
			continue
		}
		for _, e := range g.edges[f.id] {
			d := f.depth + 1
			if seen, ok := minDepth[e.TargetConceptID]; ok && seen <= d {
				continue
			}
			minDepth[e.TargetConceptID] = d
			queue = append(queue, frame{id: e.TargetConceptID, depth: d})
		}
	}

	// The root is never its own ancestor, even through a cycle.
	delete(minDepth, conceptID)

	out := make([]Ancestor, 0, len(minDepth))
	for id, d := range minDepth {
		out = append(out, Ancestor{ConceptID: id, Name: g.Name(id), Depth: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].ConceptID < out[j].ConceptID
	})
	return out
}
