// Package prereq provides the prerequisite graph accessor used by the
// sequencer, the mastery calculator and the remediation router.
package prereq

import (
	"sort"

	"github.com/tutorkit/tutorkit/internal/content"
)

// Edge is one prerequisite relation as seen from the dependent concept.
type Edge struct {
	TargetConceptID content.ConceptID // the prerequisite
	Threshold       float64
	Gating          content.GatingType
	MasteryType     content.MasteryType
}

// Ancestor is a concept reached by walking prerequisite edges upward.
// Depth is the minimum edge distance at which the concept was seen.
type Ancestor struct {
	ConceptID content.ConceptID
	Name      string
	Depth     int
}

// Graph is the adjacency accessor the engine traverses. Implementations
// must tolerate unknown concept ids by returning empty results.
type Graph interface {
	// Edges returns the direct prerequisites of a concept.
	Edges(conceptID content.ConceptID) []Edge

	// Ancestors returns the full prerequisite closure up to maxDepth,
	// deduplicated by minimum depth, in deterministic order.
	Ancestors(conceptID content.ConceptID, maxDepth int) []Ancestor
}

// MemoryGraph is the in-memory Graph built from authored concepts and
// prerequisite edges. It precomputes the adjacency index once; the graph
// is immutable after Build.
type MemoryGraph struct {
	concepts map[content.ConceptID]content.Concept
	edges    map[content.ConceptID][]Edge
}

// Build constructs a MemoryGraph. Edges referencing unknown concepts are
// kept: absence of a catalog entry is treated as no constraint elsewhere,
// and dropping the edge here would silently change gating behavior.
func Build(concepts []content.Concept, prereqs []content.Prerequisite) *MemoryGraph {
	g := &MemoryGraph{
		concepts: make(map[content.ConceptID]content.Concept, len(concepts)),
		edges:    make(map[content.ConceptID][]Edge, len(concepts)),
	}
	for _, c := range concepts {
		g.concepts[c.ID] = c
	}
	for _, p := range prereqs {
		g.edges[p.SourceConceptID] = append(g.edges[p.SourceConceptID], Edge{
			TargetConceptID: p.TargetConceptID,
			Threshold:       p.Threshold,
			Gating:          p.Gating,
			MasteryType:     p.MasteryType,
		})
	}
	// Deterministic edge order regardless of authoring order.
	for id := range g.edges {
		es := g.edges[id]
		sort.Slice(es, func(i, j int) bool {
			return es[i].TargetConceptID < es[j].TargetConceptID
		})
	}
	return g
}

// Edges returns the direct prerequisites of a concept.
func (g *MemoryGraph) Edges(conceptID content.ConceptID) []Edge {
	es := g.edges[conceptID]
	out := make([]Edge, len(es))
	copy(out, es)
	return out
}

// Name returns the concept's display name, falling back to its id.
func (g *MemoryGraph) Name(conceptID content.ConceptID) string {
	if c, ok := g.concepts[conceptID]; ok && c.Name != "" {
		return c.Name
	}
	return string(conceptID)
}

// Concepts returns all known concepts sorted by id.
func (g *MemoryGraph) Concepts() []content.Concept {
	out := make([]content.Concept, 0, len(g.concepts))
	for _, c := range g.concepts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
