// Package sequencer orders atoms for presentation: due reviews first,
// remediation splices on consecutive failures, then prerequisite-gated new
// content interleaved by format.
package sequencer

import (
	"context"
	"fmt"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/mastery"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// BundleSource supplies remediation atom bundles. Implemented by the
// remediation router; kept as a local interface so the sequencer does not
// depend on the router package.
type BundleSource interface {
	RemediationBundle(ctx context.Context, learnerID string, atomID content.AtomID, max int) ([]content.AtomID, error)
}

// Sequencer decides what the learner sees next.
type Sequencer struct {
	catalog content.AtomCatalog
	graph   *prereq.MemoryGraph
	calc    *mastery.Calculator
	bundles BundleSource // nil disables remediation splicing
	cfg     Config
}

// NewSequencer creates a sequencer. bundles may be nil when no remediation
// router is wired (the consecutive-failure splice is then skipped).
func NewSequencer(catalog content.AtomCatalog, graph *prereq.MemoryGraph, calc *mastery.Calculator, bundles BundleSource, cfg Config) *Sequencer {
	return &Sequencer{catalog: catalog, graph: graph, calc: calc, bundles: bundles, cfg: cfg}
}

// NextAtomsRequest carries the sequencing inputs for one call.
type NextAtomsRequest struct {
	LearnerID string

	// ConceptID scopes sequencing to one concept; empty means all
	// unlocked concepts. ClusterID further scopes by topical cluster.
	ConceptID content.ConceptID
	ClusterID string

	Count         int
	IncludeReview bool

	// RecentOutcomes, oldest first, drive the consecutive-failure rule.
	RecentOutcomes []Outcome

	// MasteredAtoms is the set of atoms already evidenced as mastered.
	MasteredAtoms map[content.AtomID]bool

	// AtomPrerequisites maps a concept to the atom ids that must all be
	// mastered before its atoms are admissible.
	AtomPrerequisites map[content.ConceptID][]content.AtomID

	// DueReview is consumed by reference; dequeued ids are gone even if
	// the caller discards the result.
	DueReview *ReviewQueue
}

// NextAtoms returns up to req.Count atom ids in presentation order.
// Ordering guarantee: every due-review id appears strictly before any
// remediation or new atom, and remediation precedes new content.
func (s *Sequencer) NextAtoms(ctx context.Context, req NextAtomsRequest) ([]content.AtomID, error) {
	if req.Count <= 0 {
		return nil, nil
	}

	var result []content.AtomID

	// Step 1: due reviews, at most half the requested count.
	if req.IncludeReview && req.DueReview != nil {
		result = append(result, req.DueReview.Dequeue(req.Count/2)...)
	}

	// Step 2: remediation splice on two consecutive failures.
	if s.bundles != nil && NeedsRemediation(req.RecentOutcomes) {
		failed := req.RecentOutcomes[len(req.RecentOutcomes)-1].AtomID
		remaining := req.Count - len(result)
		if remaining > 0 && failed != "" {
			bundle, err := s.bundles.RemediationBundle(ctx, req.LearnerID, failed, remaining)
			if err != nil {
				return nil, fmt.Errorf("remediation bundle for %s: %w", failed, err)
			}
			// The due-review block may already hold a bundle atom.
			queued := seen(result)
			for _, id := range bundle {
				if !queued[id] {
					result = append(result, id)
				}
			}
		}
	}

	// Steps 3-4: gated, interleaved new content.
	remaining := req.Count - len(result)
	if remaining > 0 {
		fresh, err := s.newAtoms(ctx, req, seen(result))
		if err != nil {
			return nil, err
		}
		if len(fresh) > remaining {
			fresh = fresh[:remaining]
		}
		result = append(result, fresh...)
	}

	return result, nil
}

func seen(ids []content.AtomID) map[content.AtomID]bool {
	m := make(map[content.AtomID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// newAtoms collects unreviewed atoms from unlocked concepts, applies
// prerequisite gating, and interleaves by format bucket.
func (s *Sequencer) newAtoms(ctx context.Context, req NextAtomsRequest, exclude map[content.AtomID]bool) ([]content.AtomID, error) {
	conceptIDs, err := s.scopedConcepts(ctx, req)
	if err != nil {
		return nil, err
	}

	var candidates []*content.Atom
	for _, cid := range conceptIDs {
		ids, err := s.catalog.ListByConcept(ctx, cid)
		if err != nil {
			return nil, fmt.Errorf("list atoms for %s: %w", cid, err)
		}
		for _, id := range ids {
			if exclude[id] || req.MasteredAtoms[id] {
				continue
			}
			atom, err := s.catalog.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("get atom %s: %w", id, err)
			}
			if atom == nil {
				continue
			}
			candidates = append(candidates, atom)
		}
	}

	candidates = applyPrerequisiteGating(candidates, req.AtomPrerequisites, req.MasteredAtoms)
	candidates = interleave(candidates)

	out := make([]content.AtomID, len(candidates))
	for i, a := range candidates {
		out[i] = a.ID
	}
	return out, nil
}

// scopedConcepts resolves which concepts may contribute new atoms:
// the requested concept plus its prerequisite closure, a cluster, or every
// unlocked concept. Including the closure lets a request for a still-gated
// concept surface its unmet prerequisites' atoms instead of going empty.
func (s *Sequencer) scopedConcepts(ctx context.Context, req NextAtomsRequest) ([]content.ConceptID, error) {
	if req.ConceptID != "" {
		out := []content.ConceptID{req.ConceptID}
		for _, anc := range s.graph.Ancestors(req.ConceptID, s.cfg.MaxTraversalDepth) {
			out = append(out, anc.ConceptID)
		}
		return out, nil
	}

	var out []content.ConceptID
	for _, c := range s.graph.Concepts() {
		if req.ClusterID != "" && c.ClusterID != req.ClusterID {
			continue
		}
		cm, err := s.calc.ComputeConceptMastery(ctx, req.LearnerID, c.ID)
		if err != nil {
			return nil, err
		}
		if cm.IsUnlocked {
			out = append(out, c.ID)
		}
	}
	return out, nil
}
