package socratic

import (
	"context"
	"fmt"
	"time"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// Record is the persisted summary of a resolved (or interrupted) session.
type Record struct {
	ID            string
	LearnerID     string
	AtomID        content.AtomID
	ConceptID     content.ConceptID
	ScaffoldLevel ScaffoldLevel
	Resolution    Resolution
	DetectedGaps  []content.ConceptID
	Turns         []Turn
	StartedAt     time.Time
	ResolvedAt    time.Time
}

// SessionRepo persists dialogue records. Implemented by the store.
type SessionRepo interface {
	InsertDialogue(ctx context.Context, rec *Record) error
}

// Engine creates and closes dialogue sessions.
type Engine struct {
	classifier Classifier
	graph      prereq.Graph
	sessions   SessionRepo
}

// NewEngine builds an engine. A nil classifier uses heuristics only.
func NewEngine(classifier Classifier, graph prereq.Graph, sessions SessionRepo) *Engine {
	if classifier == nil {
		classifier = Heuristic{}
	}
	return &Engine{classifier: classifier, graph: graph, sessions: sessions}
}

// Start opens a dialogue on an atom the learner abstained from.
func (e *Engine) Start(learnerID string, atom *content.Atom) *Session {
	var ancestors []prereq.Ancestor
	if e.graph != nil {
		ancestors = e.graph.Ancestors(atom.ConceptID, prereq.DefaultMaxDepth)
	}
	return NewSession(learnerID, atom, e.classifier, ancestors)
}

// Close persists a session. An unresolved session is interrupted first so
// a partial transcript always lands with a terminal resolution.
func (e *Engine) Close(ctx context.Context, s *Session) error {
	if !s.Resolved() {
		s.Interrupt()
	}
	if e.sessions == nil {
		return nil
	}
	rec := &Record{
		ID:            s.ID,
		LearnerID:     s.LearnerID,
		AtomID:        s.Atom.ID,
		ConceptID:     s.Atom.ConceptID,
		ScaffoldLevel: s.Level,
		Resolution:    s.Resolution,
		DetectedGaps:  s.DetectedGaps,
		Turns:         s.Turns,
		StartedAt:     s.StartedAt,
		ResolvedAt:    time.Now(),
	}
	if err := e.sessions.InsertDialogue(ctx, rec); err != nil {
		return fmt.Errorf("persist dialogue %s: %w", s.ID, err)
	}
	return nil
}
