package content

import "context"

// AtomCatalog is the read side of the content store. The engine treats the
// catalog as an external collaborator: a missing atom or concept is "no
// constraint", never an error that halts a study session.
type AtomCatalog interface {
	// Get returns the atom, or (nil, nil) when the id is unknown.
	Get(ctx context.Context, id AtomID) (*Atom, error)

	// ListByConcept returns all atom ids for a concept.
	ListByConcept(ctx context.Context, conceptID ConceptID) ([]AtomID, error)

	// ListDue returns atoms due for review, ordered ascending by due time.
	ListDue(ctx context.Context, learnerID string) ([]AtomID, error)
}

// ConceptSignals are the per-(learner, concept) aggregates the mastery
// calculator consumes. Review figures come from spaced-repetition history,
// quiz figures from graded attempts.
type ConceptSignals struct {
	LearnerID string
	ConceptID ConceptID

	ReviewStability  float64 // 0.0-1.0, retention-derived
	ReviewDifficulty float64 // 0.0-1.0, higher is harder
	ReviewLapses     int
	ReviewCount      int

	QuizAccuracy float64 // 0.0-1.0 over graded attempts
	QuizCount    int

	// Accuracy split by the knowledge type of the attempted atoms.
	Declarative float64
	Procedural  float64
	Conceptual  float64

	// NativeActivity is true once the learner has produced any review or
	// quiz signal inside this system, as opposed to imported history.
	NativeActivity bool
}

// SignalSource supplies mastery signals. Implementations must be safe for
// repeated and concurrent reads.
type SignalSource interface {
	// Signals returns the aggregates for one pair. A pair with no history
	// returns zero-valued signals, not an error.
	Signals(ctx context.Context, learnerID string, conceptID ConceptID) (*ConceptSignals, error)

	// ConceptsWithSignals lists every concept the learner has signals for.
	ConceptsWithSignals(ctx context.Context, learnerID string) ([]ConceptID, error)
}
