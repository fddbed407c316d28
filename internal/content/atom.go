package content

import "fmt"

// AtomID identifies a single learning atom in the catalog.
type AtomID string

// ConceptID identifies a knowledge node.
type ConceptID string

// AtomType is the presentation format of an atom. The set is closed;
// every type has a corresponding payload struct.
type AtomType string

const (
	AtomRecallCard     AtomType = "recall_card"
	AtomCloze          AtomType = "cloze"
	AtomMultipleChoice AtomType = "multiple_choice"
	AtomTrueFalse      AtomType = "true_false"
	AtomOrdering       AtomType = "ordering"
	AtomMatching       AtomType = "matching"
	AtomNumeric        AtomType = "numeric"
)

// AllAtomTypes returns the closed set of atom types in presentation order.
func AllAtomTypes() []AtomType {
	return []AtomType{
		AtomRecallCard,
		AtomCloze,
		AtomMultipleChoice,
		AtomTrueFalse,
		AtomOrdering,
		AtomMatching,
		AtomNumeric,
	}
}

// ParseAtomType validates a string against the closed atom type set.
func ParseAtomType(s string) (AtomType, error) {
	for _, t := range AllAtomTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown atom type: %q", s)
}

// KnowledgeType classifies what kind of knowledge an atom exercises.
type KnowledgeType string

const (
	KnowledgeDeclarative KnowledgeType = "declarative"
	KnowledgeProcedural  KnowledgeType = "procedural"
	KnowledgeConceptual  KnowledgeType = "conceptual"
)

// Atom is the smallest presentable learning unit. Atoms are immutable once
// authored; the catalog owns them and this package only reads them.
type Atom struct {
	ID            AtomID
	Type          AtomType
	ConceptID     ConceptID
	KnowledgeType KnowledgeType
	QualityScore  float64 // 0.0-1.0, set by the authoring pipeline
	Prompt        string
	Payload       Payload
}

// Payload is the type-specific body of an atom, a tagged union keyed by
// AtomType. Handlers switch on the concrete type so new atom types fail
// to compile until every consumer handles them.
type Payload interface {
	atomPayload()
}

// RecallCardPayload is a front/back flash card.
type RecallCardPayload struct {
	Back string
}

// ClozePayload is a fill-in-the-blank text with one or more deletions.
type ClozePayload struct {
	Text    string
	Answers []string
}

// MultipleChoicePayload presents options with exactly one correct index.
type MultipleChoicePayload struct {
	Options      []string
	CorrectIndex int
}

// TrueFalsePayload is a single proposition.
type TrueFalsePayload struct {
	Answer bool
}

// OrderingPayload asks the learner to arrange steps in sequence.
type OrderingPayload struct {
	Steps []string // authored in correct order
}

// MatchingPayload asks the learner to pair left and right items.
type MatchingPayload struct {
	Pairs [][2]string
}

// NumericPayload expects a number within a tolerance.
type NumericPayload struct {
	Answer    float64
	Tolerance float64
}

func (RecallCardPayload) atomPayload()     {}
func (ClozePayload) atomPayload()          {}
func (MultipleChoicePayload) atomPayload() {}
func (TrueFalsePayload) atomPayload()      {}
func (OrderingPayload) atomPayload()       {}
func (MatchingPayload) atomPayload()       {}
func (NumericPayload) atomPayload()        {}
