package content

// Concept is a named knowledge node that atoms belong to.
type Concept struct {
	ID        ConceptID
	Name      string
	ClusterID string // optional topical grouping, empty when unclustered
}

// GatingType controls how an unmet prerequisite affects its dependent:
// a hard gate blocks unlocking, a soft gate only surfaces a recommendation.
type GatingType string

const (
	GatingSoft GatingType = "soft"
	GatingHard GatingType = "hard"
)

// MasteryType describes the pedagogical role of a prerequisite edge.
type MasteryType string

const (
	MasteryFoundation  MasteryType = "foundation"
	MasteryIntegration MasteryType = "integration"
	MasteryMastery     MasteryType = "mastery"
)

// Prerequisite is a directed edge: Source depends on Target.
// Threshold is the combined mastery Target must reach, in (0,1].
type Prerequisite struct {
	SourceConceptID ConceptID
	TargetConceptID ConceptID
	Threshold       float64
	Gating          GatingType
	MasteryType     MasteryType
}
