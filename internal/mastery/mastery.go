package mastery

import "github.com/tutorkit/tutorkit/internal/content"

// KnowledgeBreakdown splits mastery by the knowledge type of the atoms
// that produced the signals.
type KnowledgeBreakdown struct {
	Declarative float64
	Procedural  float64
	Conceptual  float64
}

// ConceptMastery is the per-(learner, concept) mastery snapshot. It is a
// derived view recomputed on every query; nothing caches it across calls.
type ConceptMastery struct {
	LearnerID string
	ConceptID content.ConceptID

	ReviewMastery   float64
	QuizMastery     float64
	CombinedMastery float64 // always in [0,1]
	Breakdown       KnowledgeBreakdown
	Level           Level // derived from CombinedMastery, never stored

	IsUnlocked  bool
	ReviewCount int
	QuizCount   int
}

// Summary aggregates mastery over all concepts a learner has touched.
type Summary struct {
	Total          int
	AverageMastery float64
	ByLevel        map[Level]int
	Unlocked       int
	Locked         int
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
