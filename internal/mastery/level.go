package mastery

// Level buckets a combined mastery score for display and gating.
type Level string

const (
	LevelNovice     Level = "novice"
	LevelDeveloping Level = "developing"
	LevelProficient Level = "proficient"
	LevelMastered   Level = "mastered"
)

// Level breakpoints over combined mastery. Fixed; not configurable.
const (
	developingFloor = 0.4
	proficientFloor = 0.7
	masteredFloor   = 0.9
)

// LevelFromScore derives the level from a combined mastery score.
// Monotonic step function: a higher score never maps to a lower level.
// Scores outside [0,1] are clamped.
func LevelFromScore(score float64) Level {
	switch {
	case score >= masteredFloor:
		return LevelMastered
	case score >= proficientFloor:
		return LevelProficient
	case score >= developingFloor:
		return LevelDeveloping
	default:
		return LevelNovice
	}
}

// Rank orders levels for comparison. Higher is stronger.
func (l Level) Rank() int {
	switch l {
	case LevelMastered:
		return 3
	case LevelProficient:
		return 2
	case LevelDeveloping:
		return 1
	default:
		return 0
	}
}
