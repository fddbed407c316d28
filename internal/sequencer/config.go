package sequencer

// Config holds the sequencing thresholds. Passed into NewSequencer as an
// immutable value.
type Config struct {
	// RequireConsecutive is the correct-streak length (no hints) that
	// promotes mastery on its own.
	RequireConsecutive int

	// RollingWindow and RollingAccuracy form the alternative promotion
	// gate: accuracy over the last RollingWindow outcomes.
	RollingWindow   int
	RollingAccuracy float64

	// MaxTraversalDepth bounds learning-path prerequisite resolution.
	MaxTraversalDepth int

	// TargetMastery is the default mastery goal for learning paths.
	TargetMastery float64

	// MasteryPerAtom is the heuristic mastery gain assumed per completed
	// atom when estimating how many atoms it takes to unlock a concept.
	MasteryPerAtom float64
}

// DefaultConfig returns the standard sequencing thresholds.
func DefaultConfig() Config {
	return Config{
		RequireConsecutive: 3,
		RollingWindow:      5,
		RollingAccuracy:    0.85,
		MaxTraversalDepth:  10,
		TargetMastery:      0.85,
		MasteryPerAtom:     0.05,
	}
}
