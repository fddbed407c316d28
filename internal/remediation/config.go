package remediation

// Config holds the router's thresholds, passed in as an immutable value.
type Config struct {
	// ConfidentThreshold: a correct answer at or above this confidence
	// never triggers remediation. Confidence is optional; unknown
	// confidence on a correct answer also never triggers.
	ConfidentThreshold float64

	// ProficiencyFloor: in an exhaustive scan, concepts at or above this
	// combined mastery are not gaps.
	ProficiencyFloor float64

	// Priority bands over the mastery shortfall.
	HighGapFloor   float64
	MediumGapFloor float64

	// MaxBundleAtoms caps the candidate atoms attached to a plan.
	MaxBundleAtoms int
}

// DefaultConfig returns the standard remediation thresholds.
func DefaultConfig() Config {
	return Config{
		ConfidentThreshold: 0.7,
		ProficiencyFloor:   0.65,
		HighGapFloor:       0.3,
		MediumGapFloor:     0.15,
		MaxBundleAtoms:     5,
	}
}

// priorityForGap bands a mastery shortfall.
func (c Config) priorityForGap(gap float64) Priority {
	switch {
	case gap >= c.HighGapFloor:
		return PriorityHigh
	case gap >= c.MediumGapFloor:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
