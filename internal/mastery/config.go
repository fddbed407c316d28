package mastery

// Config holds the externally configured weights for combining review and
// quiz signals. Passed into NewCalculator; never read from globals.
type Config struct {
	// ReviewWeight and QuizWeight combine the two mastery sources.
	// They need not sum to 1; the calculator normalizes.
	ReviewWeight float64
	QuizWeight   float64

	// LapsePenalty is subtracted from review mastery per recorded lapse,
	// capped at MaxLapsePenalty.
	LapsePenalty    float64
	MaxLapsePenalty float64
}

// DefaultConfig returns the standard mastery weighting.
func DefaultConfig() Config {
	return Config{
		ReviewWeight:    0.6,
		QuizWeight:      0.4,
		LapsePenalty:    0.05,
		MaxLapsePenalty: 0.5,
	}
}
