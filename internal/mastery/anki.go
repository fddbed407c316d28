package mastery

import (
	"context"
	"fmt"

	"github.com/tutorkit/tutorkit/internal/content"
)

// AnkiConceptStats are per-concept aggregates read from an external
// spaced-repetition export.
type AnkiConceptStats struct {
	ConceptID  content.ConceptID
	Stability  float64
	Difficulty float64
	Lapses     int
	Reviews    int
}

// AnkiSource reads aggregated card statistics from an external
// spaced-repetition store, grouped by concept for one track.
type AnkiSource interface {
	ConceptStats(ctx context.Context, learnerID, trackID string) ([]AnkiConceptStats, error)
}

// SignalSeeder writes imported review signals. Seed must refuse pairs
// that already carry native activity and report whether it wrote.
type SignalSeeder interface {
	SeedReviewSignals(ctx context.Context, sig content.ConceptSignals) (bool, error)
}

// InitializeFromAnki seeds mastery state from an external spaced-repetition
// export when no native history exists. Idempotent: pairs with native
// activity, and pairs already seeded, are skipped by the seeder. Returns
// the number of concepts actually seeded.
func (c *Calculator) InitializeFromAnki(ctx context.Context, src AnkiSource, seeder SignalSeeder, learnerID, trackID string) (int, error) {
	stats, err := src.ConceptStats(ctx, learnerID, trackID)
	if err != nil {
		return 0, fmt.Errorf("read anki stats for track %s: %w", trackID, err)
	}

	seeded := 0
	for _, st := range stats {
		if st.Reviews == 0 {
			continue
		}
		ok, err := seeder.SeedReviewSignals(ctx, content.ConceptSignals{
			LearnerID:        learnerID,
			ConceptID:        st.ConceptID,
			ReviewStability:  clamp01(st.Stability),
			ReviewDifficulty: clamp01(st.Difficulty),
			ReviewLapses:     st.Lapses,
			ReviewCount:      st.Reviews,
		})
		if err != nil {
			return seeded, fmt.Errorf("seed %s/%s: %w", learnerID, st.ConceptID, err)
		}
		if ok {
			seeded++
		}
	}
	return seeded, nil
}
