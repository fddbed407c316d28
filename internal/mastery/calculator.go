package mastery

import (
	"context"
	"fmt"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// Calculator computes concept mastery from review and quiz signals.
// It is a pure function of its SignalSource: no side effects, safe to
// call repeatedly and concurrently.
type Calculator struct {
	signals content.SignalSource
	graph   prereq.Graph
	cfg     Config
}

// NewCalculator creates a mastery calculator.
func NewCalculator(signals content.SignalSource, graph prereq.Graph, cfg Config) *Calculator {
	return &Calculator{signals: signals, graph: graph, cfg: cfg}
}

// ComputeConceptMastery builds the mastery snapshot for one pair.
func (c *Calculator) ComputeConceptMastery(ctx context.Context, learnerID string, conceptID content.ConceptID) (*ConceptMastery, error) {
	sig, err := c.signals.Signals(ctx, learnerID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("signals for %s/%s: %w", learnerID, conceptID, err)
	}

	cm := &ConceptMastery{
		LearnerID:   learnerID,
		ConceptID:   conceptID,
		ReviewCount: sig.ReviewCount,
		QuizCount:   sig.QuizCount,
	}

	cm.ReviewMastery = c.reviewMastery(sig)
	cm.QuizMastery = clamp01(sig.QuizAccuracy)
	cm.CombinedMastery = c.combine(cm.ReviewMastery, sig.ReviewCount, cm.QuizMastery, sig.QuizCount)
	cm.Level = LevelFromScore(cm.CombinedMastery)
	cm.Breakdown = KnowledgeBreakdown{
		Declarative: clamp01(sig.Declarative),
		Procedural:  clamp01(sig.Procedural),
		Conceptual:  clamp01(sig.Conceptual),
	}

	unlocked, err := c.isUnlocked(ctx, learnerID, conceptID)
	if err != nil {
		return nil, err
	}
	cm.IsUnlocked = unlocked

	return cm, nil
}

// reviewMastery derives a [0,1] score from spaced-repetition aggregates:
// stability discounted by recorded lapses.
func (c *Calculator) reviewMastery(sig *content.ConceptSignals) float64 {
	if sig.ReviewCount == 0 {
		return 0
	}
	penalty := c.cfg.LapsePenalty * float64(sig.ReviewLapses)
	if penalty > c.cfg.MaxLapsePenalty {
		penalty = c.cfg.MaxLapsePenalty
	}
	return clamp01(sig.ReviewStability * (1 - penalty))
}

// combine weights the two sources, renormalizing when one side has no
// activity so an untested concept isn't dragged to half its real score.
func (c *Calculator) combine(review float64, reviewCount int, quiz float64, quizCount int) float64 {
	rw, qw := c.cfg.ReviewWeight, c.cfg.QuizWeight
	if reviewCount == 0 {
		rw = 0
	}
	if quizCount == 0 {
		qw = 0
	}
	if rw+qw == 0 {
		return 0
	}
	return clamp01((review*rw + quiz*qw) / (rw + qw))
}

// isUnlocked checks every hard-gated direct prerequisite. Soft gates and
// missing graph entries never block.
func (c *Calculator) isUnlocked(ctx context.Context, learnerID string, conceptID content.ConceptID) (bool, error) {
	for _, e := range c.graph.Edges(conceptID) {
		if e.Gating != content.GatingHard {
			continue
		}
		sig, err := c.signals.Signals(ctx, learnerID, e.TargetConceptID)
		if err != nil {
			return false, fmt.Errorf("prerequisite signals for %s: %w", e.TargetConceptID, err)
		}
		review := c.reviewMastery(sig)
		combined := c.combine(review, sig.ReviewCount, clamp01(sig.QuizAccuracy), sig.QuizCount)
		if combined < e.Threshold {
			return false, nil
		}
	}
	return true, nil
}

// MasterySummary aggregates mastery over every concept the learner has
// signals for. Used by dashboards.
func (c *Calculator) MasterySummary(ctx context.Context, learnerID string) (*Summary, error) {
	ids, err := c.signals.ConceptsWithSignals(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list concepts for %s: %w", learnerID, err)
	}

	sum := &Summary{ByLevel: make(map[Level]int)}
	var total float64
	for _, id := range ids {
		cm, err := c.ComputeConceptMastery(ctx, learnerID, id)
		if err != nil {
			return nil, err
		}
		sum.Total++
		total += cm.CombinedMastery
		sum.ByLevel[cm.Level]++
		if cm.IsUnlocked {
			sum.Unlocked++
		} else {
			sum.Locked++
		}
	}
	if sum.Total > 0 {
		sum.AverageMastery = total / float64(sum.Total)
	}
	return sum, nil
}
