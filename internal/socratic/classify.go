package socratic

import (
	"context"
	"strings"
)

// Exchange is the learner turn handed to a classifier, with enough
// context to read intent.
type Exchange struct {
	Text      string
	LatencyMs int64
	Level     ScaffoldLevel
	History   []Turn
}

// Classifier maps a learner turn to a cognitive signal.
type Classifier interface {
	Classify(ctx context.Context, ex Exchange) (CognitiveSignal, error)
}

// Latency bounds for the heuristic classifier, in milliseconds.
const (
	stuckLatencyMs   = 45_000
	fatigueLatencyMs = 120_000
)

// Heuristic is a deterministic keyword and latency classifier. It is the
// fallback when no model provider is configured or a model call fails.
type Heuristic struct{}

func (Heuristic) Classify(_ context.Context, ex Exchange) (CognitiveSignal, error) {
	text := strings.ToLower(strings.TrimSpace(ex.Text))

	switch {
	case containsAny(text, breakthroughPhrases):
		return SignalBreakthrough, nil
	case containsAny(text, gapPhrases):
		return SignalPrerequisiteGap, nil
	case containsAny(text, fatiguePhrases) || ex.LatencyMs > fatigueLatencyMs:
		return SignalFatigue, nil
	case containsAny(text, stuckPhrases):
		return SignalStuck, nil
	case containsAny(text, confusedPhrases):
		return SignalConfused, nil
	case ex.LatencyMs > stuckLatencyMs && len(text) < 20:
		// A long silence followed by a short reply reads as stuck even
		// without the words for it.
		return SignalStuck, nil
	}
	return SignalProgressing, nil
}

var (
	breakthroughPhrases = []string{
		"oh!", "oh wait", "i see", "i get it", "got it", "that's it",
		"the answer is", "so it must be", "now i understand",
	}
	gapPhrases = []string{
		"never learned", "we didn't cover", "haven't seen", "what is a",
		"what's a", "i don't remember how to",
	}
	fatiguePhrases = []string{
		"tired", "need a break", "enough for today", "can we stop",
		"too long",
	}
	stuckPhrases = []string{
		"i don't know", "i dont know", "no idea", "stuck", "i can't",
		"i cant", "nothing comes to mind",
	}
	confusedPhrases = []string{
		"what do you mean", "confused", "don't understand",
		"dont understand", "doesn't make sense", "huh", "lost me",
	}
)

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
