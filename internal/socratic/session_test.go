package socratic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// scripted returns queued signals in order, then PROGRESSING forever.
type scripted struct {
	signals []CognitiveSignal
}

func (s *scripted) Classify(_ context.Context, _ Exchange) (CognitiveSignal, error) {
	if len(s.signals) == 0 {
		return SignalProgressing, nil
	}
	next := s.signals[0]
	s.signals = s.signals[1:]
	return next, nil
}

func testAtom() *content.Atom {
	return &content.Atom{
		ID:            "atom-quotient",
		Type:          content.AtomNumeric,
		ConceptID:     "quotient-rule",
		KnowledgeType: content.KnowledgeProcedural,
		Prompt:        "Differentiate f(x) = x^2 / (x+1).",
		Payload:       content.NumericPayload{Answer: 0.75},
	}
}

func testAncestors() []prereq.Ancestor {
	return []prereq.Ancestor{
		{ConceptID: "product-rule", Name: "Product Rule", Depth: 1},
		{ConceptID: "power-rule", Name: "Power Rule", Depth: 2},
	}
}

func advance(t *testing.T, s *Session, text string) (string, bool) {
	t.Helper()
	prompt, done, err := s.Advance(context.Background(), Input{Text: text})
	require.NoError(t, err)
	return prompt, done
}

func TestSessionStuckEscalatesOneLevel(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{SignalStuck}}, nil)
	s.Opening()

	_, done := advance(t, s, "i don't know")
	assert.False(t, done)
	assert.Equal(t, LevelNudge, s.Level)
}

func TestSessionSingleConfusedHolds(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{SignalConfused}}, nil)
	s.Opening()

	_, done := advance(t, s, "what do you mean?")
	assert.False(t, done)
	assert.Equal(t, LevelPureSocratic, s.Level)
}

func TestSessionRepeatedConfusedEscalates(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalConfused, SignalConfused,
	}}, nil)
	s.Opening()

	advance(t, s, "huh?")
	_, done := advance(t, s, "still lost")
	assert.False(t, done)
	assert.Equal(t, LevelNudge, s.Level)
}

func TestSessionProgressResetsConfusedStreak(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalConfused, SignalProgressing, SignalConfused,
	}}, nil)
	s.Opening()

	advance(t, s, "huh?")
	advance(t, s, "ok so the derivative of the top is 2x")
	_, done := advance(t, s, "wait what?")
	assert.False(t, done)
	assert.Equal(t, LevelPureSocratic, s.Level)
}

func TestSessionBreakthroughAtLevelZeroSelfSolved(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{SignalBreakthrough}}, nil)
	s.Opening()

	_, done := advance(t, s, "oh! it's the quotient rule, so 0.75")
	assert.True(t, done)
	assert.Equal(t, ResolutionSelfSolved, s.Resolution)
	assert.Equal(t, LevelPureSocratic, s.Level)
}

func TestSessionBreakthroughAfterHintsGuidedSolved(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalStuck, SignalBreakthrough,
	}}, nil)
	s.Opening()

	advance(t, s, "no idea")
	_, done := advance(t, s, "got it now")
	assert.True(t, done)
	assert.Equal(t, ResolutionGuidedSolved, s.Resolution)
	assert.Equal(t, LevelNudge, s.Level)
}

func TestSessionAbstainGaveUp(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{}, nil)
	s.Opening()

	_, done, err := s.Advance(context.Background(), Input{Abstain: true})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, ResolutionGaveUp, s.Resolution)
}

func TestSessionEscalatingToRevealResolvesRevealed(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalStuck, SignalStuck, SignalStuck, SignalStuck,
	}}, nil)
	s.Opening()

	var done bool
	var prompt string
	for _, text := range []string{"stuck", "stuck", "stuck", "stuck"} {
		prompt, done = advance(t, s, text)
	}
	require.True(t, done)
	assert.Equal(t, ResolutionRevealed, s.Resolution)
	assert.Equal(t, LevelReveal, s.Level)
	assert.Contains(t, prompt, "0.75")
}

func TestSessionFatigueAtPartialReveals(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalStuck, SignalStuck, SignalFatigue,
	}}, nil)
	s.Opening()

	advance(t, s, "stuck")
	advance(t, s, "stuck")
	require.Equal(t, LevelPartial, s.Level)

	_, done := advance(t, s, "i'm tired")
	assert.True(t, done)
	assert.Equal(t, ResolutionRevealed, s.Resolution)
	assert.Equal(t, LevelReveal, s.Level)
}

func TestSessionFatigueEarlyEscalates(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{SignalFatigue}}, nil)
	s.Opening()

	_, done := advance(t, s, "this is taking forever")
	assert.False(t, done)
	assert.Equal(t, LevelNudge, s.Level)
}

func TestSessionScaffoldNeverDecreases(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalStuck, SignalProgressing, SignalConfused, SignalStuck, SignalProgressing,
	}}, nil)
	s.Opening()

	prev := s.Level
	for _, text := range []string{"stuck", "hm ok", "huh", "stuck again", "trying"} {
		advance(t, s, text)
		require.GreaterOrEqual(t, s.Level, prev, "scaffold level decreased")
		prev = s.Level
	}
}

func TestSessionResolvedCannotResume(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{}, nil)
	s.Opening()
	s.Advance(context.Background(), Input{Abstain: true})

	_, done, err := s.Advance(context.Background(), Input{Text: "actually wait"})
	assert.Error(t, err)
	assert.True(t, done)
}

func TestSessionPrerequisiteGapRecordsAndEscalates(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{signals: []CognitiveSignal{
		SignalPrerequisiteGap,
	}}, testAncestors())
	s.Opening()

	_, done := advance(t, s, "i never learned the product rule")
	assert.False(t, done)
	assert.Equal(t, LevelNudge, s.Level)

	s.Interrupt()
	assert.Equal(t, []content.ConceptID{"product-rule"}, s.DetectedGaps)
}

func TestSessionInterruptKeepsTranscript(t *testing.T) {
	s := NewSession("alice", testAtom(), &scripted{}, nil)
	s.Opening()
	advance(t, s, "working on it")

	s.Interrupt()
	assert.Equal(t, ResolutionGaveUp, s.Resolution)
	assert.NotEmpty(t, s.Turns)

	// Idempotent.
	s.Interrupt()
	assert.Equal(t, ResolutionGaveUp, s.Resolution)
}
