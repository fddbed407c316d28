package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/llm"
	"github.com/tutorkit/tutorkit/internal/remediation"
	"github.com/tutorkit/tutorkit/internal/socratic"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const packYAML = `
name: calculus-core
concepts:
  - id: power-rule
    name: Power Rule
    cluster: differentiation
  - id: chain-rule
    name: Chain Rule
    cluster: differentiation
prerequisites:
  - source: chain-rule
    target: power-rule
    threshold: 0.7
    gating: hard
    mastery_type: foundation
atoms:
  - id: pr-001
    type: recall_card
    concept: power-rule
    knowledge: declarative
    quality: 0.9
    prompt: "State the power rule."
    payload:
      back: "d/dx x^n = n x^(n-1)"
  - id: cr-001
    type: numeric
    concept: chain-rule
    knowledge: procedural
    quality: 0.7
    prompt: "d/dx (2x+1)^2 at x=0?"
    payload:
      answer: 4
      tolerance: 0.001
`

func importTestPack(t *testing.T, s *Store) {
	t.Helper()
	p, err := LoadPack(strings.NewReader(packYAML))
	require.NoError(t, err)
	concepts, atoms, err := s.Catalog().ImportPack(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, concepts)
	assert.Equal(t, 2, atoms)
}

func TestCatalogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	importTestPack(t, s)
	ctx := context.Background()

	atom, err := s.Catalog().Get(ctx, "pr-001")
	require.NoError(t, err)
	require.NotNil(t, atom)
	assert.Equal(t, content.AtomRecallCard, atom.Type)
	assert.Equal(t, content.ConceptID("power-rule"), atom.ConceptID)
	payload, ok := atom.Payload.(content.RecallCardPayload)
	require.True(t, ok)
	assert.Contains(t, payload.Back, "n x^(n-1)")

	missing, err := s.Catalog().Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ids, err := s.Catalog().ListByConcept(ctx, "chain-rule")
	require.NoError(t, err)
	assert.Equal(t, []content.AtomID{"cr-001"}, ids)
}

func TestCatalogLoadGraph(t *testing.T) {
	s := openTestStore(t)
	importTestPack(t, s)

	g, err := s.Catalog().LoadGraph(context.Background())
	require.NoError(t, err)

	edges := g.Edges("chain-rule")
	require.Len(t, edges, 1)
	assert.Equal(t, content.ConceptID("power-rule"), edges[0].TargetConceptID)
	assert.Equal(t, content.GatingHard, edges[0].Gating)
	assert.InDelta(t, 0.7, edges[0].Threshold, 1e-9)
}

func TestCatalogAtomPrerequisites(t *testing.T) {
	s := openTestStore(t)
	importTestPack(t, s)
	ctx := context.Background()

	prereqs, err := s.Catalog().AtomPrerequisites(ctx, []content.ConceptID{"power-rule", "chain-rule"})
	require.NoError(t, err)

	// chain-rule is gated on power-rule's atoms, not its own.
	assert.Equal(t, []content.AtomID{"pr-001"}, prereqs["chain-rule"])

	// power-rule has no prerequisite edges and must stay ungated.
	_, gated := prereqs["power-rule"]
	assert.False(t, gated)
}

func TestPackRejectsBadAtomType(t *testing.T) {
	_, err := LoadPack(strings.NewReader(`
atoms:
  - id: x
    type: hologram
    concept: c
`))
	require.NoError(t, err) // parse succeeds, import validates
	s := openTestStore(t)
	p := &Pack{Atoms: []packAtom{{ID: "x", Type: "hologram", Concept: "c"}}}
	_, _, err = s.Catalog().ImportPack(context.Background(), p)
	assert.Error(t, err)
}

func TestReviewScheduleAndListDue(t *testing.T) {
	s := openTestStore(t)
	importTestPack(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Signals().Schedule(ctx, "alice", "pr-001", now.Add(-2*time.Hour)))
	require.NoError(t, s.Signals().Schedule(ctx, "alice", "cr-001", now.Add(-time.Hour)))

	due, err := s.Catalog().ListDue(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []content.AtomID{"pr-001", "cr-001"}, due)
}

func TestRecordReviewPushesDueOut(t *testing.T) {
	s := openTestStore(t)
	importTestPack(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	atom, err := s.Catalog().Get(ctx, "pr-001")
	require.NoError(t, err)

	require.NoError(t, s.Signals().Schedule(ctx, "alice", atom.ID, now.Add(-time.Hour)))
	require.NoError(t, s.Signals().RecordReview(ctx, "alice", atom, true, now))

	due, err := s.Catalog().ListDue(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, due, "a correct review should not stay due")

	sig, err := s.Signals().Signals(ctx, "alice", atom.ConceptID)
	require.NoError(t, err)
	assert.Equal(t, 1, sig.ReviewCount)
	assert.True(t, sig.NativeActivity)
}

func TestRecordReviewLapseComesDueImmediately(t *testing.T) {
	s := openTestStore(t)
	importTestPack(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	atom, err := s.Catalog().Get(ctx, "pr-001")
	require.NoError(t, err)
	require.NoError(t, s.Signals().RecordReview(ctx, "alice", atom, false, now.Add(-time.Minute)))

	due, err := s.Catalog().ListDue(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []content.AtomID{"pr-001"}, due)

	sig, err := s.Signals().Signals(ctx, "alice", atom.ConceptID)
	require.NoError(t, err)
	assert.Equal(t, 1, sig.ReviewLapses)
}

func TestSeedRefusesNativeActivity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	wrote, err := s.Signals().SeedReviewSignals(ctx, content.ConceptSignals{
		LearnerID: "alice", ConceptID: "power-rule",
		ReviewStability: 0.8, ReviewCount: 40,
	})
	require.NoError(t, err)
	assert.True(t, wrote)

	// Native activity arrives.
	require.NoError(t, s.Signals().RecordQuizOutcome(ctx, "alice", "power-rule", content.KnowledgeDeclarative, true))

	wrote, err = s.Signals().SeedReviewSignals(ctx, content.ConceptSignals{
		LearnerID: "alice", ConceptID: "power-rule",
		ReviewStability: 0.1, ReviewCount: 1,
	})
	require.NoError(t, err)
	assert.False(t, wrote, "seeding must not clobber native history")

	sig, err := s.Signals().Signals(ctx, "alice", "power-rule")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, sig.ReviewStability, 1e-9)
}

func TestQuizOutcomeAggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Signals().RecordQuizOutcome(ctx, "alice", "power-rule", content.KnowledgeDeclarative, true))
	require.NoError(t, s.Signals().RecordQuizOutcome(ctx, "alice", "power-rule", content.KnowledgeProcedural, false))
	require.NoError(t, s.Signals().RecordQuizOutcome(ctx, "alice", "power-rule", content.KnowledgeDeclarative, true))

	sig, err := s.Signals().Signals(ctx, "alice", "power-rule")
	require.NoError(t, err)
	assert.Equal(t, 3, sig.QuizCount)
	assert.InDelta(t, 2.0/3.0, sig.QuizAccuracy, 1e-9)
	assert.InDelta(t, 1.0, sig.Declarative, 1e-9)
	assert.InDelta(t, 0.0, sig.Procedural, 1e-9)

	concepts, err := s.Signals().ConceptsWithSignals(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []content.ConceptID{"power-rule"}, concepts)
}

func TestAttemptsRecentOutcomesOldestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, correct := range []bool{true, false, false, true} {
		require.NoError(t, s.Attempts().Insert(ctx, Attempt{
			LearnerID: "alice", AtomID: content.AtomID("a"), ConceptID: "c",
			Correct: correct, LatencyMs: int64(i),
		}))
	}

	got, err := s.Attempts().RecentOutcomes(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []bool{false, false, true}, []bool{got[0].Correct, got[1].Correct, got[2].Correct})
}

func TestMarkMasteredIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Attempts().MarkMastered(ctx, "alice", "a1"))
	require.NoError(t, s.Attempts().MarkMastered(ctx, "alice", "a1"))

	mastered, err := s.Attempts().MasteredAtoms(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, mastered["a1"])
	assert.Len(t, mastered, 1)
}

func TestRemediationFinalizeSingleWriter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Remediation()

	ev := &remediation.Event{
		ID: "ev-1", LearnerID: "alice", GapConceptID: "power-rule",
		Trigger: remediation.TriggerIncorrectAnswer, Status: remediation.StatusTriggered,
		MasteryAtTrigger: 0.4, RequiredMastery: 0.7, MasteryGap: 0.3,
		TriggeredAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(ctx, ev))

	ev.Status = remediation.StatusCompleted
	ev.AtomsCompleted = 3
	ev.PostRemediationMastery = 0.75
	ev.Successful = true
	ok, err := repo.Finalize(ctx, ev)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second terminal write loses.
	ev.Status = remediation.StatusSkipped
	ok, err = repo.Finalize(ctx, ev)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, remediation.StatusCompleted, got.Status)
	assert.True(t, got.Successful)
	require.NotNil(t, got.ResolvedAt)
}

func TestDialogueRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &socratic.Record{
		ID: "dlg-1", LearnerID: "alice", AtomID: "pr-001", ConceptID: "power-rule",
		ScaffoldLevel: socratic.LevelNudge,
		Resolution:    socratic.ResolutionGuidedSolved,
		DetectedGaps:  []content.ConceptID{"exponents"},
		Turns: []socratic.Turn{
			{Role: socratic.RoleTutor, Content: "What do you notice?"},
			{Role: socratic.RoleLearner, Content: "i never got exponents", LatencyMs: 9000, Signal: socratic.SignalPrerequisiteGap},
		},
		StartedAt:  time.Now().Add(-time.Minute),
		ResolvedAt: time.Now(),
	}
	require.NoError(t, s.Dialogues().InsertDialogue(ctx, rec))

	got, err := s.Dialogues().GetDialogue(ctx, "dlg-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, socratic.ResolutionGuidedSolved, got.Resolution)
	assert.Equal(t, []content.ConceptID{"exponents"}, got.DetectedGaps)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, socratic.SignalPrerequisiteGap, got.Turns[1].Signal)

	list, err := s.Dialogues().ListDialogues(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Turns)
}

func TestLLMRequestUsage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LLMRequests().AppendLLMRequest(ctx, llm.RequestRecord{
		Model: "mock", Purpose: "turn-classify", InputTokens: 100, OutputTokens: 20, Success: true,
	}))
	require.NoError(t, s.LLMRequests().AppendLLMRequest(ctx, llm.RequestRecord{
		Model: "mock", Purpose: "turn-classify", Success: false, ErrorMessage: "down",
	}))

	usage, err := s.LLMRequests().Usage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Requests)
	assert.Equal(t, 1, usage.Failures)
	assert.Equal(t, 100, usage.InputTokens)
}

func TestAnkiExportConceptStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anki.yaml")
	err := os.WriteFile(path, []byte(`
tracks:
  calculus:
    - concept: power-rule
      stability: 0.82
      difficulty: 0.3
      lapses: 2
      reviews: 41
`), 0o644)
	require.NoError(t, err)

	export, err := LoadAnkiExport(path)
	require.NoError(t, err)
	stats, err := export.ConceptStats(context.Background(), "alice", "calculus")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, content.ConceptID("power-rule"), stats[0].ConceptID)
	assert.Equal(t, 41, stats[0].Reviews)

	empty, err := export.ConceptStats(context.Background(), "alice", "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
