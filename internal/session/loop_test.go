package session

import (
	"context"
	"testing"
	"time"

	"github.com/tutorkit/tutorkit/internal/config"
	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/socratic"
	"github.com/tutorkit/tutorkit/internal/store"
)

func openLoop(t *testing.T) (*Loop, *store.Store) {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	cat := st.Catalog()
	concepts := []content.Concept{
		{ID: "power-rule", Name: "Power Rule"},
		{ID: "chain-rule", Name: "Chain Rule"},
	}
	for _, c := range concepts {
		if err := cat.UpsertConcept(ctx, c); err != nil {
			t.Fatalf("upsert concept: %v", err)
		}
	}
	err = cat.UpsertPrerequisite(ctx, content.Prerequisite{
		SourceConceptID: "chain-rule",
		TargetConceptID: "power-rule",
		Threshold:       0.7,
		Gating:          content.GatingSoft,
		MasteryType:     content.MasteryFoundation,
	})
	if err != nil {
		t.Fatalf("upsert prerequisite: %v", err)
	}

	atoms := []content.Atom{
		{ID: "pr-1", Type: content.AtomRecallCard, ConceptID: "power-rule",
			KnowledgeType: content.KnowledgeDeclarative, QualityScore: 0.9,
			Prompt: "State the power rule.", Payload: content.RecallCardPayload{Back: "n x^(n-1)"}},
		{ID: "cr-1", Type: content.AtomNumeric, ConceptID: "chain-rule",
			KnowledgeType: content.KnowledgeProcedural, QualityScore: 0.8,
			Prompt: "d/dx (2x+1)^2 at 0?", Payload: content.NumericPayload{Answer: 4}},
	}
	for _, a := range atoms {
		if err := cat.UpsertAtom(ctx, a); err != nil {
			t.Fatalf("upsert atom: %v", err)
		}
	}

	loop, err := New(st, config.Default(), nil)
	if err != nil {
		t.Fatalf("new loop: %v", err)
	}
	return loop, st
}

func TestSubmitRecordsAndPromotesMastery(t *testing.T) {
	loop, st := openLoop(t)
	ctx := context.Background()

	var mastered bool
	for i := 0; i < 3; i++ {
		res, err := loop.Submit(ctx, "alice", Answer{AtomID: "pr-1", Correct: true})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		mastered = res.AtomMastered
	}
	if !mastered {
		t.Fatal("three clean correct answers should promote the atom")
	}

	set, err := st.Attempts().MasteredAtoms(ctx, "alice")
	if err != nil {
		t.Fatalf("mastered atoms: %v", err)
	}
	if !set["pr-1"] {
		t.Fatal("mastery not persisted")
	}

	sig, err := st.Signals().Signals(ctx, "alice", "power-rule")
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.QuizCount != 3 || !sig.NativeActivity {
		t.Fatalf("quiz signals not recorded: %+v", sig)
	}
}

func TestSubmitHintBlocksStreakPromotion(t *testing.T) {
	loop, _ := openLoop(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := loop.Submit(ctx, "alice", Answer{AtomID: "pr-1", Correct: true}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	res, err := loop.Submit(ctx, "alice", Answer{AtomID: "pr-1", Correct: true, HintUsed: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.AtomMastered {
		t.Fatal("a hinted answer must not complete the streak")
	}
}

func TestIncorrectAnswerTriggersRemediation(t *testing.T) {
	loop, st := openLoop(t)
	ctx := context.Background()

	// Weak prerequisite mastery: one wrong quiz answer on power-rule.
	if err := st.Signals().RecordQuizOutcome(ctx, "alice", "power-rule", content.KnowledgeDeclarative, false); err != nil {
		t.Fatalf("seed signals: %v", err)
	}

	res, err := loop.Submit(ctx, "alice", Answer{AtomID: "cr-1", Correct: false})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Plan == nil || res.Event == nil {
		t.Fatal("expected a remediation plan and durable event")
	}
	if res.Plan.GapConceptID != "power-rule" {
		t.Fatalf("gap concept = %s, want power-rule", res.Plan.GapConceptID)
	}

	events, err := st.Remediation().ListByLearner(ctx, "alice")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 persisted event, got %d", len(events))
	}
}

func TestCorrectConfidentAnswerNoRemediation(t *testing.T) {
	loop, _ := openLoop(t)

	conf := 0.95
	res, err := loop.Submit(context.Background(), "alice", Answer{
		AtomID: "cr-1", Correct: true, Confidence: &conf,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Plan != nil {
		t.Fatal("confident correct answer must not trigger remediation")
	}
}

func TestNextAtomsConsumesDueReviewFirst(t *testing.T) {
	loop, st := openLoop(t)
	ctx := context.Background()

	// Make pr-1 due for review; cr-1 stays new material.
	if err := st.Signals().Schedule(ctx, "alice", "pr-1", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	got, err := loop.NextAtoms(ctx, "alice", NextOptions{Count: 2, IncludeReview: true})
	if err != nil {
		t.Fatalf("next atoms: %v", err)
	}
	if len(got) == 0 || got[0] != "pr-1" {
		t.Fatalf("due review should lead the batch, got %v", got)
	}
}

func TestNextAtomsServesNewContent(t *testing.T) {
	loop, _ := openLoop(t)
	ctx := context.Background()

	// A fresh learner gets the ungated atom; the gated one waits on its
	// prerequisite's atoms.
	got, err := loop.NextAtoms(ctx, "alice", NextOptions{Count: 5})
	if err != nil {
		t.Fatalf("next atoms: %v", err)
	}
	if !containsAtom(got, "pr-1") {
		t.Fatalf("fresh learner should be served pr-1, got %v", got)
	}
	if containsAtom(got, "cr-1") {
		t.Fatalf("cr-1 gated on pr-1 must not be served yet, got %v", got)
	}

	for i := 0; i < 3; i++ {
		if _, err := loop.Submit(ctx, "alice", Answer{AtomID: "pr-1", Correct: true}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	got, err = loop.NextAtoms(ctx, "alice", NextOptions{Count: 5})
	if err != nil {
		t.Fatalf("next atoms: %v", err)
	}
	if !containsAtom(got, "cr-1") {
		t.Fatalf("mastering pr-1 should open up cr-1, got %v", got)
	}
}

func containsAtom(ids []content.AtomID, want content.AtomID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestAbstainRunsDialogueAndFeedsGapsBack(t *testing.T) {
	loop, st := openLoop(t)
	ctx := context.Background()

	s, opening, err := loop.Abstain(ctx, "alice", "cr-1")
	if err != nil {
		t.Fatalf("abstain: %v", err)
	}
	if opening == "" {
		t.Fatal("expected an opening prompt")
	}

	// The learner names the prerequisite, then gives up.
	if _, _, err := s.Advance(ctx, socratic.Input{Text: "i never learned the power rule", LatencyMs: 8000}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, _, err := s.Advance(ctx, socratic.Input{Abstain: true}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	events, err := loop.CloseDialogue(ctx, s)
	if err != nil {
		t.Fatalf("close dialogue: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one dialogue-gap event, got %d", len(events))
	}
	if events[0].GapConceptID != "power-rule" {
		t.Fatalf("gap concept = %s", events[0].GapConceptID)
	}

	recs, err := st.Dialogues().ListDialogues(ctx, "alice")
	if err != nil {
		t.Fatalf("list dialogues: %v", err)
	}
	if len(recs) != 1 || recs[0].Resolution != socratic.ResolutionGaveUp {
		t.Fatalf("dialogue not persisted as gave up: %+v", recs)
	}
}

func TestLearnerLocks(t *testing.T) {
	locks := NewLearnerLocks()
	locks.Lock("alice")
	done := make(chan struct{})
	go func() {
		locks.Lock("alice")
		locks.Unlock("alice")
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock acquired while first held")
	case <-time.After(10 * time.Millisecond):
	}
	locks.Unlock("alice")
	<-done

	// Different learners do not contend.
	locks.Lock("bob")
	locks.Unlock("bob")
}
