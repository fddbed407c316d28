package mastery

import (
	"context"
	"sort"
	"testing"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// stubSignals is an in-memory SignalSource keyed by concept id.
type stubSignals struct {
	byConcept map[content.ConceptID]*content.ConceptSignals
}

func (s *stubSignals) Signals(_ context.Context, learnerID string, conceptID content.ConceptID) (*content.ConceptSignals, error) {
	if sig, ok := s.byConcept[conceptID]; ok {
		return sig, nil
	}
	return &content.ConceptSignals{LearnerID: learnerID, ConceptID: conceptID}, nil
}

func (s *stubSignals) ConceptsWithSignals(_ context.Context, _ string) ([]content.ConceptID, error) {
	var ids []content.ConceptID
	for id := range s.byConcept {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func emptyGraph() prereq.Graph {
	return prereq.Build(nil, nil)
}

func TestComputeConceptMastery_CombinesWeighted(t *testing.T) {
	signals := &stubSignals{byConcept: map[content.ConceptID]*content.ConceptSignals{
		"fractions": {
			ReviewStability: 0.8,
			ReviewCount:     10,
			QuizAccuracy:    0.5,
			QuizCount:       4,
		},
	}}
	calc := NewCalculator(signals, emptyGraph(), DefaultConfig())

	cm, err := calc.ComputeConceptMastery(context.Background(), "bob", "fractions")
	if err != nil {
		t.Fatalf("ComputeConceptMastery: %v", err)
	}

	// 0.6*0.8 + 0.4*0.5 = 0.68
	if cm.CombinedMastery < 0.679 || cm.CombinedMastery > 0.681 {
		t.Errorf("CombinedMastery = %v, want 0.68", cm.CombinedMastery)
	}
	if cm.Level != LevelDeveloping {
		t.Errorf("Level = %v, want developing", cm.Level)
	}
}

func TestComputeConceptMastery_RenormalizesSingleSource(t *testing.T) {
	signals := &stubSignals{byConcept: map[content.ConceptID]*content.ConceptSignals{
		"quiz-only": {QuizAccuracy: 0.9, QuizCount: 5},
	}}
	calc := NewCalculator(signals, emptyGraph(), DefaultConfig())

	cm, err := calc.ComputeConceptMastery(context.Background(), "bob", "quiz-only")
	if err != nil {
		t.Fatalf("ComputeConceptMastery: %v", err)
	}
	if cm.CombinedMastery < 0.899 || cm.CombinedMastery > 0.901 {
		t.Errorf("CombinedMastery = %v, want 0.9 (quiz weight renormalized)", cm.CombinedMastery)
	}
}

func TestComputeConceptMastery_NoSignals(t *testing.T) {
	calc := NewCalculator(&stubSignals{byConcept: map[content.ConceptID]*content.ConceptSignals{}}, emptyGraph(), DefaultConfig())

	cm, err := calc.ComputeConceptMastery(context.Background(), "bob", "untouched")
	if err != nil {
		t.Fatalf("ComputeConceptMastery: %v", err)
	}
	if cm.CombinedMastery != 0 || cm.Level != LevelNovice {
		t.Errorf("empty signals: combined=%v level=%v, want 0/novice", cm.CombinedMastery, cm.Level)
	}
	if !cm.IsUnlocked {
		t.Error("concept with no prerequisites should be unlocked")
	}
}

func TestComputeConceptMastery_LapsePenalty(t *testing.T) {
	signals := &stubSignals{byConcept: map[content.ConceptID]*content.ConceptSignals{
		"lapsed": {ReviewStability: 1.0, ReviewLapses: 4, ReviewCount: 20},
	}}
	calc := NewCalculator(signals, emptyGraph(), DefaultConfig())

	cm, err := calc.ComputeConceptMastery(context.Background(), "bob", "lapsed")
	if err != nil {
		t.Fatalf("ComputeConceptMastery: %v", err)
	}
	// 1.0 * (1 - 4*0.05) = 0.8
	if cm.ReviewMastery < 0.799 || cm.ReviewMastery > 0.801 {
		t.Errorf("ReviewMastery = %v, want 0.8", cm.ReviewMastery)
	}
}

func TestIsUnlocked_HardGate(t *testing.T) {
	concepts := []content.Concept{{ID: "algebra"}, {ID: "arithmetic"}}
	prereqs := []content.Prerequisite{
		{SourceConceptID: "algebra", TargetConceptID: "arithmetic", Threshold: 0.7, Gating: content.GatingHard},
	}
	graph := prereq.Build(concepts, prereqs)

	signals := &stubSignals{byConcept: map[content.ConceptID]*content.ConceptSignals{
		"arithmetic": {QuizAccuracy: 0.5, QuizCount: 6},
	}}
	calc := NewCalculator(signals, graph, DefaultConfig())

	cm, err := calc.ComputeConceptMastery(context.Background(), "bob", "algebra")
	if err != nil {
		t.Fatalf("ComputeConceptMastery: %v", err)
	}
	if cm.IsUnlocked {
		t.Error("algebra should be locked: hard prerequisite at 0.5 against 0.7")
	}

	// Soft gates never block.
	soft := prereq.Build(concepts, []content.Prerequisite{
		{SourceConceptID: "algebra", TargetConceptID: "arithmetic", Threshold: 0.7, Gating: content.GatingSoft},
	})
	calc = NewCalculator(signals, soft, DefaultConfig())
	cm, err = calc.ComputeConceptMastery(context.Background(), "bob", "algebra")
	if err != nil {
		t.Fatalf("ComputeConceptMastery: %v", err)
	}
	if !cm.IsUnlocked {
		t.Error("soft-gated prerequisite must not block unlocking")
	}
}

func TestMasterySummary(t *testing.T) {
	signals := &stubSignals{byConcept: map[content.ConceptID]*content.ConceptSignals{
		"a": {QuizAccuracy: 1.0, QuizCount: 5},
		"b": {QuizAccuracy: 0.2, QuizCount: 5},
	}}
	calc := NewCalculator(signals, emptyGraph(), DefaultConfig())

	sum, err := calc.MasterySummary(context.Background(), "bob")
	if err != nil {
		t.Fatalf("MasterySummary: %v", err)
	}
	if sum.Total != 2 {
		t.Errorf("Total = %d, want 2", sum.Total)
	}
	if sum.AverageMastery < 0.599 || sum.AverageMastery > 0.601 {
		t.Errorf("AverageMastery = %v, want 0.6", sum.AverageMastery)
	}
	if sum.ByLevel[LevelMastered] != 1 || sum.ByLevel[LevelNovice] != 1 {
		t.Errorf("ByLevel = %v, want one mastered and one novice", sum.ByLevel)
	}
}

// seedRecorder records seeding calls and simulates native-activity skips.
type seedRecorder struct {
	native map[content.ConceptID]bool
	seeded []content.ConceptSignals
}

func (r *seedRecorder) SeedReviewSignals(_ context.Context, sig content.ConceptSignals) (bool, error) {
	if r.native[sig.ConceptID] {
		return false, nil
	}
	r.seeded = append(r.seeded, sig)
	return true, nil
}

type stubAnki struct {
	stats []AnkiConceptStats
}

func (s *stubAnki) ConceptStats(_ context.Context, _, _ string) ([]AnkiConceptStats, error) {
	return s.stats, nil
}

func TestInitializeFromAnki_SkipsNativeActivity(t *testing.T) {
	calc := NewCalculator(&stubSignals{}, emptyGraph(), DefaultConfig())
	src := &stubAnki{stats: []AnkiConceptStats{
		{ConceptID: "native", Stability: 0.9, Reviews: 12},
		{ConceptID: "fresh", Stability: 0.7, Reviews: 8},
		{ConceptID: "empty", Stability: 0.5, Reviews: 0},
	}}
	seeder := &seedRecorder{native: map[content.ConceptID]bool{"native": true}}

	n, err := calc.InitializeFromAnki(context.Background(), src, seeder, "bob", "track-1")
	if err != nil {
		t.Fatalf("InitializeFromAnki: %v", err)
	}
	if n != 1 {
		t.Errorf("seeded = %d, want 1 (native skipped, zero-review skipped)", n)
	}
	if len(seeder.seeded) != 1 || seeder.seeded[0].ConceptID != "fresh" {
		t.Errorf("seeded concepts = %v, want only fresh", seeder.seeded)
	}
}
