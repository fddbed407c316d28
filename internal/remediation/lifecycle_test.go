package remediation

import (
	"context"
	"sync"
	"testing"
)

// memEventRepo is an in-memory EventRepo for tests.
type memEventRepo struct {
	mu     sync.Mutex
	events map[string]*Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[string]*Event)}
}

func (m *memEventRepo) Insert(_ context.Context, ev *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *memEventRepo) Get(_ context.Context, id string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.events[id]; ok {
		cp := *ev
		return &cp, nil
	}
	return nil, nil
}

func (m *memEventRepo) Finalize(_ context.Context, ev *Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[ev.ID]
	if !ok || cur.Status != StatusTriggered {
		return false, nil
	}
	cp := *ev
	m.events[ev.ID] = &cp
	return true, nil
}

func (m *memEventRepo) ListByLearner(_ context.Context, learnerID string) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Event
	for _, ev := range m.events {
		if ev.LearnerID == learnerID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func planFor(t *testing.T, r *Router) *Plan {
	t.Helper()
	plan, err := r.CheckRemediationNeeded(context.Background(), "bob", "c-atom", false, nil)
	if err != nil || plan == nil {
		t.Fatalf("plan=%v err=%v", plan, err)
	}
	return plan
}

func TestTrigger_SnapshotIdempotent(t *testing.T) {
	r, _ := testRouter()
	plan := planFor(t, r)

	ev1, err := r.Trigger(context.Background(), "bob", plan)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	ev2, err := r.Trigger(context.Background(), "bob", plan)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	if ev1.MasteryAtTrigger != ev2.MasteryAtTrigger {
		t.Errorf("mastery at trigger differs: %v vs %v", ev1.MasteryAtTrigger, ev2.MasteryAtTrigger)
	}
	if ev1.ID == ev2.ID {
		t.Error("each trigger must create a distinct event")
	}
	if ev1.Status != StatusTriggered {
		t.Errorf("Status = %v, want triggered", ev1.Status)
	}
	if ev1.MasteryGap < 0.149 || ev1.MasteryGap > 0.151 {
		t.Errorf("MasteryGap = %v, want 0.15", ev1.MasteryGap)
	}
}

func TestComplete_RecordsImprovement(t *testing.T) {
	r, signals := testRouter()
	plan := planFor(t, r)

	ev, err := r.Trigger(context.Background(), "bob", plan)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	// The learner studies; P's mastery rises past the target.
	signals.accuracy["P"] = 0.8

	done, err := r.Complete(context.Background(), ev.ID, 3, 2)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("Status = %v, want completed", done.Status)
	}
	if done.AtomsCompleted != 3 || done.AtomsCorrect != 2 {
		t.Errorf("counts = %d/%d, want 3/2", done.AtomsCompleted, done.AtomsCorrect)
	}
	if done.PostRemediationMastery < 0.799 || done.PostRemediationMastery > 0.801 {
		t.Errorf("PostRemediationMastery = %v, want 0.8", done.PostRemediationMastery)
	}
	if done.MasteryImprovement < 0.299 || done.MasteryImprovement > 0.301 {
		t.Errorf("MasteryImprovement = %v, want 0.3", done.MasteryImprovement)
	}
	if !done.Successful {
		t.Error("0.8 >= 0.65 should mark the remediation successful")
	}
	if done.ResolvedAt == nil {
		t.Error("ResolvedAt not set")
	}
}

func TestComplete_DoubleCompletionIsNoOp(t *testing.T) {
	r, signals := testRouter()
	plan := planFor(t, r)

	ev, err := r.Trigger(context.Background(), "bob", plan)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	signals.accuracy["P"] = 0.8
	first, err := r.Complete(context.Background(), ev.ID, 3, 3)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// Mastery shifts again; a duplicate completion must not re-resolve.
	signals.accuracy["P"] = 0.1
	second, err := r.Complete(context.Background(), ev.ID, 9, 0)
	if err != nil {
		t.Fatalf("duplicate Complete returned error: %v", err)
	}
	if second.Status != StatusCompleted {
		t.Errorf("Status = %v, want completed", second.Status)
	}
	if second.AtomsCompleted != first.AtomsCompleted {
		t.Errorf("duplicate completion mutated the event: %+v", second)
	}
	if second.PostRemediationMastery != first.PostRemediationMastery {
		t.Errorf("duplicate completion recomputed mastery: %v", second.PostRemediationMastery)
	}
}

func TestSkip_ClosesWithoutRecompute(t *testing.T) {
	r, _ := testRouter()
	plan := planFor(t, r)

	ev, err := r.Trigger(context.Background(), "bob", plan)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	skipped, err := r.Skip(context.Background(), ev.ID, "learner declined")
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if skipped.Status != StatusSkipped || skipped.SkipReason != "learner declined" {
		t.Errorf("skipped = %+v", skipped)
	}
	if skipped.PostRemediationMastery != 0 {
		t.Error("skip must not recompute mastery")
	}

	// Completion after skip is a no-op.
	after, err := r.Complete(context.Background(), ev.ID, 1, 1)
	if err != nil {
		t.Fatalf("Complete after skip: %v", err)
	}
	if after.Status != StatusSkipped {
		t.Errorf("Status = %v, want skipped preserved", after.Status)
	}
}
