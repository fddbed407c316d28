package remediation

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// EventRepo persists remediation events. Finalize must be single-writer
// per event id: it reports false when the event was already terminal.
type EventRepo interface {
	Insert(ctx context.Context, ev *Event) error
	Get(ctx context.Context, id string) (*Event, error)
	Finalize(ctx context.Context, ev *Event) (bool, error)
	ListByLearner(ctx context.Context, learnerID string) ([]*Event, error)
}

// Trigger opens a durable remediation event from a plan, snapshotting
// mastery at trigger time. Triggering twice with no intervening activity
// snapshots the same mastery, since mastery is a derived view.
// A persistence failure degrades to an in-memory event with a warning
// rather than aborting the session.
func (r *Router) Trigger(ctx context.Context, learnerID string, plan *Plan) (*Event, error) {
	cm, err := r.calc.ComputeConceptMastery(ctx, learnerID, plan.GapConceptID)
	if err != nil {
		return nil, err
	}

	ev := &Event{
		ID:               uuid.NewString(),
		LearnerID:        learnerID,
		GapConceptID:     plan.GapConceptID,
		Trigger:          plan.Trigger,
		TriggerAtomID:    plan.TriggerAtomID,
		Status:           StatusTriggered,
		MasteryAtTrigger: cm.CombinedMastery,
		RequiredMastery:  plan.MasteryTarget,
		MasteryGap:       plan.MasteryTarget - cm.CombinedMastery,
		TriggeredAt:      time.Now().UTC(),
	}

	if r.events != nil {
		if err := r.events.Insert(ctx, ev); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to persist remediation event: %v\n", err)
		}
	}
	return ev, nil
}

// Complete closes a triggered event: recomputes mastery, records the
// outcome counts and whether the required mastery was reached. A second
// completion or skip of the same event is a logged no-op, never an error,
// to tolerate at-least-once delivery from callers.
func (r *Router) Complete(ctx context.Context, eventID string, atomsCompleted, atomsCorrect int) (*Event, error) {
	ev, err := r.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusTriggered {
		fmt.Fprintf(os.Stderr, "warning: remediation event %s already %s, ignoring completion\n", eventID, ev.Status)
		return ev, nil
	}

	cm, err := r.calc.ComputeConceptMastery(ctx, ev.LearnerID, ev.GapConceptID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev.Status = StatusCompleted
	ev.AtomsCompleted = atomsCompleted
	ev.AtomsCorrect = atomsCorrect
	ev.PostRemediationMastery = cm.CombinedMastery
	ev.MasteryImprovement = cm.CombinedMastery - ev.MasteryAtTrigger
	ev.Successful = cm.CombinedMastery >= ev.RequiredMastery
	ev.ResolvedAt = &now

	return ev, r.finalize(ctx, ev)
}

// Skip closes a triggered event with a reason and no mastery recompute.
// Double skip follows the same no-op rule as double completion.
func (r *Router) Skip(ctx context.Context, eventID, reason string) (*Event, error) {
	ev, err := r.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusTriggered {
		fmt.Fprintf(os.Stderr, "warning: remediation event %s already %s, ignoring skip\n", eventID, ev.Status)
		return ev, nil
	}

	now := time.Now().UTC()
	ev.Status = StatusSkipped
	ev.SkipReason = reason
	ev.ResolvedAt = &now

	return ev, r.finalize(ctx, ev)
}

func (r *Router) loadEvent(ctx context.Context, eventID string) (*Event, error) {
	if r.events == nil {
		return nil, fmt.Errorf("no event store configured")
	}
	ev, err := r.events.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load remediation event %s: %w", eventID, err)
	}
	if ev == nil {
		return nil, fmt.Errorf("remediation event %s not found", eventID)
	}
	return ev, nil
}

func (r *Router) finalize(ctx context.Context, ev *Event) error {
	ok, err := r.events.Finalize(ctx, ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist remediation outcome: %v\n", err)
		return nil
	}
	if !ok {
		// Lost a race with a concurrent resolution; the stored record wins.
		fmt.Fprintf(os.Stderr, "warning: remediation event %s resolved concurrently\n", ev.ID)
	}
	return nil
}
