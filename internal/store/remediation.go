package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/remediation"
)

// RemediationRepo is the durable remediation event log. It implements
// remediation.EventRepo.
type RemediationRepo struct {
	db *sql.DB
}

// Insert writes a newly triggered event.
func (r *RemediationRepo) Insert(ctx context.Context, ev *remediation.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO remediation_events
			(id, learner_id, gap_concept_id, trigger_type, trigger_atom_id, status,
			 mastery_at_trigger, required_mastery, mastery_gap, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.LearnerID, string(ev.GapConceptID), string(ev.Trigger),
		string(ev.TriggerAtomID), string(ev.Status),
		ev.MasteryAtTrigger, ev.RequiredMastery, ev.MasteryGap, ev.TriggeredAt)
	if err != nil {
		return fmt.Errorf("insert remediation event %s: %w", ev.ID, err)
	}
	return nil
}

// Get reads one event, (nil, nil) when unknown.
func (r *RemediationRepo) Get(ctx context.Context, id string) (*remediation.Event, error) {
	row := r.db.QueryRowContext(ctx, selectEvent+` WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get remediation event %s: %w", id, err)
	}
	return ev, nil
}

// Finalize writes the terminal fields of a completed or skipped event.
// The guard on status makes it single-writer: it reports false when the
// event was already terminal, and the row is left untouched.
func (r *RemediationRepo) Finalize(ctx context.Context, ev *remediation.Event) (bool, error) {
	var resolvedAt any
	if ev.ResolvedAt != nil {
		resolvedAt = ev.ResolvedAt.UTC()
	} else {
		resolvedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE remediation_events SET
			status = ?, atoms_completed = ?, atoms_correct = ?,
			post_mastery = ?, improvement = ?, successful = ?,
			skip_reason = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		string(ev.Status), ev.AtomsCompleted, ev.AtomsCorrect,
		ev.PostRemediationMastery, ev.MasteryImprovement, ev.Successful,
		ev.SkipReason, resolvedAt,
		ev.ID, string(remediation.StatusTriggered))
	if err != nil {
		return false, fmt.Errorf("finalize remediation event %s: %w", ev.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByLearner returns the learner's events, most recent first.
func (r *RemediationRepo) ListByLearner(ctx context.Context, learnerID string) ([]*remediation.Event, error) {
	rows, err := r.db.QueryContext(ctx, selectEvent+`
		WHERE learner_id = ? ORDER BY triggered_at DESC, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list remediation events: %w", err)
	}
	defer rows.Close()

	var events []*remediation.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan remediation event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

const selectEvent = `
	SELECT id, learner_id, gap_concept_id, trigger_type, trigger_atom_id, status,
	       mastery_at_trigger, required_mastery, mastery_gap,
	       atoms_completed, atoms_correct, post_mastery, improvement, successful,
	       skip_reason, triggered_at, resolved_at
	FROM remediation_events`

func scanEvent(row rowScanner) (*remediation.Event, error) {
	var ev remediation.Event
	var gapConcept, trigger, triggerAtom, status string
	var resolvedAt sql.NullTime
	err := row.Scan(&ev.ID, &ev.LearnerID, &gapConcept, &trigger, &triggerAtom, &status,
		&ev.MasteryAtTrigger, &ev.RequiredMastery, &ev.MasteryGap,
		&ev.AtomsCompleted, &ev.AtomsCorrect, &ev.PostRemediationMastery,
		&ev.MasteryImprovement, &ev.Successful,
		&ev.SkipReason, &ev.TriggeredAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	ev.GapConceptID = content.ConceptID(gapConcept)
	ev.Trigger = remediation.TriggerType(trigger)
	ev.TriggerAtomID = content.AtomID(triggerAtom)
	ev.Status = remediation.EventStatus(status)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		ev.ResolvedAt = &t
	}
	return &ev, nil
}
