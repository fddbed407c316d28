package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/sequencer"
)

// Attempt is one recorded graded attempt.
type Attempt struct {
	LearnerID   string
	AtomID      content.AtomID
	ConceptID   content.ConceptID
	Correct     bool
	HintUsed    bool
	LatencyMs   int64
	AttemptedAt time.Time
}

// AttemptRepo is the append-only attempt history. The sequencer's
// recent-outcome rules read from here.
type AttemptRepo struct {
	db *sql.DB
}

// Insert appends an attempt.
func (r *AttemptRepo) Insert(ctx context.Context, a Attempt) error {
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (learner_id, atom_id, concept_id, correct, hint_used, latency_ms, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.LearnerID, string(a.AtomID), string(a.ConceptID),
		a.Correct, a.HintUsed, a.LatencyMs, a.AttemptedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// RecentOutcomes returns the learner's last n attempts across all atoms,
// oldest first, in the shape the sequencer consumes.
func (r *AttemptRepo) RecentOutcomes(ctx context.Context, learnerID string, n int) ([]sequencer.Outcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT atom_id, correct, hint_used FROM attempts
		WHERE learner_id = ?
		ORDER BY id DESC LIMIT ?`, learnerID, n)
	if err != nil {
		return nil, fmt.Errorf("recent outcomes: %w", err)
	}
	defer rows.Close()

	var newestFirst []sequencer.Outcome
	for rows.Next() {
		var o sequencer.Outcome
		var atomID string
		if err := rows.Scan(&atomID, &o.Correct, &o.HintUsed); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.AtomID = content.AtomID(atomID)
		newestFirst = append(newestFirst, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]sequencer.Outcome, len(newestFirst))
	for i, o := range newestFirst {
		out[len(out)-1-i] = o
	}
	return out, nil
}

// AtomOutcomes returns attempts on one atom, oldest first, bounded by n.
func (r *AttemptRepo) AtomOutcomes(ctx context.Context, learnerID string, atomID content.AtomID, n int) ([]sequencer.Outcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT atom_id, correct, hint_used FROM attempts
		WHERE learner_id = ? AND atom_id = ?
		ORDER BY id DESC LIMIT ?`, learnerID, string(atomID), n)
	if err != nil {
		return nil, fmt.Errorf("atom outcomes: %w", err)
	}
	defer rows.Close()

	var newestFirst []sequencer.Outcome
	for rows.Next() {
		var o sequencer.Outcome
		var id string
		if err := rows.Scan(&id, &o.Correct, &o.HintUsed); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.AtomID = content.AtomID(id)
		newestFirst = append(newestFirst, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]sequencer.Outcome, len(newestFirst))
	for i, o := range newestFirst {
		out[len(out)-1-i] = o
	}
	return out, nil
}

// MarkMastered records atom mastery. Idempotent.
func (r *AttemptRepo) MarkMastered(ctx context.Context, learnerID string, atomID content.AtomID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO atom_progress (learner_id, atom_id, mastered, mastered_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (learner_id, atom_id) DO UPDATE SET
			mastered = 1,
			mastered_at = COALESCE(atom_progress.mastered_at, excluded.mastered_at)`,
		learnerID, string(atomID), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark mastered %s: %w", atomID, err)
	}
	return nil
}

// MasteredAtoms returns the learner's mastered atom set.
func (r *AttemptRepo) MasteredAtoms(ctx context.Context, learnerID string) (map[content.AtomID]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT atom_id FROM atom_progress WHERE learner_id = ? AND mastered = 1`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("mastered atoms: %w", err)
	}
	defer rows.Close()

	out := make(map[content.AtomID]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan atom id: %w", err)
		}
		out[content.AtomID(id)] = true
	}
	return out, rows.Err()
}
