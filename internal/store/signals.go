package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tutorkit/tutorkit/internal/content"
)

// SignalRepo maintains the per-(learner, concept) mastery aggregates. It
// implements content.SignalSource for reads and mastery.SignalSeeder for
// imported history.
type SignalRepo struct {
	db *sql.DB
}

// Signals returns the aggregates for one pair. A pair with no history
// returns zero-valued signals, not an error.
func (r *SignalRepo) Signals(ctx context.Context, learnerID string, conceptID content.ConceptID) (*content.ConceptSignals, error) {
	sig := &content.ConceptSignals{LearnerID: learnerID, ConceptID: conceptID}
	var native int
	err := r.db.QueryRowContext(ctx, `
		SELECT review_stability, review_difficulty, review_lapses, review_count,
		       quiz_accuracy, quiz_count, declarative, procedural, conceptual, native_activity
		FROM concept_signals WHERE learner_id = ? AND concept_id = ?`,
		learnerID, string(conceptID)).Scan(
		&sig.ReviewStability, &sig.ReviewDifficulty, &sig.ReviewLapses, &sig.ReviewCount,
		&sig.QuizAccuracy, &sig.QuizCount, &sig.Declarative, &sig.Procedural, &sig.Conceptual,
		&native)
	if err == sql.ErrNoRows {
		return sig, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read signals %s/%s: %w", learnerID, conceptID, err)
	}
	sig.NativeActivity = native != 0
	return sig, nil
}

// ConceptsWithSignals lists every concept the learner has signals for.
func (r *SignalRepo) ConceptsWithSignals(ctx context.Context, learnerID string) ([]content.ConceptID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT concept_id FROM concept_signals WHERE learner_id = ? ORDER BY concept_id`,
		learnerID)
	if err != nil {
		return nil, fmt.Errorf("list signal concepts: %w", err)
	}
	defer rows.Close()

	var ids []content.ConceptID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan concept id: %w", err)
		}
		ids = append(ids, content.ConceptID(id))
	}
	return ids, rows.Err()
}

// SeedReviewSignals writes imported review aggregates. It refuses pairs
// with native activity so an import can never clobber real history, and
// reports whether the row was written.
func (r *SignalRepo) SeedReviewSignals(ctx context.Context, sig content.ConceptSignals) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO concept_signals
			(learner_id, concept_id, review_stability, review_difficulty, review_lapses, review_count, native_activity)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (learner_id, concept_id) DO UPDATE SET
			review_stability = excluded.review_stability,
			review_difficulty = excluded.review_difficulty,
			review_lapses = excluded.review_lapses,
			review_count = excluded.review_count
		WHERE concept_signals.native_activity = 0`,
		sig.LearnerID, string(sig.ConceptID),
		sig.ReviewStability, sig.ReviewDifficulty, sig.ReviewLapses, sig.ReviewCount)
	if err != nil {
		return false, fmt.Errorf("seed signals %s/%s: %w", sig.LearnerID, sig.ConceptID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordQuizOutcome folds one graded attempt into the concept aggregates.
// Knowledge-type accuracy tracks only the attempted atom's type.
func (r *SignalRepo) RecordQuizOutcome(ctx context.Context, learnerID string, conceptID content.ConceptID, knowledge content.KnowledgeType, correct bool) error {
	sig, err := r.Signals(ctx, learnerID, conceptID)
	if err != nil {
		return err
	}

	score := 0.0
	if correct {
		score = 1.0
	}
	sig.QuizAccuracy = foldMean(sig.QuizAccuracy, sig.QuizCount, score)
	sig.QuizCount++

	decl, proc, conc, declN, procN, concN, err := r.knowledgeCounts(ctx, learnerID, conceptID)
	if err != nil {
		return err
	}
	switch knowledge {
	case content.KnowledgeDeclarative:
		decl = foldMean(decl, declN, score)
		declN++
	case content.KnowledgeProcedural:
		proc = foldMean(proc, procN, score)
		procN++
	case content.KnowledgeConceptual:
		conc = foldMean(conc, concN, score)
		concN++
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO concept_signals
			(learner_id, concept_id, quiz_accuracy, quiz_count,
			 declarative, declarative_count, procedural, procedural_count,
			 conceptual, conceptual_count, native_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT (learner_id, concept_id) DO UPDATE SET
			quiz_accuracy = excluded.quiz_accuracy,
			quiz_count = excluded.quiz_count,
			declarative = excluded.declarative,
			declarative_count = excluded.declarative_count,
			procedural = excluded.procedural,
			procedural_count = excluded.procedural_count,
			conceptual = excluded.conceptual,
			conceptual_count = excluded.conceptual_count,
			native_activity = 1`,
		learnerID, string(conceptID), sig.QuizAccuracy, sig.QuizCount,
		decl, declN, proc, procN, conc, concN)
	if err != nil {
		return fmt.Errorf("record quiz outcome %s/%s: %w", learnerID, conceptID, err)
	}
	return nil
}

// RecordReview updates the per-atom review schedule and folds the result
// into the concept aggregates. Scheduling is a deliberately simple
// doubling interval: correct doubles (from one day), incorrect lapses and
// comes due immediately.
func (r *SignalRepo) RecordReview(ctx context.Context, learnerID string, atom *content.Atom, correct bool, now time.Time) error {
	var intervalDays, stability float64
	var lapses, reps int
	err := r.db.QueryRowContext(ctx, `
		SELECT interval_days, stability, lapses, reps FROM review_state
		WHERE learner_id = ? AND atom_id = ?`,
		learnerID, string(atom.ID)).Scan(&intervalDays, &stability, &lapses, &reps)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read review state: %w", err)
	}

	reps++
	if correct {
		if intervalDays < 1 {
			intervalDays = 1
		} else {
			intervalDays *= 2
		}
		stability = foldMean(stability, reps-1, 1.0)
	} else {
		lapses++
		intervalDays = 0
		stability = foldMean(stability, reps-1, 0.0)
	}
	dueAt := now.Add(time.Duration(intervalDays * 24 * float64(time.Hour)))

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO review_state
			(learner_id, atom_id, due_at, interval_days, stability, lapses, reps, last_reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, atom_id) DO UPDATE SET
			due_at = excluded.due_at,
			interval_days = excluded.interval_days,
			stability = excluded.stability,
			lapses = excluded.lapses,
			reps = excluded.reps,
			last_reviewed_at = excluded.last_reviewed_at`,
		learnerID, string(atom.ID), dueAt.UTC(), intervalDays, stability, lapses, reps, now.UTC())
	if err != nil {
		return fmt.Errorf("write review state: %w", err)
	}

	return r.foldConceptReview(ctx, learnerID, atom.ConceptID, correct)
}

// Schedule puts an atom on the review queue with an immediate due time,
// used when new material is first introduced.
func (r *SignalRepo) Schedule(ctx context.Context, learnerID string, atomID content.AtomID, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO review_state (learner_id, atom_id, due_at)
		VALUES (?, ?, ?)
		ON CONFLICT (learner_id, atom_id) DO NOTHING`,
		learnerID, string(atomID), now.UTC())
	if err != nil {
		return fmt.Errorf("schedule review %s: %w", atomID, err)
	}
	return nil
}

func (r *SignalRepo) foldConceptReview(ctx context.Context, learnerID string, conceptID content.ConceptID, correct bool) error {
	sig, err := r.Signals(ctx, learnerID, conceptID)
	if err != nil {
		return err
	}
	score := 0.0
	if correct {
		score = 1.0
	}
	sig.ReviewStability = foldMean(sig.ReviewStability, sig.ReviewCount, score)
	sig.ReviewCount++
	if !correct {
		sig.ReviewLapses++
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO concept_signals
			(learner_id, concept_id, review_stability, review_lapses, review_count, native_activity)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT (learner_id, concept_id) DO UPDATE SET
			review_stability = excluded.review_stability,
			review_lapses = excluded.review_lapses,
			review_count = excluded.review_count,
			native_activity = 1`,
		learnerID, string(conceptID), sig.ReviewStability, sig.ReviewLapses, sig.ReviewCount)
	if err != nil {
		return fmt.Errorf("fold review %s/%s: %w", learnerID, conceptID, err)
	}
	return nil
}

func (r *SignalRepo) knowledgeCounts(ctx context.Context, learnerID string, conceptID content.ConceptID) (decl, proc, conc float64, declN, procN, concN int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT declarative, declarative_count, procedural, procedural_count, conceptual, conceptual_count
		FROM concept_signals WHERE learner_id = ? AND concept_id = ?`,
		learnerID, string(conceptID)).Scan(&decl, &declN, &proc, &procN, &conc, &concN)
	if err == sql.ErrNoRows {
		return 0, 0, 0, 0, 0, 0, nil
	}
	if err != nil {
		err = fmt.Errorf("read knowledge counts: %w", err)
	}
	return
}

// foldMean extends a running mean of n samples with one more value.
func foldMean(mean float64, n int, value float64) float64 {
	return (mean*float64(n) + value) / float64(n+1)
}
