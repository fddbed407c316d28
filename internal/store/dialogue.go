package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/socratic"
)

// DialogueRepo persists resolved dialogue sessions with their full
// transcripts. It implements socratic.SessionRepo.
type DialogueRepo struct {
	db *sql.DB
}

// InsertDialogue writes the session summary and every turn in one
// transaction, so a transcript is never half-persisted.
func (r *DialogueRepo) InsertDialogue(ctx context.Context, rec *socratic.Record) error {
	gaps, err := json.Marshal(rec.DetectedGaps)
	if err != nil {
		return fmt.Errorf("marshal detected gaps: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert dialogue: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO socratic_sessions
			(id, learner_id, atom_id, concept_id, scaffold_level, resolution, detected_gaps, started_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LearnerID, string(rec.AtomID), string(rec.ConceptID),
		int(rec.ScaffoldLevel), string(rec.Resolution), string(gaps),
		rec.StartedAt.UTC(), rec.ResolvedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert dialogue %s: %w", rec.ID, err)
	}

	for i, turn := range rec.Turns {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO socratic_turns (session_id, position, role, content, latency_ms, signal)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, i, string(turn.Role), turn.Content, turn.LatencyMs, string(turn.Signal))
		if err != nil {
			return fmt.Errorf("insert dialogue turn %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetDialogue reads one session with its transcript, (nil, nil) when
// unknown.
func (r *DialogueRepo) GetDialogue(ctx context.Context, id string) (*socratic.Record, error) {
	rec := &socratic.Record{ID: id}
	var atomID, conceptID, resolution, gaps string
	var level int
	err := r.db.QueryRowContext(ctx, `
		SELECT learner_id, atom_id, concept_id, scaffold_level, resolution, detected_gaps, started_at, resolved_at
		FROM socratic_sessions WHERE id = ?`, id).Scan(
		&rec.LearnerID, &atomID, &conceptID, &level, &resolution, &gaps,
		&rec.StartedAt, &rec.ResolvedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dialogue %s: %w", id, err)
	}
	rec.AtomID = content.AtomID(atomID)
	rec.ConceptID = content.ConceptID(conceptID)
	rec.ScaffoldLevel = socratic.ScaffoldLevel(level)
	rec.Resolution = socratic.Resolution(resolution)
	if err := json.Unmarshal([]byte(gaps), &rec.DetectedGaps); err != nil {
		return nil, fmt.Errorf("unmarshal detected gaps: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT role, content, latency_ms, signal FROM socratic_turns
		WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load dialogue turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t socratic.Turn
		var role, signal string
		if err := rows.Scan(&role, &t.Content, &t.LatencyMs, &signal); err != nil {
			return nil, fmt.Errorf("scan dialogue turn: %w", err)
		}
		t.Role = socratic.Role(role)
		t.Signal = socratic.CognitiveSignal(signal)
		rec.Turns = append(rec.Turns, t)
	}
	return rec, rows.Err()
}

// ListDialogues returns session summaries for a learner, newest first,
// without transcripts.
func (r *DialogueRepo) ListDialogues(ctx context.Context, learnerID string) ([]*socratic.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, learner_id, atom_id, concept_id, scaffold_level, resolution, detected_gaps, started_at, resolved_at
		FROM socratic_sessions WHERE learner_id = ?
		ORDER BY started_at DESC, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list dialogues: %w", err)
	}
	defer rows.Close()

	var out []*socratic.Record
	for rows.Next() {
		rec := &socratic.Record{}
		var atomID, conceptID, resolution, gaps string
		var level int
		if err := rows.Scan(&rec.ID, &rec.LearnerID, &atomID, &conceptID, &level,
			&resolution, &gaps, &rec.StartedAt, &rec.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan dialogue: %w", err)
		}
		rec.AtomID = content.AtomID(atomID)
		rec.ConceptID = content.ConceptID(conceptID)
		rec.ScaffoldLevel = socratic.ScaffoldLevel(level)
		rec.Resolution = socratic.Resolution(resolution)
		if err := json.Unmarshal([]byte(gaps), &rec.DetectedGaps); err != nil {
			return nil, fmt.Errorf("unmarshal detected gaps: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
