package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// CatalogRepo reads and writes authored content. It implements
// content.AtomCatalog for the engine.
type CatalogRepo struct {
	db *sql.DB
}

// Get returns the atom, or (nil, nil) when the id is unknown.
func (r *CatalogRepo) Get(ctx context.Context, id content.AtomID) (*content.Atom, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, atom_type, concept_id, knowledge_type, quality_score, prompt, payload
		FROM atoms WHERE id = ?`, string(id))
	atom, err := scanAtom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get atom %s: %w", id, err)
	}
	return atom, nil
}

// ListByConcept returns all atom ids for a concept, stable by id.
func (r *CatalogRepo) ListByConcept(ctx context.Context, conceptID content.ConceptID) ([]content.AtomID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM atoms WHERE concept_id = ? ORDER BY id`, string(conceptID))
	if err != nil {
		return nil, fmt.Errorf("list atoms for %s: %w", conceptID, err)
	}
	defer rows.Close()
	return scanAtomIDs(rows)
}

// ListDue returns atoms due for review, oldest due first.
func (r *CatalogRepo) ListDue(ctx context.Context, learnerID string) ([]content.AtomID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT atom_id FROM review_state
		WHERE learner_id = ? AND due_at <= ?
		ORDER BY due_at`, learnerID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list due reviews: %w", err)
	}
	defer rows.Close()
	return scanAtomIDs(rows)
}

// UpsertConcept writes a concept node.
func (r *CatalogRepo) UpsertConcept(ctx context.Context, c content.Concept) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO concepts (id, name, cluster_id) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, cluster_id = excluded.cluster_id`,
		string(c.ID), c.Name, c.ClusterID)
	if err != nil {
		return fmt.Errorf("upsert concept %s: %w", c.ID, err)
	}
	return nil
}

// UpsertPrerequisite writes one prerequisite edge.
func (r *CatalogRepo) UpsertPrerequisite(ctx context.Context, p content.Prerequisite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prerequisites (source_concept_id, target_concept_id, threshold, gating, mastery_type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source_concept_id, target_concept_id) DO UPDATE SET
			threshold = excluded.threshold,
			gating = excluded.gating,
			mastery_type = excluded.mastery_type`,
		string(p.SourceConceptID), string(p.TargetConceptID),
		p.Threshold, string(p.Gating), string(p.MasteryType))
	if err != nil {
		return fmt.Errorf("upsert prerequisite %s->%s: %w", p.SourceConceptID, p.TargetConceptID, err)
	}
	return nil
}

// UpsertAtom writes an atom, payload serialized by type.
func (r *CatalogRepo) UpsertAtom(ctx context.Context, a content.Atom) error {
	payload, err := content.MarshalPayload(a.Payload)
	if err != nil {
		return fmt.Errorf("upsert atom %s: %w", a.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO atoms (id, atom_type, concept_id, knowledge_type, quality_score, prompt, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			atom_type = excluded.atom_type,
			concept_id = excluded.concept_id,
			knowledge_type = excluded.knowledge_type,
			quality_score = excluded.quality_score,
			prompt = excluded.prompt,
			payload = excluded.payload`,
		string(a.ID), string(a.Type), string(a.ConceptID), string(a.KnowledgeType),
		a.QualityScore, a.Prompt, string(payload))
	if err != nil {
		return fmt.Errorf("upsert atom %s: %w", a.ID, err)
	}
	return nil
}

// LoadGraph reads the full concept graph into memory. The graph is small
// enough that the engine holds it whole for a session.
func (r *CatalogRepo) LoadGraph(ctx context.Context) (*prereq.MemoryGraph, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, cluster_id FROM concepts`)
	if err != nil {
		return nil, fmt.Errorf("load concepts: %w", err)
	}
	defer rows.Close()

	var concepts []content.Concept
	for rows.Next() {
		var c content.Concept
		var id string
		if err := rows.Scan(&id, &c.Name, &c.ClusterID); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		c.ID = content.ConceptID(id)
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := r.db.QueryContext(ctx, `
		SELECT source_concept_id, target_concept_id, threshold, gating, mastery_type
		FROM prerequisites`)
	if err != nil {
		return nil, fmt.Errorf("load prerequisites: %w", err)
	}
	defer edgeRows.Close()

	var edges []content.Prerequisite
	for edgeRows.Next() {
		var p content.Prerequisite
		var src, tgt, gating, mt string
		if err := edgeRows.Scan(&src, &tgt, &p.Threshold, &gating, &mt); err != nil {
			return nil, fmt.Errorf("scan prerequisite: %w", err)
		}
		p.SourceConceptID = content.ConceptID(src)
		p.TargetConceptID = content.ConceptID(tgt)
		p.Gating = content.GatingType(gating)
		p.MasteryType = content.MasteryType(mt)
		edges = append(edges, p)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return prereq.Build(concepts, edges), nil
}

// AtomPrerequisites maps each concept to the atom ids of its direct
// prerequisite concepts, the shape the sequencer's gating step consumes.
// A concept with no prerequisite edges is absent from the map and is
// never gated.
func (r *CatalogRepo) AtomPrerequisites(ctx context.Context, conceptIDs []content.ConceptID) (map[content.ConceptID][]content.AtomID, error) {
	out := make(map[content.ConceptID][]content.AtomID, len(conceptIDs))
	for _, id := range conceptIDs {
		rows, err := r.db.QueryContext(ctx, `
			SELECT a.id FROM atoms a
			JOIN prerequisites p ON p.target_concept_id = a.concept_id
			WHERE p.source_concept_id = ?
			ORDER BY a.concept_id, a.id`, string(id))
		if err != nil {
			return nil, fmt.Errorf("atom prerequisites for %s: %w", id, err)
		}
		atoms, err := scanAtomIDs(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(atoms) > 0 {
			out[id] = atoms
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAtom(row rowScanner) (*content.Atom, error) {
	var a content.Atom
	var id, atomType, conceptID, knowledge, payload string
	if err := row.Scan(&id, &atomType, &conceptID, &knowledge, &a.QualityScore, &a.Prompt, &payload); err != nil {
		return nil, err
	}
	a.ID = content.AtomID(id)
	a.Type = content.AtomType(atomType)
	a.ConceptID = content.ConceptID(conceptID)
	a.KnowledgeType = content.KnowledgeType(knowledge)

	p, err := content.UnmarshalPayload(a.Type, []byte(payload))
	if err != nil {
		return nil, err
	}
	a.Payload = p
	return &a, nil
}

func scanAtomIDs(rows *sql.Rows) ([]content.AtomID, error) {
	var ids []content.AtomID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan atom id: %w", err)
		}
		ids = append(ids, content.AtomID(id))
	}
	return ids, rows.Err()
}
