package store

import "database/sql"

// schema is the full DDL, applied idempotently at open.
const schema = `
CREATE TABLE IF NOT EXISTS concepts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	cluster_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS prerequisites (
	source_concept_id TEXT NOT NULL,
	target_concept_id TEXT NOT NULL,
	threshold         REAL NOT NULL,
	gating            TEXT NOT NULL,
	mastery_type      TEXT NOT NULL,
	PRIMARY KEY (source_concept_id, target_concept_id)
);

CREATE TABLE IF NOT EXISTS atoms (
	id             TEXT PRIMARY KEY,
	atom_type      TEXT NOT NULL,
	concept_id     TEXT NOT NULL,
	knowledge_type TEXT NOT NULL,
	quality_score  REAL NOT NULL DEFAULT 0,
	prompt         TEXT NOT NULL,
	payload        TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_atoms_concept ON atoms (concept_id);

CREATE TABLE IF NOT EXISTS attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	learner_id  TEXT NOT NULL,
	atom_id     TEXT NOT NULL,
	concept_id  TEXT NOT NULL,
	correct     INTEGER NOT NULL,
	hint_used   INTEGER NOT NULL DEFAULT 0,
	latency_ms  INTEGER NOT NULL DEFAULT 0,
	attempted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_attempts_learner ON attempts (learner_id, attempted_at);
CREATE INDEX IF NOT EXISTS idx_attempts_atom ON attempts (learner_id, atom_id);

CREATE TABLE IF NOT EXISTS atom_progress (
	learner_id TEXT NOT NULL,
	atom_id    TEXT NOT NULL,
	mastered   INTEGER NOT NULL DEFAULT 0,
	mastered_at TIMESTAMP,
	PRIMARY KEY (learner_id, atom_id)
);

CREATE TABLE IF NOT EXISTS review_state (
	learner_id      TEXT NOT NULL,
	atom_id         TEXT NOT NULL,
	due_at          TIMESTAMP NOT NULL,
	interval_days   REAL NOT NULL DEFAULT 0,
	stability       REAL NOT NULL DEFAULT 0,
	lapses          INTEGER NOT NULL DEFAULT 0,
	reps            INTEGER NOT NULL DEFAULT 0,
	last_reviewed_at TIMESTAMP,
	PRIMARY KEY (learner_id, atom_id)
);
CREATE INDEX IF NOT EXISTS idx_review_due ON review_state (learner_id, due_at);

CREATE TABLE IF NOT EXISTS concept_signals (
	learner_id        TEXT NOT NULL,
	concept_id        TEXT NOT NULL,
	review_stability  REAL NOT NULL DEFAULT 0,
	review_difficulty REAL NOT NULL DEFAULT 0,
	review_lapses     INTEGER NOT NULL DEFAULT 0,
	review_count      INTEGER NOT NULL DEFAULT 0,
	quiz_accuracy     REAL NOT NULL DEFAULT 0,
	quiz_count        INTEGER NOT NULL DEFAULT 0,
	declarative       REAL NOT NULL DEFAULT 0,
	declarative_count INTEGER NOT NULL DEFAULT 0,
	procedural        REAL NOT NULL DEFAULT 0,
	procedural_count  INTEGER NOT NULL DEFAULT 0,
	conceptual        REAL NOT NULL DEFAULT 0,
	conceptual_count  INTEGER NOT NULL DEFAULT 0,
	native_activity   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (learner_id, concept_id)
);

CREATE TABLE IF NOT EXISTS remediation_events (
	id                 TEXT PRIMARY KEY,
	learner_id         TEXT NOT NULL,
	gap_concept_id     TEXT NOT NULL,
	trigger_type       TEXT NOT NULL,
	trigger_atom_id    TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	mastery_at_trigger REAL NOT NULL,
	required_mastery   REAL NOT NULL,
	mastery_gap        REAL NOT NULL,
	atoms_completed    INTEGER NOT NULL DEFAULT 0,
	atoms_correct      INTEGER NOT NULL DEFAULT 0,
	post_mastery       REAL NOT NULL DEFAULT 0,
	improvement        REAL NOT NULL DEFAULT 0,
	successful         INTEGER NOT NULL DEFAULT 0,
	skip_reason        TEXT NOT NULL DEFAULT '',
	triggered_at       TIMESTAMP NOT NULL,
	resolved_at        TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_remediation_learner ON remediation_events (learner_id, triggered_at);

CREATE TABLE IF NOT EXISTS socratic_sessions (
	id             TEXT PRIMARY KEY,
	learner_id     TEXT NOT NULL,
	atom_id        TEXT NOT NULL,
	concept_id     TEXT NOT NULL,
	scaffold_level INTEGER NOT NULL,
	resolution     TEXT NOT NULL,
	detected_gaps  TEXT NOT NULL DEFAULT '[]',
	started_at     TIMESTAMP NOT NULL,
	resolved_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_socratic_learner ON socratic_sessions (learner_id, started_at);

CREATE TABLE IF NOT EXISTS socratic_turns (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	position    INTEGER NOT NULL,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	latency_ms  INTEGER NOT NULL DEFAULT 0,
	signal      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON socratic_turns (session_id, position);

CREATE TABLE IF NOT EXISTS llm_requests (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	model         TEXT NOT NULL,
	purpose       TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	success       INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
