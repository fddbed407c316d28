// Package session is the control loop gluing the engine together: the
// sequencer picks atoms, answers update signals and may trigger
// remediation, and an explicit abstain hands off to a Socratic dialogue.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tutorkit/tutorkit/internal/config"
	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/mastery"
	"github.com/tutorkit/tutorkit/internal/prereq"
	"github.com/tutorkit/tutorkit/internal/remediation"
	"github.com/tutorkit/tutorkit/internal/sequencer"
	"github.com/tutorkit/tutorkit/internal/socratic"
	"github.com/tutorkit/tutorkit/internal/store"
)

// Loop orchestrates one learner's study flow. All calls for the same
// learner are serialized through the lock registry.
type Loop struct {
	cfg       config.Config
	catalog   *store.CatalogRepo
	signals   *store.SignalRepo
	attempts  *store.AttemptRepo
	graph     *prereq.MemoryGraph
	calc      *mastery.Calculator
	seq       *sequencer.Sequencer
	router    *remediation.Router
	dialogues *socratic.Engine
	locks     *LearnerLocks
}

// New wires a loop from the store. classifier may be nil for
// heuristic-only dialogues.
func New(st *store.Store, cfg config.Config, classifier socratic.Classifier) (*Loop, error) {
	graph, err := st.Catalog().LoadGraph(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load concept graph: %w", err)
	}

	calc := mastery.NewCalculator(st.Signals(), graph, cfg.Mastery)
	router := remediation.NewRouter(calc, graph, st.Catalog(), st.Remediation(), cfg.Remediation)
	seq := sequencer.NewSequencer(st.Catalog(), graph, calc, router, cfg.Sequencer)

	return &Loop{
		cfg:       cfg,
		catalog:   st.Catalog(),
		signals:   st.Signals(),
		attempts:  st.Attempts(),
		graph:     graph,
		calc:      calc,
		seq:       seq,
		router:    router,
		dialogues: socratic.NewEngine(classifier, graph, st.Dialogues()),
		locks:     NewLearnerLocks(),
	}, nil
}

// Graph exposes the loaded concept graph for presentation layers.
func (l *Loop) Graph() *prereq.MemoryGraph { return l.graph }

// Calculator exposes the mastery calculator for presentation layers.
func (l *Loop) Calculator() *mastery.Calculator { return l.calc }

// Router exposes the remediation router for presentation layers.
func (l *Loop) Router() *remediation.Router { return l.router }

// Sequencer exposes the sequencer for presentation layers.
func (l *Loop) Sequencer() *sequencer.Sequencer { return l.seq }

// NextOptions scope a sequencing request.
type NextOptions struct {
	ConceptID     content.ConceptID
	ClusterID     string
	Count         int
	IncludeReview bool
}

// NextAtoms assembles learner state from the store and asks the sequencer
// what to present.
func (l *Loop) NextAtoms(ctx context.Context, learnerID string, opts NextOptions) ([]content.AtomID, error) {
	l.locks.Lock(learnerID)
	defer l.locks.Unlock(learnerID)

	recent, err := l.attempts.RecentOutcomes(ctx, learnerID, l.cfg.Sequencer.RollingWindow)
	if err != nil {
		return nil, err
	}
	mastered, err := l.attempts.MasteredAtoms(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	var conceptIDs []content.ConceptID
	for _, c := range l.graph.Concepts() {
		conceptIDs = append(conceptIDs, c.ID)
	}
	atomPrereqs, err := l.catalog.AtomPrerequisites(ctx, conceptIDs)
	if err != nil {
		return nil, err
	}

	var due *sequencer.ReviewQueue
	if opts.IncludeReview {
		dueIDs, err := l.catalog.ListDue(ctx, learnerID)
		if err != nil {
			return nil, err
		}
		due = sequencer.NewReviewQueue(dueIDs)
	}

	return l.seq.NextAtoms(ctx, sequencer.NextAtomsRequest{
		LearnerID:         learnerID,
		ConceptID:         opts.ConceptID,
		ClusterID:         opts.ClusterID,
		Count:             opts.Count,
		IncludeReview:     opts.IncludeReview,
		RecentOutcomes:    recent,
		MasteredAtoms:     mastered,
		AtomPrerequisites: atomPrereqs,
		DueReview:         due,
	})
}

// Answer is one graded attempt submitted by the presentation layer.
type Answer struct {
	AtomID     content.AtomID
	Correct    bool
	HintUsed   bool
	LatencyMs  int64
	Confidence *float64 // nil when the learner was not asked
}

// AnswerResult reports what an answer changed.
type AnswerResult struct {
	AtomMastered bool
	// Plan is set when the router recommends remediation; Event is its
	// durable record.
	Plan  *remediation.Plan
	Event *remediation.Event
}

// Submit records a graded attempt: history, quiz and review signals,
// atom-level mastery promotion, then the remediation check.
func (l *Loop) Submit(ctx context.Context, learnerID string, ans Answer) (*AnswerResult, error) {
	l.locks.Lock(learnerID)
	defer l.locks.Unlock(learnerID)

	atom, err := l.catalog.Get(ctx, ans.AtomID)
	if err != nil {
		return nil, err
	}
	if atom == nil {
		return nil, fmt.Errorf("unknown atom %s", ans.AtomID)
	}

	err = l.attempts.Insert(ctx, store.Attempt{
		LearnerID: learnerID,
		AtomID:    atom.ID,
		ConceptID: atom.ConceptID,
		Correct:   ans.Correct,
		HintUsed:  ans.HintUsed,
		LatencyMs: ans.LatencyMs,
	})
	if err != nil {
		return nil, err
	}
	if err := l.signals.RecordQuizOutcome(ctx, learnerID, atom.ConceptID, atom.KnowledgeType, ans.Correct); err != nil {
		return nil, err
	}
	if err := l.signals.RecordReview(ctx, learnerID, atom, ans.Correct, time.Now().UTC()); err != nil {
		return nil, err
	}

	res := &AnswerResult{}

	window := l.cfg.Sequencer.RollingWindow
	if l.cfg.Sequencer.RequireConsecutive > window {
		window = l.cfg.Sequencer.RequireConsecutive
	}
	outcomes, err := l.attempts.AtomOutcomes(ctx, learnerID, atom.ID, window)
	if err != nil {
		return nil, err
	}
	if sequencer.MasteryDecision(outcomes, l.cfg.Sequencer) {
		if err := l.attempts.MarkMastered(ctx, learnerID, atom.ID); err != nil {
			return nil, err
		}
		res.AtomMastered = true
	}

	plan, err := l.router.CheckRemediationNeeded(ctx, learnerID, atom.ID, ans.Correct, ans.Confidence)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		res.Plan = plan
		res.Event, err = l.router.Trigger(ctx, learnerID, plan)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Abstain hands the atom to the Socratic engine instead of scoring it.
// The returned session is driven by the caller; the opening prompt is
// already recorded on it.
func (l *Loop) Abstain(ctx context.Context, learnerID string, atomID content.AtomID) (*socratic.Session, string, error) {
	atom, err := l.catalog.Get(ctx, atomID)
	if err != nil {
		return nil, "", err
	}
	if atom == nil {
		return nil, "", fmt.Errorf("unknown atom %s", atomID)
	}
	s := l.dialogues.Start(learnerID, atom)
	return s, s.Opening(), nil
}

// CloseDialogue persists a finished dialogue and feeds its detected gaps
// back into the remediation router as cross-topic recommendations.
func (l *Loop) CloseDialogue(ctx context.Context, s *socratic.Session) ([]*remediation.Event, error) {
	if err := l.dialogues.Close(ctx, s); err != nil {
		return nil, err
	}
	if len(s.DetectedGaps) == 0 {
		return nil, nil
	}

	plans, err := l.router.DialogueGapPlans(ctx, s.LearnerID, s.Atom.ConceptID, s.DetectedGaps)
	if err != nil {
		return nil, err
	}
	var events []*remediation.Event
	for _, plan := range plans {
		ev, err := l.router.Trigger(ctx, s.LearnerID, plan)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
