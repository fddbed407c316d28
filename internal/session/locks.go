package session

import "sync"

// LearnerLocks serializes engine calls per learner. The sequencer consumes
// the due-review queue by reference, so at most one in-flight sequencing
// call per learner is allowed; callers hold the learner's lock across a
// full sequence-answer round trip.
type LearnerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLearnerLocks creates an empty registry.
func NewLearnerLocks() *LearnerLocks {
	return &LearnerLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a learner, creating it on first use.
func (l *LearnerLocks) Lock(learnerID string) {
	l.get(learnerID).Lock()
}

// Unlock releases the learner's lock.
func (l *LearnerLocks) Unlock(learnerID string) {
	l.get(learnerID).Unlock()
}

func (l *LearnerLocks) get(learnerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[learnerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[learnerID] = m
	}
	return m
}
