package sequencer

import (
	"sync"

	"github.com/tutorkit/tutorkit/internal/content"
)

// ReviewQueue is the mutable due-review FIFO consumed by reference during
// sequencing. Dequeue is atomic, so a single sequencing call takes its
// whole review block in one step. Callers introducing multi-session access
// for the same learner must serialize sequencing externally (see
// session.LearnerLocks); the queue itself only guards its own state.
type ReviewQueue struct {
	mu  sync.Mutex
	ids []content.AtomID
}

// NewReviewQueue creates a queue preloaded with ids in due order.
func NewReviewQueue(ids []content.AtomID) *ReviewQueue {
	q := &ReviewQueue{ids: make([]content.AtomID, len(ids))}
	copy(q.ids, ids)
	return q
}

// Enqueue appends ids to the back of the queue.
func (q *ReviewQueue) Enqueue(ids ...content.AtomID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, ids...)
}

// Dequeue removes and returns up to n ids from the front.
func (q *ReviewQueue) Dequeue(n int) []content.AtomID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 || len(q.ids) == 0 {
		return nil
	}
	if n > len(q.ids) {
		n = len(q.ids)
	}
	out := make([]content.AtomID, n)
	copy(out, q.ids[:n])
	q.ids = q.ids[n:]
	return out
}

// Len returns the number of queued ids.
func (q *ReviewQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
