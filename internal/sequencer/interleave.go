package sequencer

import (
	"sort"

	"github.com/tutorkit/tutorkit/internal/content"
)

// interleave orders new atoms round-robin across atom-type/knowledge-type
// buckets so the learner never sees a long block of one format. Input
// order within a bucket is preserved. Review and remediation blocks are
// assembled before this step and never pass through it.
func interleave(atoms []*content.Atom) []*content.Atom {
	if len(atoms) <= 2 {
		return atoms
	}

	type bucketKey struct {
		atomType  content.AtomType
		knowledge content.KnowledgeType
	}

	buckets := make(map[bucketKey][]*content.Atom)
	var order []bucketKey
	for _, a := range atoms {
		k := bucketKey{atomType: a.Type, knowledge: a.KnowledgeType}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], a)
	}

	// Largest buckets first so the round-robin spreads the dominant
	// format instead of front-loading it.
	sort.SliceStable(order, func(i, j int) bool {
		return len(buckets[order[i]]) > len(buckets[order[j]])
	})

	out := make([]*content.Atom, 0, len(atoms))
	for len(out) < len(atoms) {
		for _, k := range order {
			if b := buckets[k]; len(b) > 0 {
				out = append(out, b[0])
				buckets[k] = b[1:]
			}
		}
	}
	return out
}
