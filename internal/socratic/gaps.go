package socratic

import (
	"sort"
	"strings"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// DetectGaps scans learner turns for mentions of prerequisite topics.
// A prerequisite the learner brings up by name during a struggle is a
// strong hint that the gap sits there, not in the atom's own concept.
// Results are deduplicated and sorted shallowest prerequisite first.
func DetectGaps(turns []Turn, ancestors []prereq.Ancestor) []content.ConceptID {
	if len(ancestors) == 0 {
		return nil
	}

	var transcript strings.Builder
	for _, t := range turns {
		if t.Role != RoleLearner {
			continue
		}
		transcript.WriteString(strings.ToLower(t.Content))
		transcript.WriteByte('\n')
	}
	text := transcript.String()
	if text == "" {
		return nil
	}

	seen := make(map[content.ConceptID]bool)
	var gaps []gapHit
	for _, a := range ancestors {
		name := strings.ToLower(a.Name)
		if name == "" || seen[a.ConceptID] {
			continue
		}
		if strings.Contains(text, name) {
			seen[a.ConceptID] = true
			gaps = append(gaps, gapHit{id: a.ConceptID, depth: a.Depth})
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].depth != gaps[j].depth {
			return gaps[i].depth < gaps[j].depth
		}
		return gaps[i].id < gaps[j].id
	})

	out := make([]content.ConceptID, len(gaps))
	for i, g := range gaps {
		out[i] = g.id
	}
	return out
}

type gapHit struct {
	id    content.ConceptID
	depth int
}
