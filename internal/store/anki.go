package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/mastery"
)

// AnkiExport reads a per-concept stats export from an external
// spaced-repetition tool. The export groups card aggregates by track so
// one file can seed several subjects. It implements mastery.AnkiSource.
type AnkiExport struct {
	tracks map[string][]ankiConceptStats
}

type ankiExportFile struct {
	Tracks map[string][]ankiConceptStats `yaml:"tracks"`
}

type ankiConceptStats struct {
	Concept    string  `yaml:"concept"`
	Stability  float64 `yaml:"stability"`
	Difficulty float64 `yaml:"difficulty"`
	Lapses     int     `yaml:"lapses"`
	Reviews    int     `yaml:"reviews"`
}

// LoadAnkiExport parses an export file.
func LoadAnkiExport(path string) (*AnkiExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open anki export: %w", err)
	}
	var f ankiExportFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse anki export: %w", err)
	}
	return &AnkiExport{tracks: f.Tracks}, nil
}

// ConceptStats returns aggregates for one track. An unknown track is
// empty, not an error; the learner id is carried by the caller.
func (a *AnkiExport) ConceptStats(_ context.Context, _, trackID string) ([]mastery.AnkiConceptStats, error) {
	stats := a.tracks[trackID]
	out := make([]mastery.AnkiConceptStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, mastery.AnkiConceptStats{
			ConceptID:  content.ConceptID(s.Concept),
			Stability:  s.Stability,
			Difficulty: s.Difficulty,
			Lapses:     s.Lapses,
			Reviews:    s.Reviews,
		})
	}
	return out, nil
}
