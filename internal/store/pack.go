package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tutorkit/tutorkit/internal/content"
)

// Pack is an authored content pack: concepts, their prerequisite edges
// and atoms, loaded from YAML.
type Pack struct {
	Name          string             `yaml:"name"`
	Concepts      []packConcept      `yaml:"concepts"`
	Prerequisites []packPrerequisite `yaml:"prerequisites"`
	Atoms         []packAtom         `yaml:"atoms"`
}

type packConcept struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Cluster string `yaml:"cluster"`
}

type packPrerequisite struct {
	Source      string  `yaml:"source"`
	Target      string  `yaml:"target"`
	Threshold   float64 `yaml:"threshold"`
	Gating      string  `yaml:"gating"`
	MasteryType string  `yaml:"mastery_type"`
}

type packAtom struct {
	ID        string         `yaml:"id"`
	Type      string         `yaml:"type"`
	Concept   string         `yaml:"concept"`
	Knowledge string         `yaml:"knowledge"`
	Quality   float64        `yaml:"quality"`
	Prompt    string         `yaml:"prompt"`
	Payload   map[string]any `yaml:"payload"`
}

// LoadPack parses a content pack from YAML.
func LoadPack(r io.Reader) (*Pack, error) {
	var p Pack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse content pack: %w", err)
	}
	return &p, nil
}

// LoadPackFile parses a content pack from a YAML file.
func LoadPackFile(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content pack: %w", err)
	}
	defer f.Close()
	return LoadPack(f)
}

// ImportPack validates and upserts a pack. Counts of concepts and atoms
// written are returned for reporting.
func (r *CatalogRepo) ImportPack(ctx context.Context, p *Pack) (concepts, atoms int, err error) {
	for _, c := range p.Concepts {
		if c.ID == "" || c.Name == "" {
			return concepts, atoms, fmt.Errorf("concept %q: id and name are required", c.ID)
		}
		err = r.UpsertConcept(ctx, content.Concept{
			ID:        content.ConceptID(c.ID),
			Name:      c.Name,
			ClusterID: c.Cluster,
		})
		if err != nil {
			return concepts, atoms, err
		}
		concepts++
	}

	for _, e := range p.Prerequisites {
		prereq, convErr := e.toPrerequisite()
		if convErr != nil {
			return concepts, atoms, convErr
		}
		if err = r.UpsertPrerequisite(ctx, prereq); err != nil {
			return concepts, atoms, err
		}
	}

	for _, a := range p.Atoms {
		atom, convErr := a.toAtom()
		if convErr != nil {
			return concepts, atoms, convErr
		}
		if err = r.UpsertAtom(ctx, atom); err != nil {
			return concepts, atoms, err
		}
		atoms++
	}
	return concepts, atoms, nil
}

func (e packPrerequisite) toPrerequisite() (content.Prerequisite, error) {
	if e.Source == "" || e.Target == "" {
		return content.Prerequisite{}, fmt.Errorf("prerequisite %s->%s: source and target are required", e.Source, e.Target)
	}
	if e.Threshold < 0 || e.Threshold > 1 {
		return content.Prerequisite{}, fmt.Errorf("prerequisite %s->%s: threshold %f out of range", e.Source, e.Target, e.Threshold)
	}
	gating := content.GatingSoft
	if e.Gating != "" {
		gating = content.GatingType(e.Gating)
		if gating != content.GatingSoft && gating != content.GatingHard {
			return content.Prerequisite{}, fmt.Errorf("prerequisite %s->%s: unknown gating %q", e.Source, e.Target, e.Gating)
		}
	}
	masteryType := content.MasteryFoundation
	if e.MasteryType != "" {
		masteryType = content.MasteryType(e.MasteryType)
	}
	return content.Prerequisite{
		SourceConceptID: content.ConceptID(e.Source),
		TargetConceptID: content.ConceptID(e.Target),
		Threshold:       e.Threshold,
		Gating:          gating,
		MasteryType:     masteryType,
	}, nil
}

func (a packAtom) toAtom() (content.Atom, error) {
	if a.ID == "" || a.Concept == "" {
		return content.Atom{}, fmt.Errorf("atom %q: id and concept are required", a.ID)
	}
	atomType, err := content.ParseAtomType(a.Type)
	if err != nil {
		return content.Atom{}, fmt.Errorf("atom %s: %w", a.ID, err)
	}

	// YAML payload maps round-trip through JSON into the typed payload.
	raw, err := json.Marshal(a.Payload)
	if err != nil {
		return content.Atom{}, fmt.Errorf("atom %s: encode payload: %w", a.ID, err)
	}
	payload, err := content.UnmarshalPayload(atomType, raw)
	if err != nil {
		return content.Atom{}, fmt.Errorf("atom %s: %w", a.ID, err)
	}

	knowledge := content.KnowledgeDeclarative
	if a.Knowledge != "" {
		knowledge = content.KnowledgeType(a.Knowledge)
	}
	return content.Atom{
		ID:            content.AtomID(a.ID),
		Type:          atomType,
		ConceptID:     content.ConceptID(a.Concept),
		KnowledgeType: knowledge,
		QualityScore:  a.Quality,
		Prompt:        a.Prompt,
		Payload:       payload,
	}, nil
}
