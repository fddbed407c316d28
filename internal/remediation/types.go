package remediation

import (
	"time"

	"github.com/tutorkit/tutorkit/internal/content"
)

// Priority bands a knowledge gap by how far mastery sits below target.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// TriggerType records what surfaced a remediation.
type TriggerType string

const (
	TriggerIncorrectAnswer TriggerType = "incorrect_answer"
	TriggerLowConfidence   TriggerType = "low_confidence"
	TriggerDialogueGap     TriggerType = "dialogue_gap"
	TriggerGapScan         TriggerType = "gap_scan"
)

// Plan is an in-memory remediation recommendation. Plans are ephemeral;
// accepting one creates a durable Event.
type Plan struct {
	GapConceptID  content.ConceptID
	GapName       string
	AtomIDs       []content.AtomID
	Priority      Priority
	Gating        content.GatingType
	MasteryTarget float64
	Trigger       TriggerType
	TriggerAtomID content.AtomID // set when an atom attempt triggered the plan
}

// KnowledgeGap is one concept sitting below its required mastery.
type KnowledgeGap struct {
	ConceptID       content.ConceptID
	Name            string
	CurrentMastery  float64
	RequiredMastery float64
	Gap             float64
	Priority        Priority
	Gating          content.GatingType
}

// EventStatus is the lifecycle state of a remediation event.
// Completed and skipped are terminal.
type EventStatus string

const (
	StatusTriggered EventStatus = "triggered"
	StatusCompleted EventStatus = "completed"
	StatusSkipped   EventStatus = "skipped"
)

// Event is the durable record of a triggered remediation. It is created
// at trigger time and mutated exactly once, at completion or skip.
type Event struct {
	ID            string
	LearnerID     string
	GapConceptID  content.ConceptID
	Trigger       TriggerType
	TriggerAtomID content.AtomID
	Status        EventStatus

	MasteryAtTrigger float64
	RequiredMastery  float64
	MasteryGap       float64

	// Completion fields, zero until the event is terminal.
	AtomsCompleted         int
	AtomsCorrect           int
	PostRemediationMastery float64
	MasteryImprovement     float64
	Successful             bool
	SkipReason             string

	TriggeredAt time.Time
	ResolvedAt  *time.Time
}
