// Package socratic runs scaffolded tutoring dialogues for learners who
// abstain on an atom. The dialogue escalates hints one scaffold level at a
// time and never walks them back within a session.
package socratic

import "fmt"

// ScaffoldLevel is the degree of hinting offered, 0 through 4.
type ScaffoldLevel int

const (
	// LevelPureSocratic asks guiding questions with no hints.
	LevelPureSocratic ScaffoldLevel = iota
	// LevelNudge points at the relevant idea without naming the method.
	LevelNudge
	// LevelPartial reveals part of the solution structure.
	LevelPartial
	// LevelWorked walks a similar example end to end.
	LevelWorked
	// LevelReveal gives the answer. Reaching it ends the session.
	LevelReveal
)

func (l ScaffoldLevel) String() string {
	switch l {
	case LevelPureSocratic:
		return "pure_socratic"
	case LevelNudge:
		return "nudge"
	case LevelPartial:
		return "partial"
	case LevelWorked:
		return "worked"
	case LevelReveal:
		return "reveal"
	}
	return fmt.Sprintf("scaffold(%d)", int(l))
}

// CognitiveSignal is the classified state of one learner turn.
type CognitiveSignal string

const (
	SignalConfused        CognitiveSignal = "CONFUSED"
	SignalProgressing     CognitiveSignal = "PROGRESSING"
	SignalBreakthrough    CognitiveSignal = "BREAKTHROUGH"
	SignalStuck           CognitiveSignal = "STUCK"
	SignalPrerequisiteGap CognitiveSignal = "PREREQUISITE_GAP"
	SignalFatigue         CognitiveSignal = "FATIGUE"
)

// ParseSignal validates a signal string, typically from model output.
func ParseSignal(s string) (CognitiveSignal, error) {
	switch CognitiveSignal(s) {
	case SignalConfused, SignalProgressing, SignalBreakthrough,
		SignalStuck, SignalPrerequisiteGap, SignalFatigue:
		return CognitiveSignal(s), nil
	}
	return "", fmt.Errorf("unknown cognitive signal %q", s)
}

// Resolution is the terminal outcome of a dialogue. A resolved session
// cannot resume.
type Resolution string

const (
	// ResolutionSelfSolved means the learner broke through at level 0.
	ResolutionSelfSolved Resolution = "SELF_SOLVED"
	// ResolutionGuidedSolved means the learner broke through after hints.
	ResolutionGuidedSolved Resolution = "GUIDED_SOLVED"
	// ResolutionGaveUp means the learner abstained or was interrupted.
	ResolutionGaveUp Resolution = "GAVE_UP"
	// ResolutionRevealed means the scaffold escalated all the way to the
	// answer. Always paired with LevelReveal.
	ResolutionRevealed Resolution = "REVEALED"
)

// Role identifies the speaker of a dialogue turn.
type Role string

const (
	RoleLearner Role = "learner"
	RoleTutor   Role = "tutor"
)

// Turn is one utterance in the transcript.
type Turn struct {
	Role      Role
	Content   string
	LatencyMs int64
	Signal    CognitiveSignal // learner turns only
}
