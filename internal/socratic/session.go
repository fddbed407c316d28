package socratic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

// Input is one learner reply handed to Advance.
type Input struct {
	Text      string
	LatencyMs int64
	// Abstain is the learner explicitly quitting the dialogue.
	Abstain bool
}

// Session is one dialogue over a single atom. It is an explicit state
// object driven by an external loop: the caller collects learner input,
// calls Advance, and shows the returned prompt. The scaffold level never
// decreases within a session.
type Session struct {
	ID        string
	LearnerID string
	Atom      *content.Atom
	StartedAt time.Time

	Level        ScaffoldLevel
	Turns        []Turn
	DetectedGaps []content.ConceptID
	Resolution   Resolution

	classifier Classifier
	ancestors  []prereq.Ancestor

	confusedStreak int
}

// NewSession starts a dialogue at the pure-Socratic level. The ancestors
// of the atom's concept drive the closing gap scan.
func NewSession(learnerID string, atom *content.Atom, classifier Classifier, ancestors []prereq.Ancestor) *Session {
	if classifier == nil {
		classifier = Heuristic{}
	}
	return &Session{
		ID:         uuid.NewString(),
		LearnerID:  learnerID,
		Atom:       atom,
		StartedAt:  time.Now(),
		Level:      LevelPureSocratic,
		classifier: classifier,
		ancestors:  ancestors,
	}
}

// Resolved reports whether the session reached a terminal resolution.
func (s *Session) Resolved() bool { return s.Resolution != "" }

// Opening returns the first tutor prompt and records it.
func (s *Session) Opening() string {
	prompt := s.promptFor(s.Level)
	s.recordTutor(prompt)
	return prompt
}

// Advance processes one learner reply and returns the next tutor prompt.
// done is true when the session resolved; the prompt is then the closing
// message. Advancing a resolved session is an error.
func (s *Session) Advance(ctx context.Context, in Input) (prompt string, done bool, err error) {
	if s.Resolved() {
		return "", true, fmt.Errorf("session %s already resolved as %s", s.ID, s.Resolution)
	}

	if in.Abstain {
		s.recordLearner(in, "")
		return s.resolve(ResolutionGaveUp), true, nil
	}

	signal, err := s.classifier.Classify(ctx, Exchange{
		Text:      in.Text,
		LatencyMs: in.LatencyMs,
		Level:     s.Level,
		History:   s.Turns,
	})
	if err != nil {
		// Classification only fails on caller cancellation. Keep the
		// partial transcript and close out.
		s.recordLearner(in, "")
		return s.resolve(ResolutionGaveUp), true, err
	}
	s.recordLearner(in, signal)

	switch signal {
	case SignalBreakthrough:
		if s.Level == LevelPureSocratic {
			return s.resolve(ResolutionSelfSolved), true, nil
		}
		return s.resolve(ResolutionGuidedSolved), true, nil

	case SignalStuck:
		s.confusedStreak = 0
		return s.escalate()

	case SignalConfused:
		s.confusedStreak++
		if s.confusedStreak >= 2 {
			s.confusedStreak = 0
			return s.escalate()
		}

	case SignalPrerequisiteGap:
		s.confusedStreak = 0
		return s.escalate()

	case SignalFatigue:
		s.confusedStreak = 0
		if s.Level >= LevelPartial {
			s.Level = LevelReveal
			return s.resolve(ResolutionRevealed), true, nil
		}
		return s.escalate()

	case SignalProgressing:
		s.confusedStreak = 0
	}

	prompt = s.promptFor(s.Level)
	s.recordTutor(prompt)
	return prompt, false, nil
}

// Interrupt force-terminates the session, keeping the transcript so far.
func (s *Session) Interrupt() {
	if s.Resolved() {
		return
	}
	s.resolve(ResolutionGaveUp)
}

// escalate raises the scaffold one level. Reaching reveal is terminal.
func (s *Session) escalate() (string, bool, error) {
	s.Level++
	if s.Level >= LevelReveal {
		s.Level = LevelReveal
		return s.resolve(ResolutionRevealed), true, nil
	}
	prompt := s.promptFor(s.Level)
	s.recordTutor(prompt)
	return prompt, false, nil
}

func (s *Session) resolve(r Resolution) string {
	s.Resolution = r
	s.DetectedGaps = DetectGaps(s.Turns, s.ancestors)
	closing := s.closingFor(r)
	s.recordTutor(closing)
	return closing
}

func (s *Session) recordLearner(in Input, signal CognitiveSignal) {
	s.Turns = append(s.Turns, Turn{
		Role:      RoleLearner,
		Content:   in.Text,
		LatencyMs: in.LatencyMs,
		Signal:    signal,
	})
}

func (s *Session) recordTutor(text string) {
	s.Turns = append(s.Turns, Turn{Role: RoleTutor, Content: text})
}

func (s *Session) promptFor(level ScaffoldLevel) string {
	switch level {
	case LevelPureSocratic:
		return fmt.Sprintf("Let's think it through. %s What do you already know that could apply here?", s.Atom.Prompt)
	case LevelNudge:
		return fmt.Sprintf("Here's a nudge: this is really about %s. Which part of the question does that connect to?", s.conceptHint())
	case LevelPartial:
		return "Let me set up the first step for you. Start from the definition, write down what the question gives you, and tell me what follows."
	case LevelWorked:
		return "Let's walk a similar example together, step by step, and then you apply the same moves to this one. Ready for step one?"
	case LevelReveal:
		return s.revealText()
	}
	return s.Atom.Prompt
}

func (s *Session) closingFor(r Resolution) string {
	switch r {
	case ResolutionSelfSolved:
		return "You got there on your own. That's exactly the kind of reasoning to keep."
	case ResolutionGuidedSolved:
		return "You got it. Worth revisiting this one unaided in a day or two."
	case ResolutionGaveUp:
		return "No problem, we'll come back to this one later."
	case ResolutionRevealed:
		return s.revealText()
	}
	return ""
}

// conceptHint names the nearest prerequisite when one exists, otherwise
// the atom's own concept.
func (s *Session) conceptHint() string {
	if len(s.ancestors) > 0 {
		return s.ancestors[0].Name
	}
	return string(s.Atom.ConceptID)
}

// revealText renders the answer from the atom payload.
func (s *Session) revealText() string {
	answer := answerText(s.Atom)
	if answer == "" {
		return "Here is the full solution. Study it, then we'll schedule this one for review."
	}
	return fmt.Sprintf("Here's the answer: %s. Study why, then we'll schedule this one for review.", answer)
}

func answerText(atom *content.Atom) string {
	switch p := atom.Payload.(type) {
	case content.RecallCardPayload:
		return p.Back
	case content.ClozePayload:
		return strings.Join(p.Answers, ", ")
	case content.MultipleChoicePayload:
		if p.CorrectIndex >= 0 && p.CorrectIndex < len(p.Options) {
			return p.Options[p.CorrectIndex]
		}
	case content.TrueFalsePayload:
		if p.Answer {
			return "true"
		}
		return "false"
	case content.OrderingPayload:
		return strings.Join(p.Steps, " -> ")
	case content.MatchingPayload:
		pairs := make([]string, len(p.Pairs))
		for i, pair := range p.Pairs {
			pairs[i] = pair[0] + "=" + pair[1]
		}
		return strings.Join(pairs, ", ")
	case content.NumericPayload:
		return fmt.Sprintf("%g", p.Answer)
	}
	return ""
}
