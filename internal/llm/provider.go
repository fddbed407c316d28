// Package llm abstracts the hosted language models used for cognitive
// signal classification during Socratic dialogues. Every provider returns
// schema-validated JSON so callers never parse free text.
package llm

import (
	"context"
	"encoding/json"
)

// Provider completes prompts against a hosted model.
type Provider interface {
	// Complete sends the prompt and returns structured output. When
	// Prompt.Schema is set the provider uses its native structured
	// output mechanism and the Result content is validated JSON.
	Complete(ctx context.Context, p Prompt) (*Result, error)

	// Model returns the configured model identifier.
	Model() string
}

// Speaker is the originator of a prompt turn.
type Speaker string

const (
	SpeakerLearner Speaker = "learner"
	SpeakerTutor   Speaker = "tutor"
)

// Turn is one exchange in the prompt conversation.
type Turn struct {
	Speaker Speaker
	Text    string
}

// Schema names the JSON structure a completion must return.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Prompt describes a single completion request.
type Prompt struct {
	System      string
	Turns       []Turn
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Result holds a completion.
type Result struct {
	Content    json.RawMessage
	Model      string
	StopReason string // "end", "max_tokens" or "error"
	Usage      Usage
}

// Usage reports token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
