package socratic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tutorkit/tutorkit/internal/llm"
)

const classifySystemPrompt = `You are classifying one learner turn in a ` +
	`tutoring dialogue. Read the conversation and the final learner reply, ` +
	`then report the learner's cognitive state as exactly one signal.`

// classifySchema constrains model output to a signal plus confidence.
var classifySchema = &llm.Schema{
	Name: "cognitive-signal",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"signal": map[string]any{
				"type": "string",
				"enum": []any{
					string(SignalConfused), string(SignalProgressing),
					string(SignalBreakthrough), string(SignalStuck),
					string(SignalPrerequisiteGap), string(SignalFatigue),
				},
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
		"required": []any{"signal", "confidence"},
	},
}

// ModelClassifier delegates classification to a hosted model with a hard
// per-call timeout. Any failure falls back to the heuristic so dialogue
// latency stays bounded.
type ModelClassifier struct {
	provider llm.Provider
	fallback Classifier
	timeout  time.Duration
}

// NewModelClassifier wraps a provider. A zero timeout gets the default.
func NewModelClassifier(provider llm.Provider, timeout time.Duration) *ModelClassifier {
	if timeout <= 0 {
		timeout = llm.DefaultConfig().Timeout
	}
	return &ModelClassifier{
		provider: provider,
		fallback: Heuristic{},
		timeout:  timeout,
	}
}

func (c *ModelClassifier) Classify(ctx context.Context, ex Exchange) (CognitiveSignal, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	callCtx = llm.WithPurpose(callCtx, "turn-classify")

	res, err := c.provider.Complete(callCtx, llm.Prompt{
		System:    classifySystemPrompt,
		Turns:     classifyTurns(ex),
		Schema:    classifySchema,
		MaxTokens: 128,
	})
	if err != nil {
		// Dialogue flow never stalls on the model. Context cancellation
		// from the caller still propagates.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		fmt.Fprintf(os.Stderr, "warning: signal classification fell back to heuristics: %v\n", err)
		return c.fallback.Classify(ctx, ex)
	}

	var out struct {
		Signal     string  `json:"signal"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(res.Content, &out); err != nil {
		return c.fallback.Classify(ctx, ex)
	}
	signal, err := ParseSignal(out.Signal)
	if err != nil {
		return c.fallback.Classify(ctx, ex)
	}
	return signal, nil
}

func classifyTurns(ex Exchange) []llm.Turn {
	var turns []llm.Turn
	for _, t := range ex.History {
		speaker := llm.SpeakerLearner
		if t.Role == RoleTutor {
			speaker = llm.SpeakerTutor
		}
		turns = append(turns, llm.Turn{Speaker: speaker, Text: t.Content})
	}
	turns = append(turns, llm.Turn{
		Speaker: llm.SpeakerLearner,
		Text: fmt.Sprintf("[replied after %.0fs, scaffold %s] %s",
			float64(ex.LatencyMs)/1000, ex.Level, ex.Text),
	})
	return turns
}
