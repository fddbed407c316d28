package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func signalSchema() *Schema {
	return &Schema{
		Name: "cognitive-signal",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"signal": map[string]any{
					"type": "string",
					"enum": []any{"PROGRESS", "STUCK", "CONFUSED"},
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
}

func TestCheckOutputValid(t *testing.T) {
	raw := json.RawMessage(`{"signal":"STUCK","confidence":0.8}`)
	if err := checkOutput(signalSchema(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckOutputInvalidJSON(t *testing.T) {
	err := checkOutput(signalSchema(), json.RawMessage(`not json at all`))
	var bad *ErrBadOutput
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrBadOutput, got %v", err)
	}
}

func TestCheckOutputMissingRequired(t *testing.T) {
	err := checkOutput(signalSchema(), json.RawMessage(`{"signal":"STUCK"}`))
	var bad *ErrBadOutput
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrBadOutput, got %v", err)
	}
}

func TestCheckOutputEnumViolation(t *testing.T) {
	err := checkOutput(signalSchema(), json.RawMessage(`{"signal":"SHRUG","confidence":0.5}`))
	var bad *ErrBadOutput
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrBadOutput, got %v", err)
	}
}

func TestCheckOutputNilSchemaAcceptsAnyJSON(t *testing.T) {
	if err := checkOutput(nil, json.RawMessage(`[1,2,3]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkOutput(nil, json.RawMessage(`{{`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
