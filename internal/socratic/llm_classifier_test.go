package socratic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorkit/tutorkit/internal/llm"
)

func TestModelClassifierUsesModelOutput(t *testing.T) {
	mock := llm.NewMock(llm.Canned{
		Content: json.RawMessage(`{"signal":"STUCK","confidence":0.9}`),
	})
	c := NewModelClassifier(mock, time.Second)

	got, err := c.Classify(context.Background(), Exchange{Text: "hmm"})
	require.NoError(t, err)
	assert.Equal(t, SignalStuck, got)
	require.Len(t, mock.Prompts, 1)
	assert.NotNil(t, mock.Prompts[0].Schema)
}

func TestModelClassifierFallsBackOnError(t *testing.T) {
	mock := llm.NewMock(llm.Canned{Err: &llm.ErrUnavailable{Err: errors.New("down")}})
	c := NewModelClassifier(mock, time.Second)

	got, err := c.Classify(context.Background(), Exchange{Text: "I don't know"})
	require.NoError(t, err)
	assert.Equal(t, SignalStuck, got)
}

func TestModelClassifierFallsBackOnTimeout(t *testing.T) {
	mock := llm.NewMock(llm.Canned{
		Delay: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	c := NewModelClassifier(mock, 5*time.Millisecond)

	got, err := c.Classify(context.Background(), Exchange{Text: "oh! got it"})
	require.NoError(t, err)
	assert.Equal(t, SignalBreakthrough, got)
}

func TestModelClassifierFallsBackOnUnknownSignal(t *testing.T) {
	mock := llm.NewMock(llm.Canned{
		Content: json.RawMessage(`{"signal":"SHRUG","confidence":0.9}`),
	})
	c := NewModelClassifier(mock, time.Second)

	got, err := c.Classify(context.Background(), Exchange{Text: "trying something"})
	require.NoError(t, err)
	assert.Equal(t, SignalProgressing, got)
}

func TestModelClassifierPropagatesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := llm.NewMock(llm.Canned{
		Delay: func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return ctx.Err()
		},
	})
	c := NewModelClassifier(mock, time.Second)

	_, err := c.Classify(ctx, Exchange{Text: "hmm"})
	assert.ErrorIs(t, err, context.Canceled)
}
