package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// RequestRecord is one model call, persisted for usage reporting.
type RequestRecord struct {
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestSink receives request records. Implemented by the store.
type RequestSink interface {
	AppendLLMRequest(ctx context.Context, rec RequestRecord) error
}

type purposeKey struct{}

// WithPurpose tags the context with what the call is for ("turn-classify"
// etc.), recorded alongside the request.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func purposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok {
		return p
	}
	return "unknown"
}

// loggingProvider records every call through the sink. Sink failures are
// warnings, never request failures.
type loggingProvider struct {
	inner Provider
	sink  RequestSink
}

// WithLogging wraps a Provider with request recording.
func WithLogging(p Provider, sink RequestSink) Provider {
	return &loggingProvider{inner: p, sink: sink}
}

func (l *loggingProvider) Complete(ctx context.Context, p Prompt) (*Result, error) {
	start := time.Now()
	res, err := l.inner.Complete(ctx, p)

	rec := RequestRecord{
		Model:     l.inner.Model(),
		Purpose:   purposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if res != nil {
		rec.Model = res.Model
		rec.InputTokens = res.Usage.InputTokens
		rec.OutputTokens = res.Usage.OutputTokens
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}

	if logErr := l.sink.AppendLLMRequest(ctx, rec); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record model request: %v\n", logErr)
	}
	return res, err
}

func (l *loggingProvider) Model() string { return l.inner.Model() }
