package llm

import (
	"context"
	"fmt"
)

// ErrDisabled is returned when no provider is configured. Callers fall
// back to heuristic classification.
var ErrDisabled = fmt.Errorf("no model provider configured")

// NewProvider creates the configured provider wrapped with middleware,
// caller → retry → logging → base. A nil sink skips request recording.
func NewProvider(ctx context.Context, cfg Config, sink RequestSink) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "":
		return nil, ErrDisabled
	case "anthropic":
		base, err = NewAnthropic(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAI(cfg.OpenAI)
	case "gemini":
		base, err = NewGemini(ctx, cfg.Gemini)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown model provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if sink != nil {
		base = WithLogging(base, sink)
	}
	return WithRetry(base, cfg.Retry), nil
}
