package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimited indicates a 429 from the provider.
type ErrRateLimited struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimited) Unwrap() error { return e.Err }

// ErrBadOutput indicates the model returned content that failed JSON
// parsing or schema validation.
type ErrBadOutput struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrBadOutput) Error() string {
	return fmt.Sprintf("model output rejected: %v", e.Err)
}

func (e *ErrBadOutput) Unwrap() error { return e.Err }

// ErrUnavailable indicates the provider is down or unreachable.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrTruncated indicates the completion hit the MaxTokens limit.
type ErrTruncated struct {
	Content json.RawMessage
}

func (e *ErrTruncated) Error() string {
	return "completion truncated at max tokens"
}
