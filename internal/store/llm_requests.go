package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tutorkit/tutorkit/internal/llm"
)

// LLMRequestRepo is the append-only model request log. It implements
// llm.RequestSink.
type LLMRequestRepo struct {
	db *sql.DB
}

// AppendLLMRequest records one model call.
func (r *LLMRequestRepo) AppendLLMRequest(ctx context.Context, rec llm.RequestRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_requests (model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Model, rec.Purpose, rec.InputTokens, rec.OutputTokens,
		rec.LatencyMs, rec.Success, rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("append model request: %w", err)
	}
	return nil
}

// UsageSummary is aggregate model usage for reporting.
type UsageSummary struct {
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// Usage aggregates the request log, optionally filtered by model.
func (r *LLMRequestRepo) Usage(ctx context.Context, model string) (*UsageSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM llm_requests`
	var row *sql.Row
	if model != "" {
		row = r.db.QueryRowContext(ctx, query+` WHERE model = ?`, model)
	} else {
		row = r.db.QueryRowContext(ctx, query)
	}

	var s UsageSummary
	if err := row.Scan(&s.Requests, &s.Failures, &s.InputTokens, &s.OutputTokens); err != nil {
		return nil, fmt.Errorf("aggregate model usage: %w", err)
	}
	return &s, nil
}
