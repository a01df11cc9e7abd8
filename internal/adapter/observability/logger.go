// Package observability adapts the shared structured logger to the narrow
// logging ports the use cases declare.
package observability

import (
	"context"

	"github.com/bkyoung/review-lsp/internal/adapter/httpapi"
	"github.com/bkyoung/review-lsp/internal/usecase/resolve"
	"github.com/bkyoung/review-lsp/internal/usecase/review"
)

// ReviewLogger adapts httpapi.FieldLogger to the review.Logger interface.
// This allows the review service to use the same structured logging
// infrastructure as the API clients.
type ReviewLogger struct {
	logger httpapi.FieldLogger
}

// NewReviewLogger creates a new review logger adapter.
func NewReviewLogger(logger httpapi.FieldLogger) review.Logger {
	return &ReviewLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *ReviewLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *ReviewLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}

// ResolveLogger adapts httpapi.FieldLogger to the resolve.Logger interface
// used for resolver tracing.
type ResolveLogger struct {
	logger httpapi.FieldLogger
}

// NewResolveLogger creates a new resolver logger adapter.
func NewResolveLogger(logger httpapi.FieldLogger) resolve.Logger {
	return &ResolveLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *ResolveLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *ResolveLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
