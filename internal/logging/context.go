package logging

import (
	"context"
	"log/slog"

	"coursepack/internal/buildctx"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID identifies the generation session a line belongs to.
	FieldSessionID = "session_id"
	// FieldStage is the authoring stage the session renders.
	FieldStage = "stage"
	// FieldPhase is the package build phase.
	FieldPhase = "phase"
	// FieldEventType classifies warnings and decisions for log queries.
	FieldEventType = "event_type"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldMediaID is the media reference id a line concerns.
	FieldMediaID = "media_id"
	// FieldPageID is the course page id a line concerns.
	FieldPageID = "page_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := buildctx.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	if stage, ok := buildctx.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if phase, ok := buildctx.PhaseFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPhase, phase))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
