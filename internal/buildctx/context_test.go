package buildctx_test

import (
	"context"
	"testing"

	"coursepack/internal/buildctx"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = buildctx.WithSessionID(ctx, "sess-1")
	ctx = buildctx.WithStage(ctx, "media")
	ctx = buildctx.WithPhase(ctx, "content")

	if id, ok := buildctx.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if stage, ok := buildctx.StageFromContext(ctx); !ok || stage != "media" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if phase, ok := buildctx.PhaseFromContext(ctx); !ok || phase != "content" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := buildctx.WithStage(context.Background(), "")
	if _, ok := buildctx.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
