package progress_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"coursepack/internal/logging"
	"coursepack/internal/progress"
)

func TestReporterMonotonicAcrossPhases(t *testing.T) {
	var states []progress.State
	r := progress.NewReporter(func(s progress.State) { states = append(states, s) }, nil)

	if err := r.Enter(progress.PhaseLoading, "loading"); err != nil {
		t.Fatal(err)
	}
	r.Step(1, 1, "loaded")
	if err := r.Enter(progress.PhaseMedia, "media"); err != nil {
		t.Fatal(err)
	}
	r.Step(1, 4, "img")
	r.Step(0, 4, "late update")
	r.Step(4, 4, "all media")
	if err := r.Enter(progress.PhaseContent, "content"); err != nil {
		t.Fatal(err)
	}
	if err := r.Enter(progress.PhaseFinalizing, "finalizing"); err != nil {
		t.Fatal(err)
	}
	r.Finish("done")

	for i := 1; i < len(states); i++ {
		if states[i].Percent < states[i-1].Percent {
			t.Fatalf("percent decreased at %d: %.1f -> %.1f", i, states[i-1].Percent, states[i].Percent)
		}
	}
	if got := states[3].Percent; got != 25 {
		t.Fatalf("expected media 1/4 at 25%%, got %.1f", got)
	}
	if got := states[4].Percent; got != 25 {
		t.Fatalf("expected stale update clamped to 25%%, got %.1f", got)
	}
	last := r.Last()
	if last.Phase != progress.PhaseFinalizing || last.Percent != 100 {
		t.Fatalf("unexpected final state %+v", last)
	}
}

func TestReporterRejectsBackwardsPhase(t *testing.T) {
	r := progress.NewReporter(nil, nil)
	if err := r.Enter(progress.PhaseContent, ""); err != nil {
		t.Fatal(err)
	}
	if err := r.Enter(progress.PhaseMedia, ""); !errors.Is(err, progress.ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
}

func TestPhaseRangesPartitionPercent(t *testing.T) {
	prev := 0.0
	for _, phase := range progress.Phases() {
		start, end := phase.Range()
		if start != prev || end <= start {
			t.Fatalf("phase %s range %.0f-%.0f does not follow %.0f", phase, start, end, prev)
		}
		prev = end
	}
	if prev != 100 {
		t.Fatalf("phases end at %.0f", prev)
	}
}

func TestPhaseLabel(t *testing.T) {
	if got := progress.PhaseFinalizing.Label(); got != "Finalizing" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestReporterSamplesLogsPerPhaseSpan(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(logging.Options{Format: "json", Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	r := progress.NewReporter(nil, logger)

	if err := r.Enter(progress.PhaseLoading, "loading"); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 4; i++ {
		r.Step(i, 4, "page")
	}
	if err := r.Enter(progress.PhaseMedia, "media"); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 60; i++ {
		r.Step(i, 60, "item")
	}

	counts := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		for _, phase := range []string{"loading", "media"} {
			if strings.Contains(line, `"build progress"`) && strings.Contains(line, `"phase":"`+phase+`"`) {
				counts[phase]++
			}
		}
	}
	if counts["loading"] != 5 || counts["media"] != 5 {
		t.Fatalf("expected one entry plus four buckets per phase, got %v", counts)
	}
}
