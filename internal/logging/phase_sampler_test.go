package logging_test

import (
	"testing"

	"coursepack/internal/logging"
)

func TestPhaseSamplerNilLogsEverything(t *testing.T) {
	var s *logging.PhaseSampler
	if !s.ShouldLog("media", 50) {
		t.Fatal("nil sampler should log every snapshot")
	}
}

func TestPhaseSamplerBucketsWithinPhaseSpan(t *testing.T) {
	s := logging.NewPhaseSampler(4, map[string]logging.Span{
		"loading": {Start: 0, End: 10},
		"media":   {Start: 10, End: 70},
	})
	steps := []struct {
		phase   string
		percent float64
		want    bool
	}{
		{"loading", 0, true},
		{"loading", 2, false},
		{"loading", 2.5, true},
		{"loading", 10, true},
		{"loading", 10, false},
		{"media", 10, true},
		{"media", 20, false},
		{"media", 25, true},
		{"media", 39, false},
		{"media", 70, true},
		{"other", 50, true},
		{"other", 60, false},
		{"other", 75, true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.phase, step.percent); got != step.want {
			t.Fatalf("step %d ShouldLog(%s, %.1f) = %v, want %v", i, step.phase, step.percent, got, step.want)
		}
	}
}
