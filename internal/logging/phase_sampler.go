package logging

// Span is the slice of overall build percent a phase covers.
type Span struct {
	Start float64
	End   float64
}

// PhaseSampler thins progress logs for builds whose phases each own a fixed
// span of the overall percent. Every span is cut into the same number of
// buckets, so a phase covering 10% logs as often as one covering 60%.
type PhaseSampler struct {
	buckets int
	spans   map[string]Span
	phase   string
	bucket  int
}

// NewPhaseSampler returns a sampler that logs on every phase change and each
// time progress enters a new bucket of the phase span. Phases missing from
// spans are bucketed over 0 to 100.
func NewPhaseSampler(buckets int, spans map[string]Span) *PhaseSampler {
	if buckets <= 0 {
		buckets = 4
	}
	return &PhaseSampler{buckets: buckets, spans: spans, bucket: -1}
}

// ShouldLog reports whether the snapshot should be logged. A nil sampler logs
// everything.
func (s *PhaseSampler) ShouldLog(phase string, percent float64) bool {
	if s == nil {
		return true
	}
	emit := false
	if phase != s.phase {
		s.phase = phase
		s.bucket = -1
		emit = true
	}
	if bucket := s.bucketOf(phase, percent); bucket > s.bucket {
		s.bucket = bucket
		emit = true
	}
	return emit
}

func (s *PhaseSampler) bucketOf(phase string, percent float64) int {
	span, ok := s.spans[phase]
	if !ok || span.End <= span.Start {
		span = Span{Start: 0, End: 100}
	}
	frac := (percent - span.Start) / (span.End - span.Start)
	switch {
	case frac <= 0:
		return 0
	case frac >= 1:
		return s.buckets
	}
	return int(frac * float64(s.buckets))
}
