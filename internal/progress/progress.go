package progress

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"coursepack/internal/logging"
)

// Phase is a package build phase.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseMedia      Phase = "media"
	PhaseContent    Phase = "content"
	PhaseFinalizing Phase = "finalizing"
)

var phaseOrder = []Phase{PhaseLoading, PhaseMedia, PhaseContent, PhaseFinalizing}

var phaseRanges = map[Phase][2]float64{
	PhaseLoading:    {0, 10},
	PhaseMedia:      {10, 70},
	PhaseContent:    {70, 90},
	PhaseFinalizing: {90, 100},
}

// Phases returns every phase in build order.
func Phases() []Phase {
	return append([]Phase(nil), phaseOrder...)
}

// Range returns the global percent span of the phase.
func (p Phase) Range() (start, end float64) {
	r := phaseRanges[p]
	return r[0], r[1]
}

func samplerSpans() map[string]logging.Span {
	spans := make(map[string]logging.Span, len(phaseRanges))
	for phase, r := range phaseRanges {
		spans[string(phase)] = logging.Span{Start: r[0], End: r[1]}
	}
	return spans
}

func (p Phase) index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Label returns the display name of the phase.
func (p Phase) Label() string {
	return cases.Title(language.English).String(string(p))
}

// State is one progress snapshot.
type State struct {
	Phase       Phase   `json:"phase"`
	Percent     float64 `json:"percent"`
	Message     string  `json:"message,omitempty"`
	ItemsLoaded int     `json:"items_loaded,omitempty"`
	TotalItems  int     `json:"total_items,omitempty"`
}

// Func receives progress snapshots.
type Func func(State)

// ErrPhaseOrder reports an attempt to move backwards through the phases.
var ErrPhaseOrder = errors.New("progress phase out of order")

// Reporter forwards monotonic progress to a callback.
type Reporter struct {
	mu      sync.Mutex
	fn      Func
	logger  *slog.Logger
	sampler *logging.PhaseSampler
	phase   int
	last    State
	started bool
}

// NewReporter wraps fn, which may be nil.
func NewReporter(fn Func, logger *slog.Logger) *Reporter {
	return &Reporter{
		fn:      fn,
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewPhaseSampler(4, samplerSpans()),
		phase:   -1,
	}
}

// Enter starts phase, reporting its starting percent.
func (r *Reporter) Enter(phase Phase, message string) error {
	idx := phase.index()
	if idx < 0 {
		return fmt.Errorf("%w: unknown phase %q", ErrPhaseOrder, phase)
	}
	r.mu.Lock()
	if idx < r.phase {
		current := phaseOrder[r.phase]
		r.mu.Unlock()
		return fmt.Errorf("%w: %s after %s", ErrPhaseOrder, phase, current)
	}
	r.phase = idx
	start, _ := phase.Range()
	state := r.advanceLocked(State{Phase: phase, Percent: start, Message: message})
	r.mu.Unlock()
	r.emit(state)
	return nil
}

// Step reports done of total items within the current phase.
func (r *Reporter) Step(done, total int, message string) {
	r.mu.Lock()
	if r.phase < 0 {
		r.mu.Unlock()
		return
	}
	phase := phaseOrder[r.phase]
	start, end := phase.Range()
	percent := end
	if total > 0 {
		if done > total {
			done = total
		}
		percent = start + (end-start)*float64(done)/float64(total)
	}
	state := r.advanceLocked(State{
		Phase:       phase,
		Percent:     percent,
		Message:     message,
		ItemsLoaded: done,
		TotalItems:  total,
	})
	r.mu.Unlock()
	r.emit(state)
}

// Finish reports 100 percent in the finalizing phase.
func (r *Reporter) Finish(message string) {
	r.mu.Lock()
	r.phase = PhaseFinalizing.index()
	state := r.advanceLocked(State{Phase: PhaseFinalizing, Percent: 100, Message: message})
	r.mu.Unlock()
	r.emit(state)
}

// Last returns the most recent snapshot.
func (r *Reporter) Last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reporter) advanceLocked(state State) State {
	if r.started && state.Percent < r.last.Percent {
		state.Percent = r.last.Percent
	}
	if state.Percent > 100 {
		state.Percent = 100
	}
	r.started = true
	r.last = state
	return state
}

func (r *Reporter) emit(state State) {
	if r.sampler.ShouldLog(string(state.Phase), state.Percent) {
		r.logger.Info("build progress",
			logging.String(logging.FieldPhase, string(state.Phase)),
			logging.Float64("percent", state.Percent),
			logging.String("message", state.Message),
		)
	}
	if r.fn != nil {
		r.fn(state)
	}
}
