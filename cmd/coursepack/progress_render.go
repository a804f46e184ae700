package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"coursepack/internal/progress"
)

// progressPrinter renders build progress. On a terminal it redraws one line
// in place; otherwise it prints one line per phase.
type progressPrinter struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	lastPhase   progress.Phase
	width       int
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, interactive: isTerminal(out)}
}

func (p *progressPrinter) update(state progress.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.interactive {
		if state.Phase != p.lastPhase {
			fmt.Fprintf(p.out, "%-10s %5.1f%%  %s\n", state.Phase.Label(), state.Percent, state.Message)
			p.lastPhase = state.Phase
		}
		return
	}

	line := fmt.Sprintf("%-10s %s %5.1f%%  %s", state.Phase.Label(), bar(state.Percent, 24), state.Percent, state.Message)
	pad := ""
	if len(line) < p.width {
		pad = strings.Repeat(" ", p.width-len(line))
	}
	p.width = len(line)
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
	p.lastPhase = state.Phase
}

// done terminates an in-place progress line.
func (p *progressPrinter) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.interactive && p.width > 0 {
		fmt.Fprintln(p.out)
	}
}

func bar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
