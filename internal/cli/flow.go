package cli

import (
	"sync"
)

// pauser is the part of a decoder the flow gate drives.
type pauser interface {
	Pause()
	Resume()
}

// flowGate pauses a decode pass once high rows are waiting for the writer
// and resumes it when the writer has drained them down to low. The pending
// count and the paused flag change under one lock, so a resume can never be
// issued before the pause it answers.
type flowGate struct {
	dec       pauser
	high, low int

	mu      sync.Mutex
	pending int
	paused  bool
}

func newFlowGate(dec pauser, high int) *flowGate {
	return &flowGate{dec: dec, high: high, low: high / 2}
}

// queued is called by the row handler before it hands a row to the writer.
func (g *flowGate) queued() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending++
	if !g.paused && g.pending >= g.high {
		g.paused = true
		g.dec.Pause()
	}
}

// written is called by the writer after it has written a row.
func (g *flowGate) written() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending--
	if g.paused && g.pending <= g.low {
		g.paused = false
		g.dec.Resume()
	}
}
