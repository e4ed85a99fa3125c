// Package progress delivers the phase notifications emitted by the board
// workflows. Publication is fire and forget: sinks must not block the
// workflow and get no acknowledgement.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Reporter receives phase-transition notifications from a workflow.
type Reporter interface {
	Publish(phase string)
}

// Func adapts a function to Reporter.
type Func func(phase string)

func (f Func) Publish(phase string) { f(phase) }

// Nop discards every notification.
var Nop Reporter = Func(func(string) {})

// Recorder keeps every published phase for test assertions.
type Recorder struct {
	mu     sync.Mutex
	phases []string
}

func (r *Recorder) Publish(phase string) {
	r.mu.Lock()
	r.phases = append(r.phases, phase)
	r.mu.Unlock()
}

// Phases returns the published phases in emission order.
func (r *Recorder) Phases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.phases...)
}

// Printer writes phases to a writer with a colored marker, for interactive
// CLI use.
type Printer struct {
	W io.Writer
}

var phaseMarker = color.New(color.FgCyan, color.Bold).SprintFunc()

func (p *Printer) Publish(phase string) {
	fmt.Fprintf(p.W, "%s %s\n", phaseMarker("==>"), phase)
}

// Multi fans one notification out to several sinks in order.
type Multi []Reporter

func (m Multi) Publish(phase string) {
	for _, r := range m {
		r.Publish(phase)
	}
}
