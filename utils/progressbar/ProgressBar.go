// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
)

// refresh is the minimum time between two renders of a progress bar
const refresh = 100 * time.Millisecond

// ManualProgressBar implements progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	flush           func() error
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
	lastDisplay     time.Time
}

// New returns a new ManualProgressBar which is width characters wide,
// reaches 100% after max calls to Increment, and renders each frame
// on its own line of out.
func New(out io.Writer, width, max int) *ManualProgressBar {
	if max <= 0 {
		max = 1
	}
	return &ManualProgressBar{
		out:         out,
		flush:       func() error { return nil },
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
	}
}

// NewTerminal returns a new ManualProgressBar which redraws itself in
// place on standard output. If standard output is not a terminal, the
// progress bar is never displayed.
func NewTerminal(width, max int) *ManualProgressBar {
	if !isatty.IsTerminal(os.Stdout.Fd()) &&
		!isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return New(io.Discard, width, max)
	}

	writer := uilive.New()
	writer.Out = os.Stdout

	p := New(writer, width, max)
	p.flush = writer.Flush
	return p
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Progress returns the fraction of progress made
func (p *ManualProgressBar) Progress() float64 {
	return p.currentProgress / p.maxProgress
}

// Display displays the progress bar. Frames are rendered at most once
// every 100ms, except for the final frame which is always rendered.
func (p *ManualProgressBar) Display() {
	done := p.currentProgress >= p.maxProgress
	if !done && time.Since(p.lastDisplay) < refresh {
		return
	}
	p.lastDisplay = time.Now()

	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.Progress() * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	fmt.Fprintf(&p.bar, "| [%.2f%% | elapsed: %v]", p.Progress()*100,
		time.Since(p.startTime).Truncate(time.Second))

	fmt.Fprintln(p.out, p.bar.String())
	p.flush()
}

// Step increments the progress and displays the progress bar
func (p *ManualProgressBar) Step() {
	p.Increment()
	p.Display()
}
