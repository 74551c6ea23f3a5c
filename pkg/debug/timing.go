package debug

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/flamereport/pkg/flamegraph"
)

var (
	debugTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	debugDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	debugFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// RenderTiming records the duration of one Render call.
type RenderTiming struct {
	Title    string
	Width    int
	Duration time.Duration
	Failed   bool
}

// TimedRenderer wraps a flamegraph.Renderer to record render durations.
type TimedRenderer struct {
	inner flamegraph.Renderer

	mu      sync.Mutex
	timings []RenderTiming
}

// NewTimedRenderer wraps a renderer with timing instrumentation.
func NewTimedRenderer(r flamegraph.Renderer) *TimedRenderer {
	return &TimedRenderer{
		inner: r,
	}
}

// Render runs the wrapped renderer and records its duration.
func (t *TimedRenderer) Render(ctx context.Context, opts flamegraph.Options, folded io.Reader) (string, error) {
	start := time.Now()
	out, err := t.inner.Render(ctx, opts, folded)
	timing := RenderTiming{
		Title:    opts.Title,
		Width:    opts.Width,
		Duration: time.Since(start),
		Failed:   err != nil,
	}

	t.mu.Lock()
	t.timings = append(t.timings, timing)
	t.mu.Unlock()
	return out, err
}

// Timings returns the recorded timings in completion order.
func (t *TimedRenderer) Timings() []RenderTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RenderTiming, len(t.timings))
	copy(out, t.timings)
	return out
}

// TimingReport prints a styled timing summary for all renders.
func TimingReport(w io.Writer, timings []RenderTiming) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Render Timing Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 48)))
	fmt.Fprintf(w, "  %s  %s  %s\n",
		debugHeader.Render("PID                 "),
		debugHeader.Render("WIDTH "),
		debugHeader.Render("DURATION    "))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 48)))

	var total time.Duration
	for _, t := range timings {
		status := ""
		if t.Failed {
			status = " " + debugFail.Render("FAILED")
		}
		fmt.Fprintf(w, "  %-20s %6d %v%s\n", t.Title, t.Width, t.Duration, status)
		total += t.Duration
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 48)))
	fmt.Fprintf(w, "  %-27s %v\n",
		lipgloss.NewStyle().Bold(true).Render("TOTAL"), total)
}
