package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/danpilch/flamereport/pkg/flamegraph"
	"github.com/danpilch/flamereport/pkg/trace"
)

// Fragment is the rendered graph of one process.
type Fragment struct {
	ProcessID string
	Total     int
	Width     int
	Body      string
	Duration  time.Duration
}

// Header is the label shown above the fragment.
func (f Fragment) Header() string {
	return fmt.Sprintf("PID: %s (%d samples)", f.ProcessID, f.Total)
}

// RenderFailure reports that the graph of one process could not be rendered.
type RenderFailure struct {
	ProcessID string
	Err       error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("rendering process %s: %v", e.ProcessID, e.Err)
}

func (e *RenderFailure) Unwrap() error {
	return e.Err
}

// Orchestrator renders summaries busiest first.
type Orchestrator struct {
	Renderer flamegraph.Renderer
	Config   Config
	Jobs     int // concurrent renders; values below 2 render sequentially
	Log      logrus.FieldLogger
}

// NewOrchestrator creates a sequential orchestrator with the default sizing.
func NewOrchestrator(r flamegraph.Renderer, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		Renderer: r,
		Config:   DefaultConfig(),
		Jobs:     1,
		Log:      log,
	}
}

// Order returns the summaries sorted by descending sample count. Equal
// counts keep their collection order.
func Order(summaries []trace.Summary) []trace.Summary {
	ordered := make([]trace.Summary, len(summaries))
	copy(ordered, summaries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Total > ordered[j].Total
	})
	return ordered
}

// RenderAll renders one fragment per summary in report order. The first
// failure aborts the run and no fragments are returned.
func (o *Orchestrator) RenderAll(ctx context.Context, summaries []trace.Summary) ([]Fragment, error) {
	ordered := Order(summaries)
	if len(ordered) == 0 || ordered[0].Total == 0 {
		o.Log.Info("no samples, nothing to render")
		return nil, nil
	}
	maxTotal := ordered[0].Total

	fragments := make([]Fragment, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	jobs := o.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, s := range ordered {
		if gctx.Err() != nil {
			break
		}
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frag, err := o.render(gctx, s, maxTotal)
			if err != nil {
				return err
			}
			fragments[i] = frag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fragments, nil
}

func (o *Orchestrator) render(ctx context.Context, s trace.Summary, maxTotal int) (Fragment, error) {
	width := o.Config.Width(s.Total, maxTotal)
	log := o.Log.WithFields(logrus.Fields{
		"pid":     s.ProcessID,
		"samples": s.Total,
		"entries": len(s.Entries),
		"width":   width,
	})
	log.Debug("rendering flame graph")

	var folded strings.Builder
	if err := trace.WriteFolded(&folded, s); err != nil {
		return Fragment{}, &RenderFailure{ProcessID: s.ProcessID, Err: err}
	}

	start := time.Now()
	body, err := o.Renderer.Render(ctx, flamegraph.Options{
		Title: s.ProcessID,
		Width: width,
		Hash:  true,
	}, strings.NewReader(folded.String()))
	if err != nil {
		log.WithError(err).Error("render failed")
		return Fragment{}, &RenderFailure{ProcessID: s.ProcessID, Err: err}
	}
	elapsed := time.Since(start)
	log.WithField("duration", elapsed).Info("rendered flame graph")

	return Fragment{
		ProcessID: s.ProcessID,
		Total:     s.Total,
		Width:     width,
		Body:      body,
		Duration:  elapsed,
	}, nil
}
