package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/flamereport/pkg/flamegraph"
	"github.com/danpilch/flamereport/pkg/trace"
)

// recorder is a renderer that records every call and echoes its input.
type recorder struct {
	mu    sync.Mutex
	calls []call
	fail  string
	delay func(flamegraph.Options) time.Duration
}

type call struct {
	opts   flamegraph.Options
	folded string
}

func (r *recorder) Render(ctx context.Context, opts flamegraph.Options, folded io.Reader) (string, error) {
	in, err := io.ReadAll(folded)
	if err != nil {
		return "", err
	}
	if r.delay != nil {
		time.Sleep(r.delay(opts))
	}
	r.mu.Lock()
	r.calls = append(r.calls, call{opts: opts, folded: string(in)})
	r.mu.Unlock()
	if opts.Title == r.fail {
		return "", errors.New("renderer exited with status 2")
	}
	return fmt.Sprintf("<svg id=%q>%s</svg>", opts.Title, in), nil
}

func newTestOrchestrator(r flamegraph.Renderer) *Orchestrator {
	log, _ := test.NewNullLogger()
	return NewOrchestrator(r, log)
}

func summary(pid string, entries ...trace.Entry) trace.Summary {
	s := trace.Summary{ProcessID: pid, Entries: entries}
	for _, e := range entries {
		s.Total += e.Count
	}
	return s
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 1430, Width(3, 3, 1230, 200))
	assert.Equal(t, 610, Width(1, 3, 1230, 200))
	assert.Equal(t, 1430, DefaultConfig().Width(77, 77))

	c := DefaultConfig()
	prev := c.Width(0, 100)
	assert.Equal(t, 200, prev)
	for total := 1; total <= 100; total++ {
		w := c.Width(total, 100)
		assert.GreaterOrEqual(t, w, prev)
		prev = w
	}
}

func TestOrder(t *testing.T) {
	in := []trace.Summary{
		summary("small", trace.Entry{Stack: "x", Count: 40}),
		summary("tie-a", trace.Entry{Stack: "x", Count: 70}),
		summary("big", trace.Entry{Stack: "x", Count: 100}),
		summary("tie-b", trace.Entry{Stack: "x", Count: 70}),
	}
	var pids []string
	for _, s := range Order(in) {
		pids = append(pids, s.ProcessID)
	}
	assert.Equal(t, []string{"big", "tie-a", "tie-b", "small"}, pids)
	assert.Equal(t, "small", in[0].ProcessID, "input must not be reordered")
}

func TestRenderAllScenario(t *testing.T) {
	set, err := trace.Read(strings.NewReader("2;x\n1;a;b\n1;a;b\n1;a;c\n"))
	require.NoError(t, err)

	r := &recorder{}
	frags, err := newTestOrchestrator(r).RenderAll(context.Background(), trace.Summarize(set))
	require.NoError(t, err)

	require.Len(t, r.calls, 2)
	assert.Equal(t, flamegraph.Options{Title: "1", Width: 1430, Hash: true}, r.calls[0].opts)
	assert.Equal(t, "a;b 2\na;c 1\n", r.calls[0].folded)
	assert.Equal(t, flamegraph.Options{Title: "2", Width: 610, Hash: true}, r.calls[1].opts)
	assert.Equal(t, "x 1\n", r.calls[1].folded)

	require.Len(t, frags, 2)
	assert.Equal(t, "PID: 1 (3 samples)", frags[0].Header())
	assert.Equal(t, 1430, frags[0].Width)
	assert.Equal(t, "PID: 2 (1 samples)", frags[1].Header())
	assert.Equal(t, `<svg id="2">x 1
</svg>`, frags[1].Body)
}

func TestRenderAllEmpty(t *testing.T) {
	r := &recorder{}
	o := newTestOrchestrator(r)

	frags, err := o.RenderAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, frags)

	frags, err = o.RenderAll(context.Background(), []trace.Summary{{ProcessID: "idle"}})
	require.NoError(t, err)
	assert.Empty(t, frags)
	assert.Empty(t, r.calls)
}

func TestRenderAllFailure(t *testing.T) {
	r := &recorder{fail: "b"}
	frags, err := newTestOrchestrator(r).RenderAll(context.Background(), []trace.Summary{
		summary("a", trace.Entry{Stack: "x", Count: 3}),
		summary("b", trace.Entry{Stack: "y", Count: 2}),
		summary("c", trace.Entry{Stack: "z", Count: 1}),
	})
	require.Error(t, err)
	assert.Nil(t, frags)

	var failure *RenderFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "b", failure.ProcessID)
	assert.Contains(t, err.Error(), "status 2")
	// sequential mode stops at the first failure
	assert.Len(t, r.calls, 2)
}

func TestRenderAllParallelKeepsOrder(t *testing.T) {
	// Busier processes finish last so completion order is reversed.
	r := &recorder{delay: func(o flamegraph.Options) time.Duration {
		return time.Duration(o.Width) * 20 * time.Microsecond
	}}
	o := newTestOrchestrator(r)
	o.Jobs = 4

	var in []trace.Summary
	for i := 1; i <= 8; i++ {
		in = append(in, summary(fmt.Sprintf("p%d", i), trace.Entry{Stack: "s", Count: i}))
	}
	frags, err := o.RenderAll(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, frags, 8)
	for i, f := range frags {
		assert.Equal(t, fmt.Sprintf("p%d", 8-i), f.ProcessID)
	}
}

func TestRenderAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := flamegraph.RendererFunc(func(ctx context.Context, _ flamegraph.Options, _ io.Reader) (string, error) {
		return "", ctx.Err()
	})
	_, err := newTestOrchestrator(r).RenderAll(ctx, []trace.Summary{summary("a", trace.Entry{Stack: "x", Count: 1})})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssemble(t *testing.T) {
	var b strings.Builder
	err := Assemble(&b, []Fragment{
		{ProcessID: "1", Total: 100, Body: "<svg>one</svg>"},
		{ProcessID: "2", Total: 40, Body: "<svg>two</svg>"},
	}, Page{Context: "exchange <7>"})
	require.NoError(t, err)
	out := b.String()

	assert.Contains(t, out, "<title>Flame Report</title>")
	assert.Contains(t, out, "<h3>Trace: exchange &lt;7&gt;</h3>")
	assert.Contains(t, out, "<h4>PID: 1 (100 samples)</h4>\n<svg>one</svg><br /><br /><h4>PID: 2 (40 samples)</h4>\n<svg>two</svg>")
	assert.Less(t, strings.Index(out, "PID: 1"), strings.Index(out, "PID: 2"))
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestAssembleEmpty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Assemble(&b, nil, Page{Title: "Exchange Flame", Context: "42"}))
	out := b.String()
	assert.Contains(t, out, "<title>Exchange Flame</title>")
	assert.Contains(t, out, "<h2>Exchange Flame</h2>")
	assert.Contains(t, out, "<h3>Trace: 42</h3>")
	assert.NotContains(t, out, "<h4>")
	assert.NotContains(t, out, "<br />")
}
