// flamereport turns a per-process stack sample log into one HTML page with a
// flame graph per process, busiest process first.
//
// Usage:
//
//	flamereport <trace_file> [report_title] [flags] > report.html
//
// Each input line is "<pid>;<frame>;<frame>;...". Consecutive identical stacks
// of a process are collapsed into weighted folded stacks and handed to
// flamegraph.pl (or the built-in renderer).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/flamereport/pkg/debug"
	"github.com/danpilch/flamereport/pkg/flamegraph"
	"github.com/danpilch/flamereport/pkg/output"
	"github.com/danpilch/flamereport/pkg/report"
	"github.com/danpilch/flamereport/pkg/trace"
)

const (
	exitFailure      = 1
	exitMissingInput = 2
)

type options struct {
	renderer  string
	script    string
	baseWidth int
	minWidth  int
	timeout   time.Duration
	jobs      int
	output    string
	pageTitle string
	summary   string
	timing    bool
	dump      bool
	pprofAddr string
	logLevel  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := options{}
	cfg := report.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "flamereport <trace_file> [report_title]",
		Short: "Render per-process flame graphs from a stack sample log into one HTML page",
		Example: `  flamereport stacks.txt 1234 > flame.html
  flamereport stacks.txt "exchange 7" --renderer builtin -o flame.html
  flamereport stacks.txt --flamegraph /opt/FlameGraph/flamegraph.pl -j 4 --summary table`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.renderer, "renderer", "script", "flame graph renderer: script or builtin")
	f.StringVar(&opts.script, "flamegraph", flamegraph.DefaultScript, "path to flamegraph.pl for the script renderer")
	f.IntVar(&opts.baseWidth, "base-width", cfg.BaseWidth, "width in pixels added for the busiest process")
	f.IntVar(&opts.minWidth, "min-width", cfg.MinWidth, "width in pixels every graph starts from")
	f.DurationVar(&opts.timeout, "timeout", 0, "timeout per rendered graph (0 = none)")
	f.IntVarP(&opts.jobs, "jobs", "j", 1, "number of graphs rendered concurrently")
	f.StringVarP(&opts.output, "output", "o", "-", "write the HTML report to this file (- = stdout)")
	f.StringVar(&opts.pageTitle, "page-title", report.DefaultPageTitle, "HTML page title and heading")
	f.StringVar(&opts.summary, "summary", "", "print a per-process summary to stderr: table, json or tsv")
	f.BoolVar(&opts.timing, "timing", false, "print a render timing report to stderr")
	f.BoolVar(&opts.dump, "dump", false, "dump aggregated stacks to stderr before rendering")
	f.StringVar(&opts.pprofAddr, "pprof", "", "serve pprof on this address while running")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")

	return cmd
}

func run(ctx context.Context, opts options, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return &trace.MissingInputError{}
	}

	log, err := debug.NewLogger(opts.logLevel, stderr)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	if opts.baseWidth < 0 || opts.minWidth < 0 {
		return fmt.Errorf("--base-width and --min-width must not be negative")
	}

	var summaryFormat output.Format
	if opts.summary != "" {
		if summaryFormat, err = output.ParseFormat(opts.summary); err != nil {
			return err
		}
	}

	var renderer flamegraph.Renderer
	switch opts.renderer {
	case "script":
		renderer = flamegraph.NewScriptRenderer(opts.script, opts.timeout, log)
	case "builtin":
		renderer = flamegraph.NewSVGRenderer()
	default:
		return fmt.Errorf("unknown renderer %q (valid: script, builtin)", opts.renderer)
	}
	timed := debug.NewTimedRenderer(renderer)

	path := args[0]
	title := ""
	if len(args) > 1 {
		title = args[1]
	}

	if opts.pprofAddr != "" {
		stop, err := debug.StartPprofServer(opts.pprofAddr, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	set, err := trace.ReadFile(path)
	if err != nil {
		return err
	}
	summaries := trace.Summarize(set)
	log.WithFields(logrus.Fields{"file": path, "processes": len(summaries)}).Info("read samples")

	if opts.dump {
		debug.DumpSummaries(stderr, summaries)
	}

	o := report.NewOrchestrator(timed, log)
	o.Config = report.Config{BaseWidth: opts.baseWidth, MinWidth: opts.minWidth}
	o.Jobs = opts.jobs

	fragments, err := o.RenderAll(ctx, summaries)
	if opts.timing {
		debug.TimingReport(stderr, timed.Timings())
	}
	if err != nil {
		return err
	}

	if summaryFormat != "" {
		if err := output.NewFormatter(summaryFormat, stderr).Render(title, output.Rows(summaries, fragments)); err != nil {
			return err
		}
	}

	return writeReport(opts.output, stdout, fragments, report.Page{Title: opts.pageTitle, Context: title})
}

func writeReport(path string, stdout io.Writer, fragments []report.Fragment, page report.Page) error {
	if path == "" || path == "-" {
		return report.Assemble(stdout, fragments, page)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create report: %w", err)
	}
	if err := report.Assemble(f, fragments, page); err != nil {
		f.Close()
		return fmt.Errorf("cannot write report: %w", err)
	}
	return f.Close()
}

func exitCode(err error) int {
	var missing *trace.MissingInputError
	if errors.As(err, &missing) {
		return exitMissingInput
	}
	return exitFailure
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}
