// Package output prints per-process report summaries for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/flamereport/pkg/report"
	"github.com/danpilch/flamereport/pkg/trace"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatTSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown summary format %q (valid: table, json, tsv)", s)
}

// Row summarizes one process of the report.
type Row struct {
	Rank     int           `json:"rank"`
	PID      string        `json:"pid"`
	Samples  int           `json:"samples"`
	Runs     int           `json:"runs"`
	Share    float64       `json:"share_pct"`
	Width    int           `json:"width"`
	Duration time.Duration `json:"render_ns"`
	counts   []int
}

// Rows builds summary rows in report order. Fragments, when present, must be
// the orchestrator's output for the same summaries.
func Rows(summaries []trace.Summary, fragments []report.Fragment) []Row {
	ordered := report.Order(summaries)
	total := 0
	for _, s := range ordered {
		total += s.Total
	}

	rows := make([]Row, len(ordered))
	for i, s := range ordered {
		row := Row{
			Rank:    i + 1,
			PID:     s.ProcessID,
			Samples: s.Total,
			Runs:    len(s.Entries),
			counts:  s.Counts(),
		}
		if total > 0 {
			row.Share = float64(s.Total) / float64(total) * 100
		}
		if i < len(fragments) && fragments[i].ProcessID == s.ProcessID {
			row.Width = fragments[i].Width
			row.Duration = fragments[i].Duration
		}
		rows[i] = row
	}
	return rows
}

// Formatter handles output formatting.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// Render outputs the rows in the configured format.
func (f *Formatter) Render(title string, rows []Row) error {
	switch f.format {
	case FormatJSON:
		return f.renderJSON(title, rows)
	case FormatTSV:
		return f.renderTSV(rows)
	default:
		return f.renderTable(title, rows)
	}
}

func (f *Formatter) renderJSON(title string, rows []Row) error {
	samples := 0
	for _, r := range rows {
		samples += r.Samples
	}
	out := struct {
		Title     string `json:"title"`
		Processes []Row  `json:"processes"`
		Samples   int    `json:"samples"`
	}{
		Title:     title,
		Processes: rows,
		Samples:   samples,
	}
	if out.Processes == nil {
		out.Processes = []Row{}
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderTable outputs rows as a styled table.
func (f *Formatter) renderTable(title string, rows []Row) error {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	heading := "Flame Report"
	if title != "" {
		heading += ": " + title
	}
	fmt.Fprintln(f.writer, titleStyle.Render(heading))
	fmt.Fprintln(f.writer, strings.Repeat("═", 60))
	fmt.Fprintln(f.writer)

	if len(rows) == 0 {
		fmt.Fprintln(f.writer, dimStyle.Render("No samples found"))
		return nil
	}

	data := make([][]string, len(rows))
	samples := 0
	for i, r := range rows {
		width := "-"
		if r.Width > 0 {
			width = fmt.Sprintf("%dpx", r.Width)
		}
		data[i] = []string{
			fmt.Sprintf("%d", r.Rank),
			r.PID,
			fmt.Sprintf("%d", r.Samples),
			fmt.Sprintf("%.1f%%", r.Share),
			fmt.Sprintf("%d", r.Runs),
			width,
			RunSparkline(r.counts, 20),
		}
		samples += r.Samples
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "PID", "SAMPLES", "SHARE", "RUNS", "WIDTH", "RUN PROFILE").
		Rows(data...)

	fmt.Fprintln(f.writer, t)
	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "Summary: %d processes, %d samples\n", len(rows), samples)
	return nil
}

// renderTSV outputs rows as tab-separated values.
func (f *Formatter) renderTSV(rows []Row) error {
	fmt.Fprintln(f.writer, "RANK\tPID\tSAMPLES\tSHARE\tRUNS\tWIDTH\tRENDER_MS")
	for _, r := range rows {
		fmt.Fprintf(f.writer, "%d\t%s\t%d\t%.2f\t%d\t%d\t%.3f\n",
			r.Rank, r.PID, r.Samples, r.Share, r.Runs, r.Width,
			float64(r.Duration)/float64(time.Millisecond))
	}
	return nil
}
