package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/flamereport/pkg/trace"
)

// DumpSummaries outputs every aggregated entry before rendering.
func DumpSummaries(w io.Writer, summaries []trace.Summary) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Aggregated Samples Dump"))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 85)))

	for _, s := range summaries {
		fmt.Fprintf(w, "  %s %s\n",
			header.Render("PID "+s.ProcessID),
			dim.Render(fmt.Sprintf("%d samples in %d runs", s.Total, len(s.Entries))))
		for _, e := range s.Entries {
			fmt.Fprintf(w, "  %8d  %s\n", e.Count, e.Stack)
		}
		fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 85)))
	}
}
