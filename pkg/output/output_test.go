package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/flamereport/pkg/report"
	"github.com/danpilch/flamereport/pkg/trace"
)

func testSummaries() []trace.Summary {
	return []trace.Summary{
		{ProcessID: "2", Total: 1, Entries: []trace.Entry{{Stack: "x", Count: 1}}},
		{ProcessID: "1", Total: 3, Entries: []trace.Entry{{Stack: "a;b", Count: 2}, {Stack: "a;c", Count: 1}}},
	}
}

func TestRows(t *testing.T) {
	frags := []report.Fragment{
		{ProcessID: "1", Total: 3, Width: 1430, Duration: 2 * time.Millisecond},
		{ProcessID: "2", Total: 1, Width: 610},
	}
	rows := Rows(testSummaries(), frags)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "1", rows[0].PID)
	assert.Equal(t, 3, rows[0].Samples)
	assert.Equal(t, 2, rows[0].Runs)
	assert.InDelta(t, 75.0, rows[0].Share, 0.001)
	assert.Equal(t, 1430, rows[0].Width)
	assert.Equal(t, 2*time.Millisecond, rows[0].Duration)

	assert.Equal(t, "2", rows[1].PID)
	assert.Equal(t, 610, rows[1].Width)
}

func TestRowsWithoutFragments(t *testing.T) {
	rows := Rows(testSummaries(), nil)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Width)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, &buf).Render("exchange 7", Rows(testSummaries(), nil)))

	var out struct {
		Title     string `json:"title"`
		Samples   int    `json:"samples"`
		Processes []struct {
			PID     string `json:"pid"`
			Samples int    `json:"samples"`
		} `json:"processes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "exchange 7", out.Title)
	assert.Equal(t, 4, out.Samples)
	require.Len(t, out.Processes, 2)
	assert.Equal(t, "1", out.Processes[0].PID)
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTSV, &buf).Render("", Rows(testSummaries(), nil)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1\t1\t3\t75.00\t2\t0\t0.000", lines[1])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable, &buf).Render("run 9", Rows(testSummaries(), nil)))
	out := buf.String()
	assert.Contains(t, out, "run 9")
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "Summary: 2 processes, 4 samples")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatTable, &buf).Render("", nil))
	assert.Contains(t, buf.String(), "No samples found")
}

func TestRunSparkline(t *testing.T) {
	assert.Equal(t, "", RunSparkline(nil, 10))
	assert.Equal(t, "▁█", RunSparkline([]int{1, 8}, 10))
	assert.Equal(t, "▁▁▁", RunSparkline([]int{4, 4, 4}, 10))

	long := make([]int, 100)
	for i := range long {
		long[i] = i
	}
	assert.Equal(t, 10, len([]rune(RunSparkline(long, 10))))
}
