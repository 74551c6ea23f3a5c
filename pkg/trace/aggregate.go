package trace

import (
	"fmt"
	"io"
	"strings"
)

// Entry is a maximal run of identical consecutive stack paths.
type Entry struct {
	Stack string `json:"stack"`
	Count int    `json:"count"`
}

// Summary is the run-length encoded form of one trace.
type Summary struct {
	ProcessID string  `json:"pid"`
	Total     int     `json:"total"`
	Entries   []Entry `json:"entries"`
}

// Aggregate collapses consecutive identical stacks of t into weighted
// entries, keeping arrival order.
func Aggregate(t Trace) Summary {
	s := Summary{ProcessID: t.ProcessID}
	for i, stack := range t.Stacks {
		if i == 0 || stack != s.Entries[len(s.Entries)-1].Stack {
			s.Entries = append(s.Entries, Entry{Stack: stack, Count: 1})
		} else {
			s.Entries[len(s.Entries)-1].Count++
		}
		s.Total++
	}
	return s
}

// Summarize aggregates every trace of set, in collection order.
func Summarize(set *Set) []Summary {
	traces := set.Traces()
	out := make([]Summary, 0, len(traces))
	for _, t := range traces {
		out = append(out, Aggregate(t))
	}
	return out
}

// Expand rebuilds the trace a summary was derived from.
func Expand(s Summary) Trace {
	t := Trace{ProcessID: s.ProcessID, Stacks: make([]string, 0, s.Total)}
	for _, e := range s.Entries {
		for i := 0; i < e.Count; i++ {
			t.Stacks = append(t.Stacks, e.Stack)
		}
	}
	return t
}

// Counts returns the entry counts in order.
func (s Summary) Counts() []int {
	counts := make([]int, len(s.Entries))
	for i, e := range s.Entries {
		counts[i] = e.Count
	}
	return counts
}

// FoldedLine encodes an entry in folded-stack form: "<stack> <count>".
func (e Entry) FoldedLine() string {
	return fmt.Sprintf("%s %d", e.Stack, e.Count)
}

// WriteFolded writes every entry of s as one folded line.
func WriteFolded(w io.Writer, s Summary) error {
	var b strings.Builder
	for _, e := range s.Entries {
		b.WriteString(e.FoldedLine())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
