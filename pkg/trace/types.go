// Package trace reads per-process stack-sample logs and collapses them into
// weighted folded stacks.
package trace

import "fmt"

// Separator delimits the process id from the stack path, and the frames
// within a stack path.
const Separator = ";"

// Sample is one parsed line of a sample log.
type Sample struct {
	ProcessID string
	Stack     string
}

// Trace is the ordered list of stack paths recorded for one contiguous run
// of a process id.
type Trace struct {
	ProcessID string
	Stacks    []string
}

// Set holds one trace per process id, in the order ids were first seen.
type Set struct {
	order  []string
	traces map[string]*Trace
}

// NewSet creates an empty trace set.
func NewSet() *Set {
	return &Set{
		traces: make(map[string]*Trace),
	}
}

// start begins a new trace for pid. An existing trace for the same id is
// replaced but keeps its original position.
func (s *Set) start(pid string) *Trace {
	if _, ok := s.traces[pid]; !ok {
		s.order = append(s.order, pid)
	}
	t := &Trace{ProcessID: pid}
	s.traces[pid] = t
	return t
}

// Len returns the number of distinct process ids.
func (s *Set) Len() int {
	return len(s.order)
}

// Get returns the trace for a process id.
func (s *Set) Get(pid string) (Trace, bool) {
	t, ok := s.traces[pid]
	if !ok {
		return Trace{}, false
	}
	return *t, true
}

// Traces returns all traces in collection order.
func (s *Set) Traces() []Trace {
	out := make([]Trace, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, *s.traces[pid])
	}
	return out
}

// MissingInputError reports that no usable sample log was supplied.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	if e.Path == "" {
		return "missing trace input"
	}
	if e.Err == nil {
		return fmt.Sprintf("missing trace input %q", e.Path)
	}
	return fmt.Sprintf("missing trace input %q: %v", e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}
