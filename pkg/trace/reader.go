package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseLine splits a sample line into its process id and stack path.
// Only the first separator is significant; a line without one has an
// empty stack path.
func ParseLine(line string) Sample {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	pid, stack, _ := strings.Cut(line, Separator)
	return Sample{ProcessID: pid, Stack: stack}
}

// Read groups the lines of r into traces. Grouping follows contiguity: a new
// trace starts whenever the process id differs from the previous line's,
// and a trace for an id seen earlier is overwritten by the newer run.
// A blank line is a sample with an empty process id and stack path, so it
// ends the current run.
func Read(r io.Reader) (*Set, error) {
	if r == nil {
		return nil, &MissingInputError{}
	}

	set := NewSet()
	var (
		current *Trace
		lastPID string
	)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			s := ParseLine(line)
			if current == nil || s.ProcessID != lastPID {
				current = set.start(s.ProcessID)
				lastPID = s.ProcessID
			}
			current.Stacks = append(current.Stacks, s.Stack)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
	}
	return set, nil
}

// ReadFile opens path and reads it with Read. A missing path or a file that
// cannot be opened is reported as a MissingInputError.
func ReadFile(path string) (*Set, error) {
	if path == "" {
		return nil, &MissingInputError{}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &MissingInputError{Path: path, Err: err}
	}
	defer f.Close()

	set, err := Read(f)
	if err != nil {
		return nil, &MissingInputError{Path: path, Err: err}
	}
	return set, nil
}
