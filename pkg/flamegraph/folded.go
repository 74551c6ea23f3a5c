package flamegraph

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Folded is one parsed folded-stack line.
type Folded struct {
	Frames []string
	Count  int
}

// ParseFolded reads "frame;frame;frame count" lines. The count is the last
// space separated field, so frames may contain spaces. Lines without a
// positive count are skipped.
func ParseFolded(r io.Reader) ([]Folded, int, error) {
	var (
		stacks []Folded
		total  int
	)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if f, ok := parseFoldedLine(line); ok {
			stacks = append(stacks, f)
			total += f.Count
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return stacks, total, nil
}

func parseFoldedLine(line string) (Folded, bool) {
	line = strings.TrimRight(line, "\r\n")
	idx := strings.LastIndexByte(line, ' ')
	if idx < 0 {
		return Folded{}, false
	}
	count, err := strconv.Atoi(line[idx+1:])
	if err != nil || count <= 0 {
		return Folded{}, false
	}
	return Folded{
		Frames: strings.Split(line[:idx], ";"),
		Count:  count,
	}, true
}
