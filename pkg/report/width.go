// Package report orders per-process summaries, renders one flame graph for
// each, and assembles the results into a single HTML page.
package report

// Config holds the graph sizing parameters.
type Config struct {
	BaseWidth int // width added for the busiest process
	MinWidth  int // width every graph gets regardless of sample count
}

// DefaultConfig returns the standard sizing.
func DefaultConfig() Config {
	return Config{
		BaseWidth: 1230,
		MinWidth:  200,
	}
}

// Width scales a process's graph by its share of the busiest process's
// samples: floor(base*total/maxTotal) + minOffset. maxTotal must be positive.
func Width(total, maxTotal, base, minOffset int) int {
	return base*total/maxTotal + minOffset
}

// Width applies c to total and maxTotal.
func (c Config) Width(total, maxTotal int) int {
	return Width(total, maxTotal, c.BaseWidth, c.MinWidth)
}
