package output

import "strings"

// sparkline block characters from lowest to highest
var sparkBlocks = []rune{
	'\u2581', // ▁
	'\u2582', // ▂
	'\u2583', // ▃
	'\u2584', // ▄
	'\u2585', // ▅
	'\u2586', // ▆
	'\u2587', // ▇
	'\u2588', // █
}

// RunSparkline draws the run lengths of a summary, in arrival order, as a
// Unicode sparkline of at most width cells. Longer inputs are bucketed by
// summing neighbouring runs.
func RunSparkline(counts []int, width int) string {
	if len(counts) == 0 || width < 1 {
		return ""
	}
	values := bucket(counts, width)
	return renderSparkline(values)
}

// bucket sums counts into at most n buckets of near-equal size.
func bucket(counts []int, n int) []float64 {
	if len(counts) <= n {
		out := make([]float64, len(counts))
		for i, c := range counts {
			out[i] = float64(c)
		}
		return out
	}
	out := make([]float64, n)
	for i, c := range counts {
		out[i*n/len(counts)] += float64(c)
	}
	return out
}

func renderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	rng := hi - lo
	for _, v := range values {
		idx := 0
		if rng > 0 {
			idx = int((v - lo) / rng * float64(len(sparkBlocks)-1))
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(sparkBlocks[idx])
	}

	return b.String()
}
