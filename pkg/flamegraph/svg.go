package flamegraph

import (
	"context"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

const (
	frameHeight  = 16
	fontSize     = 12
	headerHeight = 40
	margin       = 10
)

// SVGRenderer draws flame graphs in-process as inline SVG.
type SVGRenderer struct {
	ColorScheme string // "hot", "cold", "mem"
}

// NewSVGRenderer returns a built-in renderer using the hot palette.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{ColorScheme: "hot"}
}

// frame represents a stack frame in the flame graph tree.
type frame struct {
	name     string
	value    int
	children map[string]*frame
}

func newFrame(name string) *frame {
	return &frame{
		name:     name,
		children: make(map[string]*frame),
	}
}

// Render builds a frame tree from the folded lines and writes it as an SVG
// element suitable for embedding in an HTML page.
func (s *SVGRenderer) Render(ctx context.Context, opts Options, folded io.Reader) (string, error) {
	stacks, totalSamples, err := ParseFolded(folded)
	if err != nil {
		return "", fmt.Errorf("reading folded stacks: %w", err)
	}
	if totalSamples == 0 {
		return "", fmt.Errorf("no samples found in folded stacks")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	width := opts.Width
	if width <= 0 {
		width = 1200
	}

	root := newFrame("all")
	for _, st := range stacks {
		node := root
		for _, name := range st.Frames {
			child, ok := node.children[name]
			if !ok {
				child = newFrame(name)
				node.children[name] = child
			}
			child.value += st.Count
			node = child
		}
		root.value += st.Count
	}

	maxDepth := getMaxDepth(root, 0)
	height := (maxDepth+2)*frameHeight + headerHeight + 20

	var b strings.Builder
	fmt.Fprintf(&b, `<svg version="1.1" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<style>
  .func:hover { stroke:black; stroke-width:0.5; cursor:pointer; }
  text { font-family: monospace; font-size: %dpx; }
</style>
<rect x="0" y="0" width="%d" height="%d" fill="white"/>
<text x="%d" y="20" text-anchor="middle" style="font-size:16px; font-weight:bold;">%s</text>
<text x="%d" y="35" text-anchor="middle" style="font-size:12px; fill:#666;">(%d samples)</text>
`,
		width, height, fontSize,
		width, height,
		width/2, html.EscapeString(opts.Title),
		width/2, totalSamples)

	p := painter{
		w:            &b,
		baseY:        height - 20,
		totalSamples: totalSamples,
		scheme:       s.ColorScheme,
		hash:         opts.Hash,
	}
	p.paint(root, margin, width-2*margin, 0)

	b.WriteString("</svg>\n")
	return b.String(), nil
}

type painter struct {
	w            io.Writer
	baseY        int
	totalSamples int
	scheme       string
	hash         bool
}

func (p *painter) paint(f *frame, x, width, depth int) {
	if width < 1 || f.value == 0 {
		return
	}

	y := p.baseY - depth*frameHeight
	r, g, b := p.color(f.name, depth)

	fmt.Fprintf(p.w, `<g class="func">
<rect x="%d" y="%d" width="%d" height="%d" fill="rgb(%d,%d,%d)" rx="1"/>
`, x, y-frameHeight, width, frameHeight-1, r, g, b)

	if label := fitLabel(f.name, width); label != "" {
		fmt.Fprintf(p.w, `<text x="%d" y="%d" fill="black">%s</text>
`, x+2, y-4, html.EscapeString(label))
	}

	pct := float64(f.value) / float64(p.totalSamples) * 100
	fmt.Fprintf(p.w, `<title>%s (%d samples, %.1f%%)</title>
</g>
`, html.EscapeString(f.name), f.value, pct)

	names := make([]string, 0, len(f.children))
	for name := range f.children {
		names = append(names, name)
	}
	sort.Strings(names)

	childX := x
	for _, name := range names {
		child := f.children[name]
		childWidth := int(float64(width) * float64(child.value) / float64(f.value))
		if childWidth < 1 {
			childWidth = 1
		}
		p.paint(child, childX, childWidth, depth+1)
		childX += childWidth
	}
}

// fitLabel truncates name to what fits in width pixels.
func fitLabel(name string, width int) string {
	if width <= 40 {
		return ""
	}
	maxChars := (width - 4) / 7
	if utf8.RuneCountInString(name) <= maxChars {
		return name
	}
	if maxChars > 3 {
		return string([]rune(name)[:maxChars-2]) + ".."
	}
	return ""
}

func (p *painter) color(name string, depth int) (int, int, int) {
	if p.hash {
		return hashColor(name, p.scheme)
	}
	return depthColor(depth, p.scheme)
}

// hashColor keeps a function's colour stable across graphs.
func hashColor(name, scheme string) (int, int, int) {
	h := xxhash.Sum64String(name)
	v1 := int(h & 0xff)
	v2 := int(h >> 8 & 0xff)
	switch scheme {
	case "cold":
		return 0 + v1*55/255, 80 + v2*150/255, 190 + v1*65/255
	case "mem":
		return 0, 190 + v1*50/255, v2 * 210 / 255
	default:
		return 205 + v1*50/255, v2 * 230 / 255, v1 * 55 / 255
	}
}

func depthColor(depth int, scheme string) (int, int, int) {
	switch scheme {
	case "cold":
		g := 50 + (depth*30)%150
		b := 150 + (depth*20)%100
		return 30, g, b
	case "mem":
		g := 190 + (depth*15)%60
		return 30, g, 30
	default:
		r := 200 + (depth*15)%55
		g := 50 + (depth*40)%150
		return r, g, 30
	}
}

func getMaxDepth(f *frame, depth int) int {
	deepest := depth
	for _, child := range f.children {
		if d := getMaxDepth(child, depth+1); d > deepest {
			deepest = d
		}
	}
	return deepest
}
