// Package flamegraph renders folded stacks ("frame;frame;frame count" lines)
// into flame graph markup, either through an external flamegraph.pl style
// program or with the built-in SVG renderer.
package flamegraph

import (
	"context"
	"io"
	"strconv"
)

// Options configures a single flame graph render.
type Options struct {
	Title string
	Width int  // image width in pixels
	Hash  bool // colour frames by a hash of their name
}

// Args returns the command line flags understood by flamegraph.pl.
func (o Options) Args() []string {
	args := []string{"--title", o.Title, "--width", strconv.Itoa(o.Width)}
	if o.Hash {
		args = append(args, "--hash")
	}
	return args
}

// Renderer turns folded stack lines into a self-contained markup fragment.
type Renderer interface {
	Render(ctx context.Context, opts Options, folded io.Reader) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, opts Options, folded io.Reader) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, opts Options, folded io.Reader) (string, error) {
	return f(ctx, opts, folded)
}
