// Package nodelink renders a gem index as a node-link dependency diagram.
//
// Each gem becomes a box; each dependency of its latest entry becomes an
// arrow. Gems referenced but absent from the index, typically denied ones,
// are drawn with dashed outlines.
//
//	dot, err := nodelink.ToDOT(idx, nodelink.Options{Root: "rails", Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Rendering uses [github.com/goccy/go-graphviz] in-process.
package nodelink
