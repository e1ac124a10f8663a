package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gemindex/pkg/index"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the latest version to node labels and the coerced
	// requirement to edge labels.
	Detailed bool
	// Root restricts the diagram to gems reachable from this gem.
	// Empty draws the whole index.
	Root string
}

// ToDOT converts the latest entry of every gem in idx to Graphviz DOT.
// Dependency targets missing from the index (denied gems) are drawn dashed.
func ToDOT(idx *index.Index, opts Options) (string, error) {
	gems := idx.Names()
	if opts.Root != "" {
		if _, ok := idx.Lookup(opts.Root); !ok {
			return "", fmt.Errorf("gem %q not in index", opts.Root)
		}
		gems = reachable(idx, opts.Root)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	missing := make(map[string]bool)
	for _, name := range gems {
		g, _ := idx.Lookup(name)
		latest, _ := g.Latest()
		fmt.Fprintf(&buf, "  %q [label=%q];\n", name, fmtLabel(latest, name, opts.Detailed))

		for _, dep := range slices.Sorted(maps.Keys(latest.Dependencies)) {
			if _, ok := idx.Lookup(dep); !ok {
				missing[dep] = true
			}
			edge := fmt.Sprintf("  %q -> %q", name, dep)
			if opts.Detailed {
				edge += fmt.Sprintf(" [label=%q]", latest.Dependencies[dep])
			}
			edges = append(edges, edge+";\n")
		}
	}
	for _, name := range slices.Sorted(maps.Keys(missing)) {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", name, displayName(name))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

// reachable returns the names reachable from root through latest entries,
// in index order.
func reachable(idx *index.Index, root string) []string {
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		g, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		latest, _ := g.Latest()
		for dep := range latest.Dependencies {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var out []string
	for _, name := range idx.Names() {
		if seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func fmtLabel(e index.Entry, name string, detailed bool) string {
	label := displayName(name)
	if detailed && e.Version != "" {
		label += "\n" + e.Version
	}
	return label
}

// displayName drops the NUL suffix of pseudo-package names.
func displayName(name string) string {
	return strings.TrimRight(name, "\x00")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// viewBox anchored at the origin, so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
