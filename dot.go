// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the declared pass graph to Graphviz DOT format. Passes
// are nodes, shaded by queue; edges carry the resource name that connects
// producer to consumer. After a successful Bake, merged render groups are
// drawn as clusters.
//
// The resulting DOT string renders with any Graphviz toolchain; RenderSVG
// does it in-process.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph framegraph {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12];\n\n")

	grouped := make(map[int]int)
	if g.plan != nil {
		for gi, gr := range g.plan.groups {
			if len(gr.passes) < 2 {
				continue
			}
			for _, p := range gr.passes {
				grouped[p.index] = gi
			}
		}
	}

	emitted := make(map[int]bool)
	if g.plan != nil {
		for gi, gr := range g.plan.groups {
			if len(gr.passes) < 2 {
				continue
			}
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", gi)
			fmt.Fprintf(&buf, "    label=\"group %d\";\n", gi)
			buf.WriteString("    style=dashed;\n")
			for _, p := range gr.passes {
				fmt.Fprintf(&buf, "    %q [fillcolor=%s];\n", p.name, queueFill(p.queue))
				emitted[p.index] = true
			}
			buf.WriteString("  }\n")
		}
	}
	for _, p := range g.passes {
		if emitted[p.index] {
			continue
		}
		fmt.Fprintf(&buf, "  %q [fillcolor=%s];\n", p.name, queueFill(p.queue))
	}

	buf.WriteString("\n")
	for _, consumer := range g.passes {
		for _, u := range consumer.inputs() {
			for _, w := range u.res.writers {
				if w == consumer.index {
					continue
				}
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
					g.passes[w].name, consumer.name, u.res.name)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func queueFill(q QueueFlags) string {
	switch {
	case q&QueueGraphics != 0:
		return "lightblue"
	case q&QueueCompute != 0:
		return "lightyellow"
	default:
		return "lightgrey"
	}
}

// RenderSVG renders a DOT graph to SVG using the in-process Graphviz
// engine. Pair it with ToDOT to visualize a graph without external tools.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("framegraph: init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("framegraph: parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("framegraph: render: %w", err)
	}
	return buf.Bytes(), nil
}
