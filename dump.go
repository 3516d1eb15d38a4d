// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"
	"io"
)

// DumpSchedule writes a human-readable description of the compiled plan:
// render groups in submission order with their subpasses, barriers and
// handoffs, followed by the physical allocation table. Valid only after a
// successful Bake.
func (g *Graph) DumpSchedule(w io.Writer) error {
	if g.plan == nil {
		return ErrNotBaked
	}
	d := &dumper{w: w}

	for gi, gr := range g.plan.groups {
		d.printf("group %d [%s]", gi, gr.queue)
		if gr.queue == QueueGraphics {
			d.printf(" %dx%d", gr.width, gr.height)
		}
		d.printf("\n")
		for _, id := range gr.waits {
			d.printf("  wait handoff %d\n", id)
		}
		for _, b := range gr.barriers {
			if b.FromQueue != b.ToQueue {
				d.printf("  barrier %s: %s -> %s (queue %s -> %s)\n",
					b.Resource.name, b.FromLayout, b.ToLayout, b.FromQueue, b.ToQueue)
			} else {
				d.printf("  barrier %s: %s -> %s\n", b.Resource.name, b.FromLayout, b.ToLayout)
			}
		}
		for pi, p := range gr.passes {
			d.printf("  subpass %d: %s\n", pi, p.name)
			for _, u := range p.uses {
				d.printf("    %s %s\n", u.use, u.res.name)
			}
		}
		for _, id := range gr.signals {
			d.printf("  signal handoff %d\n", id)
		}
	}

	d.printf("physical resources: %d\n", len(g.physical))
	for _, phys := range g.physical {
		d.printf("  slot %d: %s", phys.index, phys.dim)
		if phys.surface {
			d.printf(" [surface]")
		}
		d.printf("\n")
		for i, res := range phys.logical {
			d.printf("    %s live groups [%d, %d]\n", res.name, phys.ranges[i][0], phys.ranges[i][1])
		}
	}
	return d.err
}

// dumper tracks the first write error so callers check once.
type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}
