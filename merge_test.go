// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"testing"
)

// bakeGroups declares, bakes, and returns the compiled groups.
func bakeGroups(t *testing.T, declare func(*Graph)) (*Graph, []*RenderGroup) {
	t.Helper()
	g := New()
	g.SetSurfaceDimensions(testSurface())
	declare(g)
	if err := g.Bake(newTestDevice()); err != nil {
		t.Fatalf("Bake() = %v", err)
	}
	return g, g.plan.groups
}

func groupNames(groups []*RenderGroup) [][]string {
	var out [][]string
	for _, gr := range groups {
		var names []string
		for _, p := range gr.passes {
			names = append(names, p.name)
		}
		out = append(out, names)
	}
	return out
}

func TestMergeAttachmentInputChain(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		gb := g.AddPass("gbuffer", QueueGraphics)
		gb.AddColorOutput("albedo", AttachmentInfo{})
		gb.SetDepthStencilOutput("depth", AttachmentInfo{})

		light := g.AddPass("lighting", QueueGraphics)
		light.AddAttachmentInput("albedo")
		light.SetDepthStencilInput("depth")
		light.AddColorOutput("hdr", AttachmentInfo{})
	})

	if len(groups) != 1 {
		t.Fatalf("groups = %v, want one merged group", groupNames(groups))
	}
	if len(groups[0].passes) != 2 {
		t.Fatalf("merged group has %d passes, want 2", len(groups[0].passes))
	}
}

func TestTextureInputBreaksMerge(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("draw", QueueGraphics)
		a.AddColorOutput("scene", AttachmentInfo{})

		b := g.AddPass("post", QueueGraphics)
		b.AddTextureInput("scene")
		b.AddColorOutput("final", AttachmentInfo{})
	})

	if len(groups) != 2 {
		t.Fatalf("groups = %v, want two groups", groupNames(groups))
	}
}

func TestDimensionMismatchBreaksMerge(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("full", QueueGraphics)
		a.AddColorOutput("scene", AttachmentInfo{})

		b := g.AddPass("half", QueueGraphics)
		b.AddAttachmentInput("scene")
		b.AddColorOutput("small", AttachmentInfo{Width: 0.5, Height: 0.5})
	})

	if len(groups) != 2 {
		t.Fatalf("groups = %v, want two groups", groupNames(groups))
	}
}

func TestComputePassNeverMerges(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("draw", QueueGraphics)
		a.AddColorOutput("scene", AttachmentInfo{})

		c := g.AddPass("reduce", QueueCompute)
		c.AddTextureInput("scene")
		c.AddStorageTextureOutput("pyramid", AttachmentInfo{
			SizeClass:        SizeInputRelative,
			SizeRelativeName: "scene",
		})
	})

	if len(groups) != 2 {
		t.Fatalf("groups = %v, want two groups", groupNames(groups))
	}
	if groups[1].queue != QueueCompute {
		t.Errorf("second group queue = %v, want compute", groups[1].queue)
	}
}

func TestUnconnectedAdjacentPassesDoNotMerge(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("one", QueueGraphics)
		a.AddColorOutput("one-out", AttachmentInfo{})

		b := g.AddPass("two", QueueGraphics)
		b.AddColorOutput("two-out", AttachmentInfo{})
	})

	if len(groups) != 2 {
		t.Fatalf("groups = %v, want two groups", groupNames(groups))
	}
}

func TestChainedOutputDoesNotMergeWithSource(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("tonemap", QueueGraphics)
		a.AddColorOutput("ldr", AttachmentInfo{})

		b := g.AddPass("ui", QueueGraphics)
		b.AddColorOutput("frame", AttachmentInfo{}, "ldr")
	})

	if len(groups) != 2 {
		t.Fatalf("groups = %v, want two groups", groupNames(groups))
	}
}

func TestMergedGroupRenderArea(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("draw", QueueGraphics)
		a.AddColorOutput("scene", AttachmentInfo{Width: 0.25, Height: 0.25})
	})

	if len(groups) != 1 {
		t.Fatalf("groups = %v, want one group", groupNames(groups))
	}
	if groups[0].width != 480 || groups[0].height != 270 {
		t.Errorf("render area = %dx%d, want 480x270", groups[0].width, groups[0].height)
	}
}
