// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"strings"
	"testing"
)

func TestToDOTUnbaked(t *testing.T) {
	g := New()
	g.SetSurfaceDimensions(testSurface())
	declareDeferred(g)

	dot := g.ToDOT()
	for _, want := range []string{
		"digraph framegraph",
		`"gbuffer"`,
		`"lighting"`,
		`"post"`,
		`"gbuffer" -> "lighting" [label="albedo"]`,
		`"lighting" -> "post" [label="hdr"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "cluster_") {
		t.Error("unbaked graph should have no group clusters")
	}
}

func TestToDOTBakedClusters(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())
	declareDeferred(g)
	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}

	dot := g.ToDOT()
	if !strings.Contains(dot, "subgraph cluster_") {
		t.Errorf("baked graph should cluster the merged group:\n%s", dot)
	}
	// gbuffer and lighting merged, post stands alone.
	cluster := dot[strings.Index(dot, "subgraph cluster_"):]
	cluster = cluster[:strings.Index(cluster, "}")]
	if !strings.Contains(cluster, `"gbuffer"`) || !strings.Contains(cluster, `"lighting"`) {
		t.Errorf("cluster should contain gbuffer and lighting:\n%s", cluster)
	}
	if strings.Contains(cluster, `"post"`) {
		t.Errorf("post should not be in the merged cluster:\n%s", cluster)
	}
}

func TestToDOTQueueColors(t *testing.T) {
	g := New()
	g.SetSurfaceDimensions(testSurface())

	a := g.AddPass("draw", QueueGraphics)
	a.AddColorOutput("scene", AttachmentInfo{})

	b := g.AddPass("reduce", QueueCompute)
	b.AddTextureInput("scene")
	b.AddStorageOutput("stats", BufferInfo{Size: 64})

	dot := g.ToDOT()
	if !strings.Contains(dot, `"draw" [fillcolor=lightblue]`) {
		t.Errorf("graphics pass not colored lightblue:\n%s", dot)
	}
	if !strings.Contains(dot, `"reduce" [fillcolor=lightyellow]`) {
		t.Errorf("compute pass not colored lightyellow:\n%s", dot)
	}
}
