// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

// declareDeferred declares the canonical three-stage frame: a g-buffer
// pass and a lighting pass that merge, then a post pass forced into its
// own group by a texture input.
func declareDeferred(g *Graph) {
	gb := g.AddPass("gbuffer", QueueGraphics)
	gb.AddColorOutput("albedo", AttachmentInfo{})
	gb.SetDepthStencilOutput("depth", AttachmentInfo{})

	light := g.AddPass("lighting", QueueGraphics)
	light.AddAttachmentInput("albedo")
	light.SetDepthStencilInput("depth")
	light.AddColorOutput("hdr", AttachmentInfo{})

	post := g.AddPass("post", QueueGraphics)
	post.AddTextureInput("hdr")
	post.AddColorOutput("final", AttachmentInfo{})

	g.SetSurfaceSource("final")
}

func TestExecuteDeferredFrame(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())
	declareDeferred(g)

	recorded := make(map[string]bool)
	for _, name := range []string{"gbuffer", "lighting", "post"} {
		name := name
		g.Pass(name).SetRecorder(RecorderFunc(func(rc *RecordContext) error {
			recorded[name] = true
			return rc.Draw(3, 1, 0, 0)
		}))
	}

	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}
	if got := len(g.plan.groups); got != 2 {
		t.Fatalf("plan has %d groups, want 2 ([gbuffer lighting] [post])", got)
	}

	if err := g.Execute(); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	for _, name := range []string{"gbuffer", "lighting", "post"} {
		if !recorded[name] {
			t.Errorf("pass %s was not recorded", name)
		}
	}

	// The merged group advances with NextSubpass, each group submits
	// exactly once, in schedule order.
	trace := strings.Join(dev.ops, "\n")
	for _, want := range []string{"begin gbuffer subpasses=2", "next-subpass", "begin post subpasses=1"} {
		if !strings.Contains(trace, want) {
			t.Errorf("trace missing %q:\n%s", want, trace)
		}
	}
	submits := 0
	for _, op := range dev.ops {
		if strings.HasPrefix(op, "submit") {
			submits++
		}
	}
	if submits != 2 {
		t.Errorf("submit count = %d, want 2", submits)
	}
}

func TestExecuteReplaysPlan(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())
	declareDeferred(g)
	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}

	if err := g.Execute(); err != nil {
		t.Fatalf("first Execute() = %v", err)
	}
	firstLen := len(dev.ops)
	if err := g.Execute(); err != nil {
		t.Fatalf("second Execute() = %v", err)
	}
	if len(dev.ops) != 2*firstLen {
		t.Errorf("second frame recorded %d ops, want %d (identical replay)", len(dev.ops)-firstLen, firstLen)
	}
	// No new allocations between frames.
	if len(dev.textures) != len(g.physical) {
		t.Errorf("textures created = %d, want %d (bake only)", len(dev.textures), len(g.physical))
	}
}

func TestAttachmentOps(t *testing.T) {
	g, groups := bakeGroups(t, func(g *Graph) {
		declareDeferred(g)
	})
	_ = g

	// gbuffer group: albedo cleared, stored only if read later.
	var albedo, hdr *attachmentOp
	for gi := range groups {
		for i := range groups[gi].colorAttachments {
			op := &groups[gi].colorAttachments[i]
			switch op.res.Name() {
			case "albedo":
				albedo = op
			case "hdr":
				hdr = op
			}
		}
	}
	if albedo == nil || hdr == nil {
		t.Fatal("missing attachment ops")
	}
	if albedo.load != gputypes.LoadOpClear {
		t.Errorf("albedo load = %v, want clear", albedo.load)
	}
	// albedo is consumed in the same group only; its contents can die
	// with the group.
	if albedo.store != gputypes.StoreOpDiscard {
		t.Errorf("albedo store = %v, want discard", albedo.store)
	}
	// hdr is sampled by the post group, so it must be stored.
	if hdr.store != gputypes.StoreOpStore {
		t.Errorf("hdr store = %v, want store", hdr.store)
	}
}

func TestSurfaceSourceAlwaysStored(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		p := g.AddPass("draw", QueueGraphics)
		p.AddColorOutput("frame", AttachmentInfo{})
		g.SetSurfaceSource("frame")
	})
	op := groups[0].colorAttachments[0]
	if op.store != gputypes.StoreOpStore {
		t.Errorf("surface source store = %v, want store", op.store)
	}
}

func TestChainedOutputLoads(t *testing.T) {
	_, groups := bakeGroups(t, func(g *Graph) {
		a := g.AddPass("tonemap", QueueGraphics)
		a.AddColorOutput("ldr", AttachmentInfo{})

		b := g.AddPass("ui", QueueGraphics)
		b.AddColorOutput("frame", AttachmentInfo{}, "ldr")
		g.SetSurfaceSource("frame")
	})

	var frame *attachmentOp
	for gi := range groups {
		for i := range groups[gi].colorAttachments {
			if groups[gi].colorAttachments[i].res.Name() == "frame" {
				frame = &groups[gi].colorAttachments[i]
			}
		}
	}
	if frame == nil {
		t.Fatal("no attachment op for frame")
	}
	if frame.load != gputypes.LoadOpLoad {
		t.Errorf("chained output load = %v, want load (continue source contents)", frame.load)
	}
}

func TestClearCallbackDecline(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())

	a := g.AddPass("first", QueueGraphics)
	a.AddColorOutput("target", AttachmentInfo{})
	a.SetClearColor(func(int) (gputypes.Color, bool) {
		return gputypes.Color{}, false // decline: load previous contents
	})

	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}
	info, err := g.renderGroupInfo(g.plan.groups[0])
	if err != nil {
		t.Fatalf("renderGroupInfo() = %v", err)
	}
	if info.Colors[0].Load != gputypes.LoadOpLoad {
		t.Errorf("declined clear load = %v, want load", info.Colors[0].Load)
	}
}

func TestSurfaceTextureSubstitution(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())

	p := g.AddPass("draw", QueueGraphics)
	p.AddColorOutput("frame", AttachmentInfo{})
	g.SetSurfaceSource("frame")

	var seen Texture
	p.SetRecorder(RecorderFunc(func(rc *RecordContext) error {
		tex, err := rc.PhysicalTexture("frame")
		if err != nil {
			return err
		}
		seen = tex
		return nil
	}))

	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}

	external := &testTexture{dev: dev, label: "swapchain", width: 1920, height: 1080, levels: 1, layers: 1}
	g.SetSurfaceTexture(external)

	if err := g.Execute(); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if seen != external {
		t.Error("recorder did not receive the external surface texture")
	}
}

func TestRecordContextUndeclaredResource(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())

	a := g.AddPass("first", QueueGraphics)
	a.AddColorOutput("private", AttachmentInfo{})

	var gotErr error
	b := g.AddPass("second", QueueGraphics)
	b.AddColorOutput("own", AttachmentInfo{})
	b.SetRecorder(RecorderFunc(func(rc *RecordContext) error {
		_, gotErr = rc.PhysicalTexture("private")
		return nil
	}))

	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}
	if err := g.Execute(); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if !errors.Is(gotErr, ErrUndeclaredResource) {
		t.Errorf("PhysicalTexture(undeclared) = %v, want ErrUndeclaredResource", gotErr)
	}
}

func TestDumpSchedule(t *testing.T) {
	dev := newTestDevice()
	g := New()
	g.SetSurfaceDimensions(testSurface())
	declareDeferred(g)

	if err := g.DumpSchedule(&strings.Builder{}); !errors.Is(err, ErrNotBaked) {
		t.Errorf("DumpSchedule() before bake = %v, want ErrNotBaked", err)
	}

	if err := g.Bake(dev); err != nil {
		t.Fatalf("Bake() = %v", err)
	}
	var sb strings.Builder
	if err := g.DumpSchedule(&sb); err != nil {
		t.Fatalf("DumpSchedule() = %v", err)
	}
	out := sb.String()
	for _, want := range []string{"gbuffer", "lighting", "post", "physical resources:"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
