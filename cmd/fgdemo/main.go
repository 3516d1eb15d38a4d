// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command fgdemo declares a small deferred-shading frame graph, bakes it
// on the sim backend, executes one or more frames, and prints the
// compiled schedule. With -dot or -svg it also emits the pass graph for
// visualization.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	_ "github.com/gogpu/framegraph/backend/sim"
	"github.com/gogpu/framegraph/post"
)

func main() {
	var (
		width   = flag.Uint("width", 1280, "surface width")
		height  = flag.Uint("height", 720, "surface height")
		frames  = flag.Int("frames", 3, "frames to execute")
		dotOut  = flag.String("dot", "", "write pass graph DOT to file")
		svgOut  = flag.String("svg", "", "render pass graph SVG to file")
		aliased = flag.Bool("aliasing", true, "enable resource aliasing")
	)
	flag.Parse()

	b := backend.Get(backend.BackendSim)
	if b == nil {
		log.Fatal("sim backend not registered")
	}
	if err := b.Init(); err != nil {
		log.Fatalf("backend init: %v", err)
	}
	defer b.Close()

	dev, err := b.Device()
	if err != nil {
		log.Fatalf("device: %v", err)
	}

	g := framegraph.New(framegraph.WithAliasing(*aliased))
	g.SetSurfaceDimensions(framegraph.ResourceDimensions{
		Format: gputypes.TextureFormatBGRA8Unorm,
		Width:  uint32(*width),
		Height: uint32(*height),
	})

	declareFrame(g, dev.Capabilities())
	g.SetSurfaceSource("frame")

	if err := g.Bake(dev); err != nil {
		log.Fatalf("bake: %v", err)
	}

	if err := g.DumpSchedule(os.Stdout); err != nil {
		log.Fatalf("dump: %v", err)
	}

	for i := 0; i < *frames; i++ {
		if err := g.Execute(); err != nil {
			log.Fatalf("frame %d: %v", i, err)
		}
	}
	log.Printf("fgdemo: executed %d frames at %dx%d", *frames, *width, *height)

	if *dotOut != "" {
		if err := os.WriteFile(*dotOut, []byte(g.ToDOT()), 0o644); err != nil {
			log.Fatalf("write dot: %v", err)
		}
		log.Printf("fgdemo: wrote %s", *dotOut)
	}
	if *svgOut != "" {
		svg, err := framegraph.RenderSVG(g.ToDOT())
		if err != nil {
			log.Fatalf("render svg: %v", err)
		}
		if err := os.WriteFile(*svgOut, svg, 0o644); err != nil {
			log.Fatalf("write svg: %v", err)
		}
		log.Printf("fgdemo: wrote %s", *svgOut)
	}
}

// declareFrame declares a deferred-shading frame: a g-buffer pass, a
// lighting pass merged with it through attachment inputs, an optional
// compute luminance pyramid, a tonemap, and a UI overlay chained onto the
// tonemapped image.
func declareFrame(g *framegraph.Graph, caps framegraph.Capabilities) {
	gbuffer := g.AddPass("gbuffer", framegraph.QueueGraphics)
	gbuffer.AddColorOutput("albedo", framegraph.AttachmentInfo{Format: gputypes.TextureFormatRGBA8Unorm})
	gbuffer.AddColorOutput("normal", framegraph.AttachmentInfo{Format: gputypes.TextureFormatRGBA8Unorm})
	gbuffer.SetDepthStencilOutput("depth", framegraph.AttachmentInfo{
		Format: gputypes.TextureFormatDepth24PlusStencil8,
	})
	gbuffer.SetClearColor(func(int) (gputypes.Color, bool) {
		return gputypes.Color{}, true
	})
	gbuffer.SetClearDepthStencil(func() (float32, uint32, bool) {
		return 1, 0, true
	})
	gbuffer.SetRecorder(framegraph.RecorderFunc(func(rc *framegraph.RecordContext) error {
		return rc.Draw(3, 1, 0, 0)
	}))

	lighting := g.AddPass("lighting", framegraph.QueueGraphics)
	lighting.AddAttachmentInput("albedo")
	lighting.AddAttachmentInput("normal")
	lighting.SetDepthStencilInput("depth")
	lighting.AddColorOutput("hdr", framegraph.AttachmentInfo{Format: gputypes.TextureFormatRGBA8Unorm})
	lighting.SetRecorder(framegraph.RecorderFunc(func(rc *framegraph.RecordContext) error {
		return rc.Draw(3, 1, 0, 0)
	}))

	if post.SupportsSinglePassDownsample(caps, gputypes.TextureFormatRGBA8Unorm) {
		post.SetupDepthHierarchyPass(g, "hdr", "hdr-pyramid", gputypes.TextureFormatRGBA8Unorm)
	}

	tonemap := g.AddPass("tonemap", framegraph.QueueGraphics)
	tonemap.AddTextureInput("hdr")
	if g.Pass("hdr-pyramid") != nil {
		tonemap.AddTextureInput("hdr-pyramid")
	}
	tonemap.AddColorOutput("ldr", framegraph.AttachmentInfo{})
	tonemap.SetRecorder(framegraph.RecorderFunc(func(rc *framegraph.RecordContext) error {
		return rc.Draw(3, 1, 0, 0)
	}))

	ui := g.AddPass("ui", framegraph.QueueGraphics)
	ui.AddColorOutput("frame", framegraph.AttachmentInfo{}, "ldr")
	ui.SetRecorder(framegraph.RecorderFunc(func(rc *framegraph.RecordContext) error {
		return rc.Draw(6, 1, 0, 0)
	}))
}
