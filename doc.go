// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package framegraph provides a frame graph (render graph) for Go GPU code.
//
// # Overview
//
// A frame graph lets rendering code describe one frame as a set of passes
// that read and write named logical resources. The graph resolves pass
// dependencies, allocates and aliases physical memory, inserts barriers and
// cross-queue handoffs, and replays the compiled plan every frame. Callers
// declare what each pass consumes and produces; the graph decides ordering,
// memory and synchronization.
//
// # Quick Start
//
//	g := framegraph.New()
//	g.SetSurfaceDimensions(framegraph.ResourceDimensions{Width: 1280, Height: 720})
//
//	gbuffer := g.AddPass("gbuffer", framegraph.QueueGraphics)
//	gbuffer.AddColorOutput("albedo", framegraph.AttachmentInfo{})
//	gbuffer.SetDepthStencilOutput("depth", framegraph.AttachmentInfo{
//		Format: gputypes.TextureFormatDepth24PlusStencil8,
//	})
//	gbuffer.SetRecorder(framegraph.RecorderFunc(func(rc *framegraph.RecordContext) error {
//		// issue draws through rc
//		return nil
//	}))
//
//	lighting := g.AddPass("lighting", framegraph.QueueGraphics)
//	lighting.AddAttachmentInput("albedo")
//	lighting.SetDepthStencilInput("depth")
//	lighting.AddColorOutput("hdr", framegraph.AttachmentInfo{})
//
//	if err := g.Bake(device); err != nil {
//		log.Fatal(err)
//	}
//	for running {
//		if err := g.Execute(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Compilation Model
//
// Bake compiles the declared passes into an execution plan:
//   - The dependency resolver matches each consumer to the most recent
//     producer of a resource name and builds a topological order.
//   - Merge analysis folds adjacent graphics passes connected only through
//     attachment inputs into one render group, keeping attachment contents
//     on chip.
//   - The physical allocator resolves concrete sizes, computes live ranges
//     over the render-group schedule, and aliases non-overlapping resources
//     onto shared allocations.
//   - The barrier inserter computes every layout transition and cross-queue
//     handoff up front; execution replays them without any runtime analysis.
//
// The plan is reused frame over frame until Reset discards it, typically on
// a surface resize.
//
// # Backends
//
// The graph records through narrow Device and CommandBuffer interfaces.
// backend/sim provides a pure Go device that traces execution for tests and
// tooling; backend/wgpu acquires a real device through gogpu/wgpu.
package framegraph

// Version is the current version of the library.
const Version = "0.1.0"
