// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package post provides post-processing building blocks on top of the
// frame graph, currently the capability-gated single-pass mip
// downsampler used for depth hierarchies and bloom chains.
package post

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
)

// MaxDownsampleMips is the deepest mip chain one dispatch can reduce.
const MaxDownsampleMips = 12

// ErrTooManyMips is returned when the requested chain exceeds
// MaxDownsampleMips.
var ErrTooManyMips = fmt.Errorf("post: mip chain exceeds %d levels", MaxDownsampleMips)

// SupportsSinglePassDownsample reports whether the device can run the
// whole mip reduction in one compute dispatch.
//
// Strategy selection happens once, before declaring passes; there is no
// execution-time fallback. Callers that get false here schedule a
// conventional multi-pass reduction instead.
func SupportsSinglePassDownsample(caps framegraph.Capabilities, format gputypes.TextureFormat) bool {
	if !caps.Compute {
		return false
	}
	if caps.MaxWorkgroupSize < 256 {
		return false
	}
	if !caps.SubgroupBasic || !caps.SubgroupQuad {
		return false
	}
	// The reduction kernel pins its subgroup size; the controllable range
	// must intersect [4, 128].
	if !caps.SubgroupSizeControl || caps.MinSubgroupLog2 > 7 || caps.MaxSubgroupLog2 < 2 {
		return false
	}
	if !caps.StorageReadWithoutFormat || !caps.StorageWriteWithoutFormat {
		return false
	}
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatR8Unorm:
		return true
	}
	return false
}

// DownsampleInfo describes one single-pass reduction.
type DownsampleInfo struct {
	// Width and Height are the level-0 dimensions.
	Width  uint32
	Height uint32

	// Levels is the mip chain length including level 0. Zero means the
	// full chain for Width x Height.
	Levels uint32
}

// Workgroups returns the dispatch grid. Each workgroup reduces one 32x32
// tile of level 0.
func (d DownsampleInfo) Workgroups() (x, y uint32) {
	return (d.Width + 31) / 32, (d.Height + 31) / 32
}

// EmitSinglePassDownsample records the reduction into the current pass:
// per-mip storage views of the output chain, the atomic workgroup counter,
// a small constant block, and one dispatch. The counter buffer must be a
// declared 4-byte storage output of the pass; it detects the last-arriving
// workgroup, which alone reduces the tail mips.
//
// The pass must have declared output as a storage texture output and
// counter as a storage output.
func EmitSinglePassDownsample(rc *framegraph.RecordContext, output, counter string, info DownsampleInfo) error {
	levels := info.Levels
	if levels == 0 {
		levels = framegraph.MipLevels(info.Width, info.Height)
	}
	if levels > MaxDownsampleMips {
		return fmt.Errorf("%w: %d", ErrTooManyMips, levels)
	}

	for mip := uint32(0); mip < levels; mip++ {
		view, err := rc.TextureView(output, mip, 1)
		if err != nil {
			return err
		}
		if err := rc.SetStorageTexture(1, mip, view); err != nil {
			return err
		}
	}

	buf, err := rc.PhysicalBuffer(counter)
	if err != nil {
		return err
	}
	if err := rc.SetStorageBuffer(2, 0, buf, 0, 4); err != nil {
		return err
	}

	wgx, wgy := info.Workgroups()
	pc := make([]byte, 24)
	binary.LittleEndian.PutUint32(pc[0:], info.Width)
	binary.LittleEndian.PutUint32(pc[4:], info.Height)
	binary.LittleEndian.PutUint32(pc[8:], math.Float32bits(1/float32(info.Width)))
	binary.LittleEndian.PutUint32(pc[12:], math.Float32bits(1/float32(info.Height)))
	binary.LittleEndian.PutUint32(pc[16:], levels)
	binary.LittleEndian.PutUint32(pc[20:], wgx*wgy)
	if err := rc.PushConstants(pc); err != nil {
		return err
	}

	return rc.Dispatch(wgx, wgy, 1)
}

// SetupDepthHierarchyPass declares a compute pass that reduces input into
// a full mip chain named output, sized to match input, using the
// single-pass downsampler. Callers gate on SupportsSinglePassDownsample
// before using it.
//
// The pass owns an internal 4-byte counter buffer named output+"-counter"
// for last-workgroup detection.
func SetupDepthHierarchyPass(g *framegraph.Graph, input, output string, format gputypes.TextureFormat) *framegraph.Pass {
	pass := g.AddPass(output, framegraph.QueueCompute)
	pass.AddTextureInput(input)
	pass.AddStorageTextureOutput(output, framegraph.AttachmentInfo{
		Format:           format,
		SizeClass:        framegraph.SizeInputRelative,
		SizeRelativeName: input,
		Levels:           0, // full chain
	})
	counter := output + "-counter"
	pass.AddStorageOutput(counter, framegraph.BufferInfo{Size: 4})

	pass.SetRecorder(framegraph.RecorderFunc(func(rc *framegraph.RecordContext) error {
		dim, err := rc.Dimensions(output)
		if err != nil {
			return err
		}
		return EmitSinglePassDownsample(rc, output, counter, DownsampleInfo{
			Width:  dim.Width,
			Height: dim.Height,
			Levels: dim.Levels,
		})
	}))
	return pass
}

// Arrive is the workgroup-counting barrier: each finishing workgroup
// calls it once, and exactly one caller per cycle observes true, the
// last arrival. The counter resets to zero on the way out so the next
// dispatch reuses it without a clear pass.
func Arrive(counter *atomic.Uint32, total uint32) bool {
	if counter.Add(1) != total {
		return false
	}
	counter.Store(0)
	return true
}
