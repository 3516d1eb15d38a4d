// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
)

// Texture is a texture allocation on the wgpu device.
type Texture struct {
	label  string
	width  uint32
	height uint32
	levels uint32
	layers uint32
	format gputypes.TextureFormat
}

// Width returns the level-0 width.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the level-0 height.
func (t *Texture) Height() uint32 { return t.height }

// MipLevels returns the mip chain length.
func (t *Texture) MipLevels() uint32 { return t.levels }

// ArrayLayers returns the array layer count.
func (t *Texture) ArrayLayers() uint32 { return t.layers }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// View creates a view of a mip/layer range of the texture.
func (t *Texture) View(desc framegraph.ViewDesc) (framegraph.TextureView, error) {
	mips := desc.MipCount
	if mips == 0 {
		mips = t.levels - desc.BaseMip
	}
	if desc.BaseMip >= t.levels || desc.BaseMip+mips > t.levels {
		return nil, fmt.Errorf("wgpu: view of %q: mips [%d, %d) out of %d",
			t.label, desc.BaseMip, desc.BaseMip+mips, t.levels)
	}
	return &TextureView{tex: t, baseMip: desc.BaseMip, mipCount: mips}, nil
}

// Release frees the texture.
func (t *Texture) Release() {}

// TextureView is a view into a mip/layer range of a Texture.
type TextureView struct {
	tex      *Texture
	baseMip  uint32
	mipCount uint32
}

// Texture returns the viewed texture.
func (v *TextureView) Texture() framegraph.Texture { return v.tex }

// BaseMip returns the first mip level of the view.
func (v *TextureView) BaseMip() uint32 { return v.baseMip }

// MipCount returns the number of mip levels in the view.
func (v *TextureView) MipCount() uint32 { return v.mipCount }

// Buffer is a buffer allocation on the wgpu device.
type Buffer struct {
	label string
	size  uint64
	usage gputypes.BufferUsage
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the buffer usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Release frees the buffer.
func (b *Buffer) Release() {}

// CommandBuffer records framegraph commands for one queue submission.
// Recording is tracked host-side until the core↔HAL bridge is complete.
type CommandBuffer struct {
	queue   framegraph.QueueFlags
	inGroup bool
}

// BeginRenderGroup enters a render-pass scope.
func (cb *CommandBuffer) BeginRenderGroup(info *framegraph.RenderGroupInfo) error {
	if cb.inGroup {
		return fmt.Errorf("wgpu: nested render group %q", info.Label)
	}
	cb.inGroup = true
	return nil
}

// NextSubpass advances to the next merged subpass.
func (cb *CommandBuffer) NextSubpass() error {
	if !cb.inGroup {
		return fmt.Errorf("wgpu: NextSubpass outside render group")
	}
	return nil
}

// EndRenderGroup leaves the render-pass scope.
func (cb *CommandBuffer) EndRenderGroup() error {
	if !cb.inGroup {
		return fmt.Errorf("wgpu: EndRenderGroup outside render group")
	}
	cb.inGroup = false
	return nil
}

// Barrier applies a batch of resource transitions.
func (cb *CommandBuffer) Barrier(transitions []framegraph.Barrier) error { return nil }

// SetTexture binds a sampled texture view.
func (cb *CommandBuffer) SetTexture(set, binding uint32, view framegraph.TextureView) error {
	return nil
}

// SetStorageTexture binds a storage texture view.
func (cb *CommandBuffer) SetStorageTexture(set, binding uint32, view framegraph.TextureView) error {
	return nil
}

// SetInputAttachment binds an attachment input of the current subpass.
func (cb *CommandBuffer) SetInputAttachment(binding uint32, view framegraph.TextureView) error {
	if !cb.inGroup {
		return fmt.Errorf("wgpu: input attachment outside render group")
	}
	return nil
}

// SetStorageBuffer binds a storage buffer range.
func (cb *CommandBuffer) SetStorageBuffer(set, binding uint32, buf framegraph.Buffer, offset, size uint64) error {
	return nil
}

// PushConstants uploads a small inline constant block.
func (cb *CommandBuffer) PushConstants(data []byte) error { return nil }

// Draw issues a non-indexed draw call.
func (cb *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if !cb.inGroup {
		return fmt.Errorf("wgpu: draw outside render group")
	}
	return nil
}

// DrawIndexed issues an indexed draw call.
func (cb *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if !cb.inGroup {
		return fmt.Errorf("wgpu: indexed draw outside render group")
	}
	return nil
}

// Dispatch issues a compute dispatch.
func (cb *CommandBuffer) Dispatch(x, y, z uint32) error { return nil }
