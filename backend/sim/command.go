// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"fmt"

	"github.com/gogpu/framegraph"
)

// CommandBuffer records framegraph commands into the device trace. It
// tracks render-group scope so mismatched Begin/End pairs surface as
// errors in tests.
type CommandBuffer struct {
	dev   *Device
	queue framegraph.QueueFlags

	inGroup bool
	subpass int
}

// BeginRenderGroup enters a render-pass scope.
func (cb *CommandBuffer) BeginRenderGroup(info *framegraph.RenderGroupInfo) error {
	if cb.inGroup {
		return fmt.Errorf("sim: nested render group %q", info.Label)
	}
	cb.inGroup = true
	cb.subpass = 0
	cb.dev.record("begin-group", "%s %dx%d colors=%d subpasses=%d",
		info.Label, info.Width, info.Height, len(info.Colors), info.Subpasses)
	return nil
}

// NextSubpass advances within the current render group.
func (cb *CommandBuffer) NextSubpass() error {
	if !cb.inGroup {
		return ErrNotInRenderGroup
	}
	cb.subpass++
	cb.dev.record("next-subpass", "%d", cb.subpass)
	return nil
}

// EndRenderGroup leaves the render-pass scope.
func (cb *CommandBuffer) EndRenderGroup() error {
	if !cb.inGroup {
		return ErrNotInRenderGroup
	}
	cb.inGroup = false
	cb.dev.record("end-group", "")
	return nil
}

// Barrier records a batch of transitions.
func (cb *CommandBuffer) Barrier(transitions []framegraph.Barrier) error {
	for _, b := range transitions {
		cb.dev.record("barrier", "%s %s->%s", b.Resource.Name(), b.FromLayout, b.ToLayout)
	}
	return nil
}

// SetTexture records a sampled texture binding.
func (cb *CommandBuffer) SetTexture(set, binding uint32, view framegraph.TextureView) error {
	cb.dev.record("set-texture", "set=%d binding=%d", set, binding)
	return nil
}

// SetStorageTexture records a storage texture binding.
func (cb *CommandBuffer) SetStorageTexture(set, binding uint32, view framegraph.TextureView) error {
	cb.dev.record("set-storage-texture", "set=%d binding=%d mip=%d", set, binding, view.BaseMip())
	return nil
}

// SetInputAttachment records an input attachment binding.
func (cb *CommandBuffer) SetInputAttachment(binding uint32, view framegraph.TextureView) error {
	if !cb.inGroup {
		return ErrNotInRenderGroup
	}
	cb.dev.record("set-input-attachment", "binding=%d", binding)
	return nil
}

// SetStorageBuffer records a storage buffer binding.
func (cb *CommandBuffer) SetStorageBuffer(set, binding uint32, buf framegraph.Buffer, offset, size uint64) error {
	cb.dev.record("set-storage-buffer", "set=%d binding=%d size=%d", set, binding, size)
	return nil
}

// PushConstants records an inline constant upload.
func (cb *CommandBuffer) PushConstants(data []byte) error {
	cb.dev.record("push-constants", "%d bytes", len(data))
	return nil
}

// Draw records a non-indexed draw.
func (cb *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if !cb.inGroup {
		return ErrNotInRenderGroup
	}
	cb.dev.record("draw", "vertices=%d instances=%d", vertexCount, instanceCount)
	return nil
}

// DrawIndexed records an indexed draw.
func (cb *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if !cb.inGroup {
		return ErrNotInRenderGroup
	}
	cb.dev.record("draw-indexed", "indices=%d instances=%d", indexCount, instanceCount)
	return nil
}

// Dispatch records a compute dispatch.
func (cb *CommandBuffer) Dispatch(x, y, z uint32) error {
	cb.dev.record("dispatch", "%dx%dx%d", x, y, z)
	return nil
}
