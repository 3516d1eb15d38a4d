// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device is the narrow interface the graph needs from a GPU backend.
//
// The graph uses it to create physical resources at bake time, to open
// command buffers during execution, and to submit them with the handoff
// ordering computed at bake time. backend/sim provides a pure Go
// implementation; backend/wgpu acquires a real device via gogpu/wgpu.
//
// Key principle: the graph RECEIVES the device from the host, it does NOT
// create one. This keeps GPU resources shared between the graph and the
// host application.
type Device interface {
	// Capabilities returns the device capability descriptor used for
	// strategy selection before any work is scheduled.
	Capabilities() Capabilities

	// CreateTexture allocates a physical texture.
	CreateTexture(desc *gputypes.TextureDescriptor) (Texture, error)

	// CreateBuffer allocates a physical buffer.
	CreateBuffer(size uint64, usage gputypes.BufferUsage, label string) (Buffer, error)

	// NewCommandBuffer opens a command buffer for the given queue.
	NewCommandBuffer(queue QueueFlags) (CommandBuffer, error)

	// Submit enqueues a recorded command buffer on its queue, honoring the
	// cross-queue waits and signals of the submission.
	Submit(sub Submission) error
}

// Capabilities describes device features relevant to strategy selection.
//
// Callers query it once, select an algorithm, and never fall back at
// execution time. See post.SupportsSinglePassDownsample for the canonical
// consumer.
type Capabilities struct {
	// Compute reports whether the device has compute queue support.
	Compute bool

	// MaxWorkgroupSize is the maximum compute workgroup size in the X
	// dimension.
	MaxWorkgroupSize uint32

	// SubgroupBasic reports support for basic subgroup operations.
	SubgroupBasic bool

	// SubgroupQuad reports support for quad subgroup operations.
	SubgroupQuad bool

	// SubgroupSizeControl reports whether the subgroup size can be pinned
	// to a requested range.
	SubgroupSizeControl bool

	// MinSubgroupLog2 and MaxSubgroupLog2 bound the controllable subgroup
	// size as log2 values (e.g. 2..7 for sizes 4..128).
	MinSubgroupLog2 uint32
	MaxSubgroupLog2 uint32

	// StorageReadWithoutFormat reports whether storage images can be read
	// without an explicit format declaration in the shader.
	StorageReadWithoutFormat bool

	// StorageWriteWithoutFormat reports whether storage images can be
	// written without an explicit format declaration in the shader.
	StorageWriteWithoutFormat bool
}

// Texture is a physical texture allocation owned by the graph.
//
// Passes never hold Textures directly; they receive views through the
// RecordContext for the duration of their recording callback.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// MipLevels returns the number of mip levels.
	MipLevels() uint32

	// ArrayLayers returns the number of array layers.
	ArrayLayers() uint32

	// Format returns the texture format.
	Format() gputypes.TextureFormat

	// View creates a view of a mip/layer range of the texture.
	View(desc ViewDesc) (TextureView, error)

	// Release frees the texture. The graph calls this when the plan is
	// discarded; callers must not.
	Release()
}

// ViewDesc selects a mip/layer range of a texture.
type ViewDesc struct {
	// BaseMip is the first mip level of the view.
	BaseMip uint32

	// MipCount is the number of mip levels. Zero means all remaining.
	MipCount uint32

	// BaseLayer is the first array layer of the view.
	BaseLayer uint32

	// LayerCount is the number of array layers. Zero means all remaining.
	LayerCount uint32

	// Label is an optional debug name.
	Label string
}

// TextureView is a view into a mip/layer range of a Texture.
type TextureView interface {
	// Texture returns the texture this view was created from.
	Texture() Texture

	// BaseMip returns the first mip level of the view.
	BaseMip() uint32

	// MipCount returns the number of mip levels in the view.
	MipCount() uint32
}

// Buffer is a physical buffer allocation owned by the graph.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// Usage returns the buffer usage flags.
	Usage() gputypes.BufferUsage

	// Release frees the buffer. The graph calls this when the plan is
	// discarded; callers must not.
	Release()
}

// Submission carries one recorded command buffer to its queue.
//
// Waits and Signals are handoff identifiers assigned at bake time. A
// submission must not begin executing on its queue before every submission
// signaling one of its Waits has been submitted.
type Submission struct {
	// Queue is the target queue.
	Queue QueueFlags

	// Commands is the recorded command buffer.
	Commands CommandBuffer

	// Waits lists handoff IDs this submission waits on.
	Waits []int

	// Signals lists handoff IDs this submission signals on completion.
	Signals []int
}

// CommandBuffer records GPU work for one queue submission.
//
// The graph drives the render-group scope and barrier calls itself; pass
// recorders use the binding, draw, dispatch and push-constant calls. A
// CommandBuffer is not safe for concurrent use.
type CommandBuffer interface {
	// BeginRenderGroup enters a (possibly merged) render-pass scope.
	BeginRenderGroup(info *RenderGroupInfo) error

	// NextSubpass advances to the next merged subpass within the group.
	NextSubpass() error

	// EndRenderGroup leaves the render-pass scope.
	EndRenderGroup() error

	// Barrier applies a batch of resource transitions at this point.
	Barrier(transitions []Barrier) error

	// SetTexture binds a sampled texture view.
	SetTexture(set, binding uint32, view TextureView) error

	// SetStorageTexture binds a storage texture view.
	SetStorageTexture(set, binding uint32, view TextureView) error

	// SetInputAttachment binds an attachment input of the current subpass.
	SetInputAttachment(binding uint32, view TextureView) error

	// SetStorageBuffer binds a storage buffer range.
	SetStorageBuffer(set, binding uint32, buf Buffer, offset, size uint64) error

	// PushConstants uploads a small inline constant block.
	PushConstants(data []byte) error

	// Draw issues a non-indexed draw call.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error

	// DrawIndexed issues an indexed draw call.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error

	// Dispatch issues a compute dispatch.
	Dispatch(x, y, z uint32) error
}

// DeviceHandle provides GPU device access from the host application.
//
// Host frameworks that already own a gpucontext device (e.g. a gogpu
// window) implement this interface and hand it to a backend so the graph
// shares the host's GPU resources instead of creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// framegraph-specific name while maintaining full compatibility with the
// gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider
