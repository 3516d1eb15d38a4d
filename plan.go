// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import "github.com/gogpu/gputypes"

// executionPlan is the compiled artifact produced by Bake and replayed by
// Execute: the merged render groups in global schedule order, with their
// precomputed barriers and cross-queue handoffs.
type executionPlan struct {
	groups []*RenderGroup

	// order is the topological schedule, pass indices.
	order []int
}

// RenderGroup is one queue submission of the compiled plan: a merged
// render-pass group on the graphics queue, or a single compute/transfer
// pass. Groups appear in global schedule order; per-queue submission order
// preserves the dependency order computed at bake time.
type RenderGroup struct {
	queue  QueueFlags
	passes []*Pass

	// first is the schedule index of the group's first pass.
	first int

	// width and height are the render area for graphics groups.
	width  uint32
	height uint32

	// barriers are applied immediately before the group runs.
	barriers []Barrier

	// waits and signals are cross-queue handoff IDs.
	waits   []int
	signals []int

	// colorAttachments and depthStencil describe the render-pass scope
	// for graphics groups, resolved to views at execution time.
	colorAttachments []attachmentOp
	depthStencil     *attachmentOp
}

// Queue returns the queue the group is submitted on.
func (rg *RenderGroup) Queue() QueueFlags { return rg.queue }

// Passes returns the group's subpasses in submission order.
func (rg *RenderGroup) Passes() []*Pass { return rg.passes }

// Barriers returns the transitions applied before the group runs.
func (rg *RenderGroup) Barriers() []Barrier { return rg.barriers }

// Waits returns the handoff IDs the group's submission waits on.
func (rg *RenderGroup) Waits() []int { return rg.waits }

// Signals returns the handoff IDs the group's submission signals.
func (rg *RenderGroup) Signals() []int { return rg.signals }

// attachmentOp is a color or depth-stencil attachment of a render group
// with its load/store ops, computed at bake from liveness and clear
// declarations. The view is resolved at execution time since the surface
// texture may change between frames.
type attachmentOp struct {
	res     *Resource
	pass    *Pass // declaring pass, for clear callbacks
	index   int   // color output index within the pass
	load    gputypes.LoadOp
	store   gputypes.StoreOp
	isDepth bool
}

// Layout is the image layout a barrier transitions a resource into.
type Layout uint8

const (
	// LayoutUndefined is the initial layout; contents are undefined.
	LayoutUndefined Layout = iota

	// LayoutColorAttachment is optimal for color render target writes.
	LayoutColorAttachment

	// LayoutDepthStencilAttachment is optimal for depth-stencil writes.
	LayoutDepthStencilAttachment

	// LayoutDepthStencilRead is optimal for read-only depth-stencil use.
	LayoutDepthStencilRead

	// LayoutShaderRead is optimal for sampled and attachment-input reads.
	LayoutShaderRead

	// LayoutStorage is the general layout for storage image access.
	LayoutStorage
)

// String returns the string representation of a Layout.
func (l Layout) String() string {
	switch l {
	case LayoutUndefined:
		return "Undefined"
	case LayoutColorAttachment:
		return "ColorAttachment"
	case LayoutDepthStencilAttachment:
		return "DepthStencilAttachment"
	case LayoutDepthStencilRead:
		return "DepthStencilRead"
	case LayoutShaderRead:
		return "ShaderRead"
	case LayoutStorage:
		return "Storage"
	default:
		return "Unknown"
	}
}

// Access is a bitmask of access categories a pipeline stage performs on a
// resource.
type Access uint8

const (
	// AccessColorWrite is a color attachment write.
	AccessColorWrite Access = 1 << iota

	// AccessDepthStencilWrite is a depth-stencil attachment write.
	AccessDepthStencilWrite

	// AccessDepthStencilRead is a read-only depth-stencil access.
	AccessDepthStencilRead

	// AccessShaderRead is a sampled texture or uniform read.
	AccessShaderRead

	// AccessInputRead is an attachment-input read.
	AccessInputRead

	// AccessStorageRead is a storage buffer or image read.
	AccessStorageRead

	// AccessStorageWrite is a storage buffer or image write.
	AccessStorageWrite
)

// writes reports whether the access mask contains any write category.
func (a Access) writes() bool {
	return a&(AccessColorWrite|AccessDepthStencilWrite|AccessStorageWrite) != 0
}

// Barrier is one resource transition of the compiled plan, applied at a
// fixed point in the schedule. All barriers are computed at bake time;
// execution replays them without analysis.
type Barrier struct {
	// Resource is the logical resource being transitioned. Aliased
	// resources transition their shared physical allocation.
	Resource *Resource

	// FromLayout and ToLayout are the image layouts before and after; for
	// buffers both are LayoutUndefined.
	FromLayout Layout
	ToLayout   Layout

	// FromAccess and ToAccess are the access masks before and after.
	FromAccess Access
	ToAccess   Access

	// FromQueue and ToQueue differ when the transition is part of a
	// queue-ownership handoff.
	FromQueue QueueFlags
	ToQueue   QueueFlags
}
