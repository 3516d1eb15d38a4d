// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// QueueFlags selects the hardware queue a pass executes on.
type QueueFlags uint32

const (
	// QueueGraphics is the graphics queue.
	QueueGraphics QueueFlags = 1 << iota

	// QueueCompute is the compute queue.
	QueueCompute

	// QueueTransfer is the transfer queue.
	QueueTransfer
)

// String returns the string representation of QueueFlags.
func (q QueueFlags) String() string {
	var parts []string
	if q&QueueGraphics != 0 {
		parts = append(parts, "graphics")
	}
	if q&QueueCompute != 0 {
		parts = append(parts, "compute")
	}
	if q&QueueTransfer != 0 {
		parts = append(parts, "transfer")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Recorder records the GPU commands of one pass. Implementations receive a
// RecordContext bound to the pass's resolved resources; handles obtained
// through it are valid only for the duration of the call, since a future
// bake may reassign backing allocations through aliasing.
type Recorder interface {
	Record(rc *RecordContext) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(rc *RecordContext) error

// Record calls f(rc).
func (f RecorderFunc) Record(rc *RecordContext) error { return f(rc) }

// ClearColorFunc supplies the clear value for a pass's color output by
// output index. Returning ok=false loads the previous contents instead.
type ClearColorFunc func(index int) (value gputypes.Color, ok bool)

// ClearDepthStencilFunc supplies the depth/stencil clear value. Returning
// ok=false loads the previous contents instead.
type ClearDepthStencilFunc func() (depth float32, stencil uint32, ok bool)

// useKind tags how a pass touches a resource.
type useKind uint8

const (
	useColorOutput useKind = iota
	useDepthStencilOutput
	useDepthStencilInput
	useAttachmentInput
	useTextureInput
	useStorageTextureOutput
	useStorageOutput
	useStorageInput
	useChainSource
)

func (u useKind) String() string {
	switch u {
	case useColorOutput:
		return "color-output"
	case useDepthStencilOutput:
		return "depth-stencil-output"
	case useDepthStencilInput:
		return "depth-stencil-input"
	case useAttachmentInput:
		return "attachment-input"
	case useTextureInput:
		return "texture-input"
	case useStorageTextureOutput:
		return "storage-texture-output"
	case useStorageOutput:
		return "storage-output"
	case useStorageInput:
		return "storage-input"
	case useChainSource:
		return "chain-source"
	default:
		return fmt.Sprintf("Unknown(%d)", int(u))
	}
}

func (u useKind) writes() bool {
	switch u {
	case useColorOutput, useDepthStencilOutput, useStorageTextureOutput, useStorageOutput:
		return true
	}
	return false
}

// resourceUse is one tagged resource reference of a pass. Slot is the
// binding slot within the use's category, assigned in declaration order.
type resourceUse struct {
	res  *Resource
	use  useKind
	slot uint32
}

// Pass is a named node in the frame graph with a queue affinity, an
// ordered list of resource uses, and a recording callback invoked at
// execution time.
//
// Passes are declared in registration order; that order is the tie-break
// for equal-priority scheduling decisions.
type Pass struct {
	graph *Graph
	index int
	name  string
	queue QueueFlags

	recorder   Recorder
	clearColor ClearColorFunc
	clearDepth ClearDepthStencilFunc

	uses []resourceUse

	colorOutputs []*Resource
	// chainSources[i] is the history resource feeding colorOutputs[i],
	// or nil when the output is not chained.
	chainSources       []*Resource
	depthStencilOutput *Resource
	depthStencilInput  *Resource
	attachmentInputs   []*Resource
	textureInputs      []*Resource
	storageTextureOuts []*Resource
	storageOutputs     []*Resource
	storageInputs      []*Resource
}

// Name returns the pass name.
func (p *Pass) Name() string { return p.name }

// Queue returns the queue the pass executes on.
func (p *Pass) Queue() QueueFlags { return p.queue }

// SetRecorder sets the recording callback invoked each frame. A pass
// without a recorder is scheduled but records nothing.
func (p *Pass) SetRecorder(r Recorder) { p.recorder = r }

// SetClearColor sets the clear value provider for the pass's color
// outputs. Without one, color outputs are cleared to zero unless their
// contents are chained from a previous resource.
func (p *Pass) SetClearColor(f ClearColorFunc) { p.clearColor = f }

// SetClearDepthStencil sets the clear value provider for the pass's
// depth-stencil output.
func (p *Pass) SetClearDepthStencil(f ClearDepthStencilFunc) { p.clearDepth = f }

// AddColorOutput declares a color render target written by the pass.
// An optional chainFrom name links the output's initial contents to a
// previously produced resource (a feedback/history version) instead of
// clearing; this creates a dependency on chainFrom's producer.
func (p *Pass) AddColorOutput(name string, info AttachmentInfo, chainFrom ...string) *Resource {
	res := p.graph.textureResource(name)
	res.att = info
	res.usage |= gputypes.TextureUsageRenderAttachment | info.AuxUsage
	res.queues |= p.queue
	res.addWriter(p.index)
	p.addUse(res, useColorOutput, uint32(len(p.colorOutputs)))
	p.colorOutputs = append(p.colorOutputs, res)

	var src *Resource
	switch len(chainFrom) {
	case 0:
	case 1:
		src = p.graph.textureResource(chainFrom[0])
		src.queues |= p.queue
		src.addReader(p.index)
		src.noAlias = true
		p.addUse(src, useChainSource, 0)
		p.graph.chains[res] = src
	default:
		p.graph.declErr(fmt.Errorf("%w: pass %q output %q chains from %d resources",
			ErrInvalidDeclaration, p.name, name, len(chainFrom)))
	}
	p.chainSources = append(p.chainSources, src)
	return res
}

// SetDepthStencilOutput declares the depth-stencil target written by the
// pass. A pass has at most one.
func (p *Pass) SetDepthStencilOutput(name string, info AttachmentInfo) *Resource {
	if p.depthStencilOutput != nil {
		p.graph.declErr(fmt.Errorf("%w: pass %q declares a second depth-stencil output %q",
			ErrInvalidDeclaration, p.name, name))
	}
	res := p.graph.textureResource(name)
	res.att = info
	res.usage |= gputypes.TextureUsageRenderAttachment | info.AuxUsage
	res.queues |= p.queue
	res.addWriter(p.index)
	p.addUse(res, useDepthStencilOutput, 0)
	p.depthStencilOutput = res
	return res
}

// SetDepthStencilInput declares a read-only depth-stencil attachment
// consumed by the pass.
func (p *Pass) SetDepthStencilInput(name string) *Resource {
	res := p.graph.textureResource(name)
	res.usage |= gputypes.TextureUsageRenderAttachment
	res.queues |= p.queue
	res.addReader(p.index)
	p.addUse(res, useDepthStencilInput, 0)
	p.depthStencilInput = res
	return res
}

// AddAttachmentInput declares a subpass-local read of a resource still
// held in on-chip attachment state. Attachment inputs are what allow two
// passes to merge into one render group.
func (p *Pass) AddAttachmentInput(name string) *Resource {
	res := p.graph.textureResource(name)
	res.usage |= gputypes.TextureUsageTextureBinding
	res.queues |= p.queue
	res.addReader(p.index)
	p.addUse(res, useAttachmentInput, uint32(len(p.attachmentInputs)))
	p.attachmentInputs = append(p.attachmentInputs, res)
	return res
}

// AddTextureInput declares a general sampled read. The producer must fully
// complete and the resource transitions to shader-read state; a texture
// input never merges with its producer.
func (p *Pass) AddTextureInput(name string) *Resource {
	res := p.graph.textureResource(name)
	res.usage |= gputypes.TextureUsageTextureBinding
	res.queues |= p.queue
	res.addReader(p.index)
	p.addUse(res, useTextureInput, uint32(len(p.textureInputs)))
	p.textureInputs = append(p.textureInputs, res)
	return res
}

// AddStorageTextureOutput declares a storage image written by the pass.
func (p *Pass) AddStorageTextureOutput(name string, info AttachmentInfo) *Resource {
	res := p.graph.textureResource(name)
	res.att = info
	res.usage |= gputypes.TextureUsageStorageBinding | info.AuxUsage
	res.queues |= p.queue
	res.addWriter(p.index)
	p.addUse(res, useStorageTextureOutput, uint32(len(p.storageTextureOuts)))
	p.storageTextureOuts = append(p.storageTextureOuts, res)
	return res
}

// AddStorageOutput declares a storage buffer written by the pass.
func (p *Pass) AddStorageOutput(name string, info BufferInfo) *Resource {
	res := p.graph.bufferResource(name)
	res.buf = info
	res.bufUsage |= info.Usage | gputypes.BufferUsageStorage
	res.queues |= p.queue
	res.addWriter(p.index)
	p.addUse(res, useStorageOutput, uint32(len(p.storageOutputs)))
	p.storageOutputs = append(p.storageOutputs, res)
	return res
}

// AddStorageInput declares a storage buffer read by the pass.
func (p *Pass) AddStorageInput(name string) *Resource {
	res := p.graph.bufferResource(name)
	res.bufUsage |= gputypes.BufferUsageStorage
	res.queues |= p.queue
	res.addReader(p.index)
	p.addUse(res, useStorageInput, uint32(len(p.storageInputs)))
	p.storageInputs = append(p.storageInputs, res)
	return res
}

func (p *Pass) addUse(res *Resource, use useKind, slot uint32) {
	p.uses = append(p.uses, resourceUse{res: res, use: use, slot: slot})
}

// declares reports whether the pass declared any use of res.
func (p *Pass) declares(res *Resource) bool {
	for _, u := range p.uses {
		if u.res == res {
			return true
		}
	}
	return false
}

// inputs returns the resources the pass consumes, i.e. every use that is
// not a pure write.
func (p *Pass) inputs() []resourceUse {
	var in []resourceUse
	for _, u := range p.uses {
		if !u.use.writes() {
			in = append(in, u)
		}
	}
	return in
}
