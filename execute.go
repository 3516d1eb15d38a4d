// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// RenderGroupInfo describes a render-pass scope to the backend: the
// resolved attachments of a (possibly merged) graphics group with their
// load/store ops and clear values.
type RenderGroupInfo struct {
	// Label is a debug name, taken from the group's first pass.
	Label string

	// Width and Height are the render area in pixels.
	Width  uint32
	Height uint32

	// Colors are the color attachments in declaration order.
	Colors []ColorAttachment

	// DepthStencil is the depth-stencil attachment, or nil.
	DepthStencil *DepthStencilAttachment

	// Subpasses is the number of merged subpasses in the group.
	Subpasses int
}

// ColorAttachment is one resolved color attachment of a render group.
type ColorAttachment struct {
	View  TextureView
	Load  gputypes.LoadOp
	Store gputypes.StoreOp
	Clear gputypes.Color
}

// DepthStencilAttachment is the resolved depth-stencil attachment of a
// render group.
type DepthStencilAttachment struct {
	View         TextureView
	Load         gputypes.LoadOp
	Store        gputypes.StoreOp
	ClearDepth   float32
	ClearStencil uint32

	// ReadOnly marks groups that only test against the attachment.
	ReadOnly bool
}

// planAttachmentOps computes load and store ops for every attachment of
// every graphics group from liveness: an attachment written for the first
// time is cleared, a chained or previously written one is loaded, and
// contents are stored only when a later pass (or the surface) consumes
// them. Clear callbacks can still decline at execution time, flipping a
// planned clear to a load.
func planAttachmentOps(g *Graph, groups []*RenderGroup, order []int) {
	pos := make([]int, len(g.passes))
	for schedIdx, passIdx := range order {
		pos[passIdx] = schedIdx
	}

	for _, gr := range groups {
		if gr.queue != QueueGraphics {
			continue
		}
		last := pos[gr.passes[len(gr.passes)-1].index]
		seen := make(map[*Resource]bool)

		for _, p := range gr.passes {
			for i, res := range p.colorOutputs {
				if seen[res] {
					continue
				}
				seen[res] = true
				gr.colorAttachments = append(gr.colorAttachments, attachmentOp{
					res:   res,
					pass:  p,
					index: i,
					load:  attachmentLoadOp(g, res, pos, gr.first),
					store: attachmentStoreOp(g, res, pos, last),
				})
			}
			if res := p.depthStencilOutput; res != nil && gr.depthStencil == nil {
				gr.depthStencil = &attachmentOp{
					res:     res,
					pass:    p,
					isDepth: true,
					load:    attachmentLoadOp(g, res, pos, gr.first),
					store:   attachmentStoreOp(g, res, pos, last),
				}
			}
			if res := p.depthStencilInput; res != nil && gr.depthStencil == nil {
				gr.depthStencil = &attachmentOp{
					res:     res,
					pass:    p,
					isDepth: true,
					load:    gputypes.LoadOpLoad,
					store:   attachmentStoreOp(g, res, pos, last),
				}
			}
		}
	}
}

func attachmentLoadOp(g *Graph, res *Resource, pos []int, groupFirst int) gputypes.LoadOp {
	if g.chains[res] != nil {
		return gputypes.LoadOpLoad
	}
	for _, w := range res.writers {
		if pos[w] < groupFirst {
			return gputypes.LoadOpLoad
		}
	}
	return gputypes.LoadOpClear
}

func attachmentStoreOp(g *Graph, res *Resource, pos []int, groupLast int) gputypes.StoreOp {
	if res.name == g.surfaceSource {
		return gputypes.StoreOpStore
	}
	for _, r := range res.readers {
		if pos[r] > groupLast {
			return gputypes.StoreOpStore
		}
	}
	for _, w := range res.writers {
		if pos[w] > groupLast {
			return gputypes.StoreOpStore
		}
	}
	// A chain source's contents must survive for the output continuing it.
	for _, src := range g.chains {
		if src == res {
			return gputypes.StoreOpStore
		}
	}
	return gputypes.StoreOpDiscard
}

// Execute replays the compiled plan: one command buffer per render group,
// submitted in schedule order with the barriers, subpass sequence, and
// cross-queue handoffs computed at bake time. Pass recorders run inline
// on the calling goroutine.
func (g *Graph) Execute() error {
	if g.plan == nil {
		return ErrNotBaked
	}

	for gi, gr := range g.plan.groups {
		cb, err := g.device.NewCommandBuffer(gr.queue)
		if err != nil {
			return fmt.Errorf("framegraph: open command buffer for group %d: %w", gi, err)
		}

		if len(gr.barriers) > 0 {
			if err := cb.Barrier(gr.barriers); err != nil {
				return fmt.Errorf("framegraph: barriers for group %d: %w", gi, err)
			}
		}

		if gr.queue == QueueGraphics {
			info, err := g.renderGroupInfo(gr)
			if err != nil {
				return err
			}
			if err := cb.BeginRenderGroup(info); err != nil {
				return fmt.Errorf("framegraph: begin group %q: %w", info.Label, err)
			}
			for pi, p := range gr.passes {
				if pi > 0 {
					if err := cb.NextSubpass(); err != nil {
						return fmt.Errorf("framegraph: subpass %q: %w", p.name, err)
					}
				}
				if err := g.recordPass(cb, p); err != nil {
					return err
				}
			}
			if err := cb.EndRenderGroup(); err != nil {
				return fmt.Errorf("framegraph: end group %q: %w", info.Label, err)
			}
		} else {
			for _, p := range gr.passes {
				if err := g.recordPass(cb, p); err != nil {
					return err
				}
			}
		}

		sub := Submission{
			Queue:    gr.queue,
			Commands: cb,
			Waits:    gr.waits,
			Signals:  gr.signals,
		}
		if err := g.device.Submit(sub); err != nil {
			return fmt.Errorf("framegraph: submit group %d: %w", gi, err)
		}
	}
	return nil
}

// renderGroupInfo resolves a graphics group's attachments to views for the
// current frame. Resolution happens per frame because the surface texture
// may change between frames.
func (g *Graph) renderGroupInfo(gr *RenderGroup) (*RenderGroupInfo, error) {
	info := &RenderGroupInfo{
		Label:     gr.passes[0].name,
		Width:     gr.width,
		Height:    gr.height,
		Subpasses: len(gr.passes),
	}

	for _, op := range gr.colorAttachments {
		view, err := g.resolveView(op.res, ViewDesc{MipCount: 1, LayerCount: 1, Label: op.res.name})
		if err != nil {
			return nil, err
		}
		att := ColorAttachment{View: view, Load: op.load, Store: op.store}
		if att.Load == gputypes.LoadOpClear {
			if f := op.pass.clearColor; f != nil {
				if c, ok := f(op.index); ok {
					att.Clear = c
				} else {
					att.Load = gputypes.LoadOpLoad
				}
			}
		}
		info.Colors = append(info.Colors, att)
	}

	if op := gr.depthStencil; op != nil {
		view, err := g.resolveView(op.res, ViewDesc{MipCount: 1, LayerCount: 1, Label: op.res.name})
		if err != nil {
			return nil, err
		}
		att := &DepthStencilAttachment{
			View:       view,
			Load:       op.load,
			Store:      op.store,
			ClearDepth: 1,
			ReadOnly:   op.pass.depthStencilOutput == nil,
		}
		if att.Load == gputypes.LoadOpClear {
			if f := op.pass.clearDepth; f != nil {
				if d, s, ok := f(); ok {
					att.ClearDepth = d
					att.ClearStencil = s
				} else {
					att.Load = gputypes.LoadOpLoad
				}
			}
		}
		info.DepthStencil = att
	}
	return info, nil
}

func (g *Graph) recordPass(cb CommandBuffer, p *Pass) error {
	rc := &RecordContext{CommandBuffer: cb, graph: g, pass: p}
	if err := rc.bindDeclared(); err != nil {
		return fmt.Errorf("framegraph: bind pass %q: %w", p.name, err)
	}
	if p.recorder == nil {
		return nil
	}
	if err := p.recorder.Record(rc); err != nil {
		return fmt.Errorf("framegraph: record pass %q: %w", p.name, err)
	}
	return nil
}

// resolveTexture returns the backing texture of a resource for the
// current frame. The surface slot prefers the externally supplied surface
// texture; every other slot uses the graph-owned allocation. The second
// result reports whether views of the texture may be cached on the slot.
func (g *Graph) resolveTexture(res *Resource) (Texture, bool) {
	phys := g.physical[res.physical]
	if phys.surface && g.surfaceTexture != nil {
		return g.surfaceTexture, false
	}
	return phys.tex, true
}

func (g *Graph) resolveView(res *Resource, desc ViewDesc) (TextureView, error) {
	phys := g.physical[res.physical]
	tex, cacheable := g.resolveTexture(res)
	if tex == nil {
		return nil, fmt.Errorf("framegraph: resource %q has no backing texture", res.name)
	}
	if !cacheable {
		v, err := tex.View(desc)
		if err != nil {
			return nil, fmt.Errorf("framegraph: view of %q: %w", res.name, err)
		}
		return v, nil
	}
	return phys.view(tex, desc)
}

// RecordContext is handed to a pass's Recorder. It embeds the group's
// CommandBuffer for draw, dispatch, binding and push-constant calls, and
// resolves the pass's declared resources to physical handles. Handles are
// valid only for the duration of the recording callback.
//
// Accessing a resource the pass did not declare returns
// ErrUndeclaredResource; declarations are the graph's only source of
// dependency information, so undeclared access would be unsynchronized.
type RecordContext struct {
	CommandBuffer

	graph *Graph
	pass  *Pass
}

// Pass returns the pass being recorded.
func (rc *RecordContext) Pass() *Pass { return rc.pass }

func (rc *RecordContext) resource(name string) (*Resource, error) {
	i, ok := rc.graph.resourceIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	res := rc.graph.resources[i]
	if !rc.pass.declares(res) {
		return nil, fmt.Errorf("%w: pass %q, resource %q", ErrUndeclaredResource, rc.pass.name, name)
	}
	return res, nil
}

// Dimensions returns the resolved dimensions of a declared resource.
func (rc *RecordContext) Dimensions(name string) (ResourceDimensions, error) {
	res, err := rc.resource(name)
	if err != nil {
		return ResourceDimensions{}, err
	}
	return rc.graph.physical[res.physical].dim, nil
}

// PhysicalTexture returns the backing texture of a declared resource.
func (rc *RecordContext) PhysicalTexture(name string) (Texture, error) {
	res, err := rc.resource(name)
	if err != nil {
		return nil, err
	}
	if res.kind != ResourceTexture {
		return nil, fmt.Errorf("%w: %q is a %s", ErrResourceKindMismatch, name, res.kind)
	}
	tex, _ := rc.graph.resolveTexture(res)
	if tex == nil {
		return nil, fmt.Errorf("framegraph: resource %q has no backing texture", name)
	}
	return tex, nil
}

// PhysicalBuffer returns the backing buffer of a declared resource.
func (rc *RecordContext) PhysicalBuffer(name string) (Buffer, error) {
	res, err := rc.resource(name)
	if err != nil {
		return nil, err
	}
	if res.kind != ResourceBuffer {
		return nil, fmt.Errorf("%w: %q is a %s", ErrResourceKindMismatch, name, res.kind)
	}
	buf := rc.graph.physical[res.physical].buf
	if buf == nil {
		return nil, fmt.Errorf("framegraph: resource %q has no backing buffer", name)
	}
	return buf, nil
}

// TextureView returns a view of a mip range of a declared resource.
// MipCount zero selects all levels from baseMip.
func (rc *RecordContext) TextureView(name string, baseMip, mipCount uint32) (TextureView, error) {
	res, err := rc.resource(name)
	if err != nil {
		return nil, err
	}
	if res.kind != ResourceTexture {
		return nil, fmt.Errorf("%w: %q is a %s", ErrResourceKindMismatch, name, res.kind)
	}
	return rc.graph.resolveView(res, ViewDesc{
		BaseMip:  baseMip,
		MipCount: mipCount,
		Label:    name,
	})
}

// bindDeclared binds the pass's declared inputs and storage outputs to
// their conventional slots before the recorder runs: attachment inputs as
// input attachments, texture inputs as sampled textures on set 0, storage
// texture outputs as level-0 storage views on set 1, and storage buffers
// on set 2. Slot order follows declaration order within each category.
// Recorders may rebind as needed (e.g. per-mip storage views).
func (rc *RecordContext) bindDeclared() error {
	for _, u := range rc.pass.uses {
		switch u.use {
		case useAttachmentInput:
			v, err := rc.graph.resolveView(u.res, ViewDesc{MipCount: 1, LayerCount: 1, Label: u.res.name})
			if err != nil {
				return err
			}
			if err := rc.SetInputAttachment(u.slot, v); err != nil {
				return err
			}
		case useTextureInput:
			v, err := rc.graph.resolveView(u.res, ViewDesc{Label: u.res.name})
			if err != nil {
				return err
			}
			if err := rc.SetTexture(0, u.slot, v); err != nil {
				return err
			}
		case useStorageTextureOutput:
			v, err := rc.graph.resolveView(u.res, ViewDesc{MipCount: 1, LayerCount: 1, Label: u.res.name})
			if err != nil {
				return err
			}
			if err := rc.SetStorageTexture(1, u.slot, v); err != nil {
				return err
			}
		case useStorageInput, useStorageOutput:
			buf := rc.graph.physical[u.res.physical].buf
			if buf == nil {
				return fmt.Errorf("framegraph: resource %q has no backing buffer", u.res.name)
			}
			if err := rc.SetStorageBuffer(2, u.slot, buf, 0, buf.Size()); err != nil {
				return err
			}
		}
	}
	return nil
}
