// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// mergePasses folds the topological schedule into render groups. Two
// graphics passes land in one group iff they are adjacent in topological
// order, share identical output dimensions, and are connected only through
// attachment-input (or read-only depth-stencil) edges. Keeping such chains
// in one render-pass scope avoids round-tripping attachment contents
// through off-chip memory.
//
// A texture-input edge always forces the producer to fully complete, so a
// consumer reached through one starts a new group. Compute and transfer
// passes are never merged.
func mergePasses(g *Graph, order []int) []*RenderGroup {
	var groups []*RenderGroup
	var current *RenderGroup

	flush := func() {
		if current != nil {
			groups = append(groups, current)
			current = nil
		}
	}

	for schedIdx, passIdx := range order {
		p := g.passes[passIdx]
		if p.queue != QueueGraphics {
			flush()
			groups = append(groups, &RenderGroup{
				queue:  p.queue,
				passes: []*Pass{p},
				first:  schedIdx,
			})
			continue
		}

		w, h := passOutputExtent(g, p)
		if current != nil && canMerge(g, current, p, w, h) {
			current.passes = append(current.passes, p)
			continue
		}

		flush()
		current = &RenderGroup{
			queue:  QueueGraphics,
			passes: []*Pass{p},
			first:  schedIdx,
			width:  w,
			height: h,
		}
	}
	flush()

	for _, gr := range groups {
		Logger().Debug("framegraph: render group",
			"queue", gr.queue.String(),
			"passes", len(gr.passes))
	}
	return groups
}

// canMerge reports whether pass p may join the current group.
func canMerge(g *Graph, group *RenderGroup, p *Pass, w, h uint32) bool {
	if w != group.width || h != group.height {
		return false
	}
	// Storage outputs happen outside a render-pass scope.
	if len(p.storageTextureOuts) > 0 || len(p.storageOutputs) > 0 {
		return false
	}
	// A chained output continues its source's allocation, so it cannot
	// share a render-pass scope with the pass producing the source: the
	// two attachments would bind one image.
	for _, src := range p.chainSources {
		if src == nil {
			continue
		}
		for _, member := range group.passes {
			for _, wr := range src.writers {
				if wr == member.index {
					return false
				}
			}
		}
	}

	connected := false
	for _, member := range group.passes {
		if dependsThroughTexture(member, p) {
			return false
		}
		if storageDependency(member, p) {
			return false
		}
		if dependsOn(member, p) {
			connected = true
		}
	}
	return connected
}

// storageDependency reports whether consumer reads producer's output
// through a storage input.
func storageDependency(producer, consumer *Pass) bool {
	for _, in := range consumer.storageInputs {
		for _, w := range in.writers {
			if w == producer.index {
				return true
			}
		}
	}
	return false
}

// passOutputExtent returns the resolved output dimensions of a graphics
// pass, from its first color output or its depth-stencil output.
func passOutputExtent(g *Graph, p *Pass) (uint32, uint32) {
	var out *Resource
	if len(p.colorOutputs) > 0 {
		out = p.colorOutputs[0]
	} else if p.depthStencilOutput != nil {
		out = p.depthStencilOutput
	}
	if out == nil {
		return g.surfaceDim.Width, g.surfaceDim.Height
	}
	dim := resolveTextureDimensions(g, out)
	return dim.Width, dim.Height
}
