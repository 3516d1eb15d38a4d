// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// requiredState maps how a pass touches a resource to the layout and
// access the resource must be in when the pass runs. Buffers have no
// image layout and stay in LayoutUndefined.
func requiredState(u useKind, kind ResourceKind) (Layout, Access) {
	if kind == ResourceBuffer {
		switch u {
		case useStorageOutput:
			return LayoutUndefined, AccessStorageWrite
		case useStorageInput:
			return LayoutUndefined, AccessStorageRead
		}
		return LayoutUndefined, 0
	}
	switch u {
	case useColorOutput, useChainSource:
		return LayoutColorAttachment, AccessColorWrite
	case useDepthStencilOutput:
		return LayoutDepthStencilAttachment, AccessDepthStencilWrite
	case useDepthStencilInput:
		return LayoutDepthStencilRead, AccessDepthStencilRead
	case useAttachmentInput:
		return LayoutShaderRead, AccessInputRead
	case useTextureInput:
		return LayoutShaderRead, AccessShaderRead
	case useStorageTextureOutput:
		return LayoutStorage, AccessStorageWrite
	}
	return LayoutUndefined, 0
}

// groupState is the aggregated entry state a render group requires of one
// physical allocation. The first use in subpass order decides the layout;
// accesses of every use in the group are unioned, so a merged group that
// writes a color output and later reads it as an attachment input enters
// with the attachment layout and both accesses tracked.
type groupState struct {
	phys   *physicalResource
	res    *Resource
	layout Layout
	access Access
}

// insertBarriers walks the render groups in schedule order and computes
// every layout transition, memory visibility barrier, and cross-queue
// handoff the plan needs. Read-after-read in an unchanged layout emits
// nothing. The per-slot layout, access, and owning-queue tracking lives on
// the physical resources, which Bake resets by reallocating them.
func insertBarriers(g *Graph, groups []*RenderGroup, physical []*physicalResource) {
	handoffs := make(map[[2]int]int)

	for gi, gr := range groups {
		var states []*groupState
		seen := make(map[*physicalResource]*groupState)

		for _, p := range gr.passes {
			for _, u := range p.uses {
				phys := physical[u.res.physical]
				layout, access := requiredState(u.use, phys.kind)
				if st, ok := seen[phys]; ok {
					st.access |= access
					continue
				}
				st := &groupState{phys: phys, res: u.res, layout: layout, access: access}
				seen[phys] = st
				states = append(states, st)
			}
		}

		for _, st := range states {
			phys := st.phys

			sameQueue := phys.lastGroup < 0 || phys.lastQueue == gr.queue
			if !sameQueue {
				addHandoff(handoffs, groups, phys.lastGroup, gi)
			}

			// Read-after-read in the same layout on the same queue needs
			// no barrier; just extend the tracked access set.
			if sameQueue && phys.layout == st.layout &&
				!phys.access.writes() && !st.access.writes() {
				phys.access |= st.access
				phys.lastQueue = gr.queue
				phys.lastGroup = gi
				continue
			}

			fromQueue := phys.lastQueue
			if phys.lastGroup < 0 {
				fromQueue = gr.queue
			}
			gr.barriers = append(gr.barriers, Barrier{
				Resource:   st.res,
				FromLayout: phys.layout,
				ToLayout:   st.layout,
				FromAccess: phys.access,
				ToAccess:   st.access,
				FromQueue:  fromQueue,
				ToQueue:    gr.queue,
			})

			phys.layout = st.layout
			phys.access = st.access
			phys.lastQueue = gr.queue
			phys.lastGroup = gi
		}
	}

	for gi, gr := range groups {
		if len(gr.barriers) == 0 && len(gr.waits) == 0 && len(gr.signals) == 0 {
			continue
		}
		Logger().Debug("framegraph: group synchronization",
			"group", gi,
			"barriers", len(gr.barriers),
			"waits", len(gr.waits),
			"signals", len(gr.signals))
	}
}

// addHandoff records a cross-queue dependency from the producer group to
// the consumer group, reusing one handoff ID per ordered group pair.
func addHandoff(handoffs map[[2]int]int, groups []*RenderGroup, producer, consumer int) {
	key := [2]int{producer, consumer}
	if _, ok := handoffs[key]; ok {
		return
	}
	id := len(handoffs)
	handoffs[key] = id
	groups[producer].signals = append(groups[producer].signals, id)
	groups[consumer].waits = append(groups[consumer].waits, id)
}
