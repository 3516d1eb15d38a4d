// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// physicalResource is one concrete backing allocation, shared by the
// logical resources whose live ranges do not overlap. It also carries the
// access state tracked by the barrier inserter at bake time and the lazily
// created view cache used during execution.
type physicalResource struct {
	index int
	kind  ResourceKind

	dim      ResourceDimensions
	usage    gputypes.TextureUsage
	bufUsage gputypes.BufferUsage

	// surface marks the slot backed by the externally supplied surface
	// texture when one is set.
	surface bool

	logical []*Resource
	// ranges[i] is the inclusive [first, last] render-group live range
	// of logical[i].
	ranges [][2]int

	tex   Texture
	buf   Buffer
	views map[ViewDesc]TextureView

	// Bake-time barrier tracking.
	layout    Layout
	access    Access
	lastQueue QueueFlags
	lastGroup int
}

func (p *physicalResource) label() string {
	if len(p.logical) == 0 {
		return fmt.Sprintf("physical-%d", p.index)
	}
	return p.logical[0].name
}

// view returns a cached view of the backing texture, creating it on first
// reference. Cached views live as long as the plan.
func (p *physicalResource) view(tex Texture, desc ViewDesc) (TextureView, error) {
	if v, ok := p.views[desc]; ok {
		return v, nil
	}
	v, err := tex.View(desc)
	if err != nil {
		return nil, fmt.Errorf("framegraph: view of %q: %w", p.label(), err)
	}
	if p.views == nil {
		p.views = make(map[ViewDesc]TextureView)
	}
	p.views[desc] = v
	return v, nil
}

func (p *physicalResource) release() {
	if p.tex != nil {
		p.tex.Release()
		p.tex = nil
	}
	if p.buf != nil {
		p.buf.Release()
		p.buf = nil
	}
	p.views = nil
}

// resolveTextureDimensions resolves a texture resource's concrete shape
// from its size class. SizeInputRelative chases the referent, so a chain
// of input-relative resources resolves through to its absolute or
// surface-relative root.
func resolveTextureDimensions(g *Graph, res *Resource) ResourceDimensions {
	return resolveTextureDimensionsDepth(g, res, 0)
}

func resolveTextureDimensionsDepth(g *Graph, res *Resource, depth int) ResourceDimensions {
	if depth > len(g.resources) {
		// Cyclic size reference; reported by allocatePhysical as a zero
		// dimension.
		return ResourceDimensions{}
	}

	info := res.att
	dim := ResourceDimensions{
		Format:  info.Format,
		Levels:  info.Levels,
		Layers:  max(info.Layers, 1),
		Samples: max(info.Samples, 1),
	}
	if dim.Format == gputypes.TextureFormatUndefined {
		dim.Format = g.surfaceDim.Format
	}

	scaleW := info.Width
	scaleH := info.Height

	switch info.SizeClass {
	case SizeAbsolute:
		dim.Width = uint32(scaleW)
		dim.Height = uint32(scaleH)
	case SizeSurfaceRelative:
		if scaleW == 0 {
			scaleW = 1
		}
		if scaleH == 0 {
			scaleH = 1
		}
		dim.Width = scaledDimension(g.surfaceDim.Width, scaleW)
		dim.Height = scaledDimension(g.surfaceDim.Height, scaleH)
	case SizeInputRelative:
		if i, ok := g.resourceIndex[info.SizeRelativeName]; ok {
			ref := resolveTextureDimensionsDepth(g, g.resources[i], depth+1)
			if scaleW == 0 {
				scaleW = 1
			}
			if scaleH == 0 {
				scaleH = 1
			}
			dim.Width = scaledDimension(ref.Width, scaleW)
			dim.Height = scaledDimension(ref.Height, scaleH)
		}
	}

	if dim.Levels == 0 {
		dim.Levels = MipLevels(dim.Width, dim.Height)
	}
	return dim
}

func scaledDimension(base uint32, scale float32) uint32 {
	v := uint32(float32(base) * scale)
	if v == 0 && base != 0 {
		v = 1
	}
	return v
}

// allocatePhysical resolves every resource's concrete dimensions, computes
// live ranges over the render-group schedule, and assigns each resource to
// a physical slot. Resources with pairwise non-overlapping live ranges and
// identical shape share one slot, minimizing peak memory. Assignment
// iterates in declaration order, so it is deterministic for identical
// topology.
//
// Ranges are tracked at render-group granularity, not pass granularity:
// barriers only separate slot tenants between groups, so two resources
// touched by passes of one group are simultaneously live even when their
// pass ranges are disjoint. Merged subpasses would otherwise bind one
// image as two attachments of a single render-pass scope.
func allocatePhysical(g *Graph, groups []*RenderGroup) ([]*physicalResource, error) {
	pos := make([]int, len(g.passes))
	for gi, gr := range groups {
		for _, p := range gr.passes {
			pos[p.index] = gi
		}
	}

	var physical []*physicalResource
	assigned := make(map[*Resource]*physicalResource)

	for _, res := range g.resources {
		var dim ResourceDimensions
		switch res.kind {
		case ResourceTexture:
			dim = resolveTextureDimensions(g, res)
			if dim.Width == 0 || dim.Height == 0 {
				return nil, fmt.Errorf("%w: resource %q resolves to zero dimensions",
					ErrInvalidDeclaration, res.name)
			}
		case ResourceBuffer:
			if res.buf.Size == 0 {
				return nil, fmt.Errorf("%w: buffer %q has zero size",
					ErrInvalidDeclaration, res.name)
			}
			dim = ResourceDimensions{BufferSize: res.buf.Size}
		}

		first, last := liveRange(res, pos)

		var slot *physicalResource
		if src, ok := g.chains[res]; ok {
			// A chained output continues its source's allocation so the
			// previous contents are visible; the two share one slot even
			// though their live ranges meet at the chaining pass.
			phys, ok := assigned[src]
			if !ok {
				return nil, fmt.Errorf("%w: %q chains from %q, which has no allocation yet",
					ErrInvalidDeclaration, res.name, src.name)
			}
			if phys.dim != dim {
				return nil, fmt.Errorf("%w: chained output %q (%s) does not match %q (%s)",
					ErrInvalidDeclaration, res.name, dim, src.name, phys.dim)
			}
			slot = phys
		}
		if slot == nil && g.enableAliasing && !res.noAlias {
			for _, phys := range physical {
				if phys.surface || phys.kind != res.kind || phys.dim != dim {
					continue
				}
				if hasNoAliasMember(phys) || overlapsAny(phys, first, last) {
					continue
				}
				slot = phys
				break
			}
		}
		if slot == nil {
			slot = &physicalResource{
				index:     len(physical),
				kind:      res.kind,
				dim:       dim,
				lastGroup: -1,
			}
			physical = append(physical, slot)
		}

		res.physical = slot.index
		assigned[res] = slot
		slot.logical = append(slot.logical, res)
		slot.ranges = append(slot.ranges, [2]int{first, last})
		slot.usage |= res.usage
		slot.bufUsage |= res.bufUsage
		if res.name == g.surfaceSource {
			slot.surface = true
		}

		if len(slot.logical) > 1 {
			Logger().Debug("framegraph: resource aliased",
				"resource", res.name,
				"slot", slot.index,
				"with", slot.logical[0].name)
		}
	}

	if err := validateAliasing(g, physical); err != nil {
		return nil, err
	}
	return physical, nil
}

// liveRange returns the inclusive render-group index range from the
// resource's first producing group to its last consuming group.
func liveRange(res *Resource, pos []int) (first, last int) {
	first, last = int(^uint(0)>>1), -1
	touch := func(pass int) {
		p := pos[pass]
		if p < first {
			first = p
		}
		if p > last {
			last = p
		}
	}
	for _, w := range res.writers {
		touch(w)
	}
	for _, r := range res.readers {
		touch(r)
	}
	return first, last
}

func hasNoAliasMember(phys *physicalResource) bool {
	for _, l := range phys.logical {
		if l.noAlias {
			return true
		}
	}
	return false
}

func overlapsAny(phys *physicalResource, first, last int) bool {
	for _, r := range phys.ranges {
		if first <= r[1] && r[0] <= last {
			return true
		}
	}
	return false
}

// validateAliasing checks the aliasing invariant: within every physical
// slot, live ranges are pairwise disjoint. Chain-linked pairs are exempt,
// since a chained output deliberately continues its source's allocation.
func validateAliasing(g *Graph, physical []*physicalResource) error {
	for _, phys := range physical {
		for i := 0; i < len(phys.ranges); i++ {
			for j := i + 1; j < len(phys.ranges); j++ {
				a, b := phys.logical[i], phys.logical[j]
				if chainLinked(g, a, b) {
					continue
				}
				ra, rb := phys.ranges[i], phys.ranges[j]
				if ra[0] <= rb[1] && rb[0] <= ra[1] {
					return fmt.Errorf("framegraph: internal error: %q and %q alias with overlapping live ranges",
						a.name, b.name)
				}
			}
		}
	}
	return nil
}

// chainLinked reports whether a and b are connected through chained
// outputs in either direction, transitively.
func chainLinked(g *Graph, a, b *Resource) bool {
	for r := a; r != nil; r = g.chains[r] {
		if r == b {
			return true
		}
	}
	for r := b; r != nil; r = g.chains[r] {
		if r == a {
			return true
		}
	}
	return false
}
