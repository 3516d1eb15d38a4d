// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Configuration errors. These indicate a logic defect in the calling code
// and are surfaced by Bake; there is no partial-recovery path.
var (
	// ErrNilDevice is returned by Bake when the device is nil.
	ErrNilDevice = errors.New("framegraph: device is nil")

	// ErrNotBaked is returned when Execute or a post-bake query is called
	// before a successful Bake.
	ErrNotBaked = errors.New("framegraph: graph has not been baked")

	// ErrInvalidDeclaration is returned by Bake for malformed pass or
	// resource declarations.
	ErrInvalidDeclaration = errors.New("framegraph: invalid declaration")

	// ErrDuplicatePass is returned by Bake when two passes share a name.
	ErrDuplicatePass = errors.New("framegraph: duplicate pass name")

	// ErrResourceKindMismatch is returned by Bake when a name is declared
	// both as a texture and as a buffer.
	ErrResourceKindMismatch = errors.New("framegraph: resource redeclared with different kind")

	// ErrMissingProducer is returned by Bake when an input resource has no
	// producer in the current declaration cycle.
	ErrMissingProducer = errors.New("framegraph: input resource has no producer")

	// ErrGraphHasCycle is returned by Bake when the producer/consumer
	// graph is cyclic. The error message names the participating passes.
	ErrGraphHasCycle = errors.New("framegraph: pass graph contains a cycle")

	// ErrUnknownResource is returned by ResourceDimensions for a name that
	// was never declared.
	ErrUnknownResource = errors.New("framegraph: unknown resource")

	// ErrNoSurfaceDimensions is returned by Bake when a surface-relative
	// resource is declared but SetSurfaceDimensions was never called.
	ErrNoSurfaceDimensions = errors.New("framegraph: surface dimensions not set")

	// ErrUndeclaredResource is returned by RecordContext accessors when a
	// recorder touches a resource its pass did not declare.
	ErrUndeclaredResource = errors.New("framegraph: resource not declared by pass")
)

// Graph is a frame graph: a registry of passes and logical resources that
// Bake compiles into an execution plan, replayed every frame by Execute.
//
// A Graph is driven from a single goroutine. Bake is synchronous, not
// re-entrant, and must not overlap with execution of a previously compiled
// plan for the same instance.
type Graph struct {
	passes        []*Pass
	passIndex     map[string]int
	resources     []*Resource
	resourceIndex map[string]int

	surfaceDim    ResourceDimensions
	surfaceSet    bool
	surfaceSource string

	declErrs []error

	// chains maps a chained color output to the history resource whose
	// allocation and contents it continues.
	chains map[*Resource]*Resource

	enableAliasing bool

	device         Device
	plan           *executionPlan
	physical       []*physicalResource
	surfaceTexture Texture
}

// New creates an empty frame graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		passIndex:      make(map[string]int),
		resourceIndex:  make(map[string]int),
		chains:         make(map[*Resource]*Resource),
		enableAliasing: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Option configures a Graph.
type Option func(*Graph)

// WithAliasing enables or disables physical-resource aliasing. Aliasing is
// on by default; disabling it gives every logical resource a dedicated
// allocation, which helps when debugging resource corruption.
func WithAliasing(enabled bool) Option {
	return func(g *Graph) { g.enableAliasing = enabled }
}

// AddPass registers a pass with the given name and queue affinity and
// returns it for resource declaration. Registration order is the tie-break
// for equal-priority scheduling decisions. Declaring two passes with the
// same name is a configuration error reported by Bake.
func (g *Graph) AddPass(name string, queue QueueFlags) *Pass {
	if i, ok := g.passIndex[name]; ok {
		g.declErr(fmt.Errorf("%w: %q", ErrDuplicatePass, name))
		return g.passes[i]
	}
	p := &Pass{
		graph: g,
		index: len(g.passes),
		name:  name,
		queue: queue,
	}
	g.passIndex[name] = p.index
	g.passes = append(g.passes, p)
	return p
}

// Pass returns the declared pass with the given name, or nil.
func (g *Graph) Pass(name string) *Pass {
	if i, ok := g.passIndex[name]; ok {
		return g.passes[i]
	}
	return nil
}

// SetSurfaceDimensions sets the presentation surface dimensions used to
// resolve SizeSurfaceRelative resources. Callers invoke it before Bake,
// typically from a surface-change notification.
func (g *Graph) SetSurfaceDimensions(dim ResourceDimensions) {
	if dim.Levels == 0 {
		dim.Levels = 1
	}
	if dim.Layers == 0 {
		dim.Layers = 1
	}
	if dim.Samples == 0 {
		dim.Samples = 1
	}
	g.surfaceDim = dim
	g.surfaceSet = true
}

// SetSurfaceSource names the resource whose final contents are presented
// to the surface. The named resource never aliases and defaults to
// store-op store.
func (g *Graph) SetSurfaceSource(name string) {
	g.surfaceSource = name
}

// SetSurfaceTexture supplies the externally owned texture backing the
// surface source for the current frame (e.g. the acquired swapchain
// image). Without one, the graph allocates an offscreen texture instead.
// May be called between frames without rebaking.
func (g *Graph) SetSurfaceTexture(tex Texture) {
	g.surfaceTexture = tex
}

// OnSurfaceChange records new surface dimensions and invalidates the
// compiled plan, releasing its physical allocations. Declarations are
// kept; the caller re-bakes before the next Execute. Unchanged dimensions
// are a no-op, so it is safe to call on every resize notification.
func (g *Graph) OnSurfaceChange(dim ResourceDimensions) {
	if dim.Levels == 0 {
		dim.Levels = 1
	}
	if dim.Layers == 0 {
		dim.Layers = 1
	}
	if dim.Samples == 0 {
		dim.Samples = 1
	}
	if g.surfaceSet && dim == g.surfaceDim {
		return
	}
	g.SetSurfaceDimensions(dim)
	if g.plan == nil {
		return
	}
	g.releasePhysical()
	g.plan = nil
	g.surfaceTexture = nil
	Logger().Info("framegraph: plan discarded on surface change",
		"width", dim.Width, "height", dim.Height)
}

// Reset discards all declared passes and resources, the compiled plan and
// its physical allocations. Callers re-declare the graph and Bake again;
// this is the whole-frame topology-change path (e.g. a surface resize).
func (g *Graph) Reset() {
	g.releasePhysical()
	g.passes = nil
	g.passIndex = make(map[string]int)
	g.resources = nil
	g.resourceIndex = make(map[string]int)
	g.chains = make(map[*Resource]*Resource)
	g.declErrs = nil
	g.plan = nil
	g.surfaceSource = ""
	g.surfaceTexture = nil
	Logger().Info("framegraph: graph reset")
}

// Baked reports whether a compiled plan is available.
func (g *Graph) Baked() bool { return g.plan != nil }

// ResourceDimensions returns the resolved dimensions of a named resource.
// Valid only after a successful Bake.
func (g *Graph) ResourceDimensions(name string) (ResourceDimensions, error) {
	if g.plan == nil {
		return ResourceDimensions{}, ErrNotBaked
	}
	i, ok := g.resourceIndex[name]
	if !ok {
		return ResourceDimensions{}, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	res := g.resources[i]
	return g.physical[res.physical].dim, nil
}

// Bake compiles the declared passes into an execution plan: it resolves
// dependencies, orders passes, merges subpasses, allocates and aliases
// physical resources on the device, and computes every barrier and
// cross-queue handoff. The plan is reused by Execute until Reset.
//
// Bake reports configuration errors (missing producers, cycles, malformed
// declarations) with the offending pass and resource names.
func (g *Graph) Bake(device Device) error {
	if device == nil {
		return ErrNilDevice
	}
	if len(g.declErrs) > 0 {
		return errors.Join(g.declErrs...)
	}
	if err := g.validate(); err != nil {
		return err
	}

	order, err := resolveDependencies(g)
	if err != nil {
		return err
	}

	groups := mergePasses(g, order)

	physical, err := allocatePhysical(g, groups)
	if err != nil {
		return err
	}

	insertBarriers(g, groups, physical)
	planAttachmentOps(g, groups, order)

	// Discard the previous plan's allocations before creating new ones.
	g.releasePhysical()
	g.device = device
	g.physical = physical
	if err := g.createPhysical(); err != nil {
		return err
	}

	g.plan = &executionPlan{groups: groups, order: order}
	Logger().Info("framegraph: plan compiled",
		"passes", len(g.passes),
		"groups", len(groups),
		"resources", len(g.resources),
		"physical", len(physical))
	return nil
}

// validate checks declaration-time invariants that do not need the
// dependency graph: producers exist for every input, surface dimensions
// are available when required, and size referents are declared.
func (g *Graph) validate() error {
	for _, p := range g.passes {
		for _, u := range p.inputs() {
			// The producer must be declared no later than the reader;
			// otherwise scheduling would place the read before any write
			// and the pass would see undefined contents.
			produced := false
			for _, w := range u.res.writers {
				if w <= p.index {
					produced = true
					break
				}
			}
			if !produced {
				return fmt.Errorf("%w: pass %q reads %q (%s)",
					ErrMissingProducer, p.name, u.res.name, u.use)
			}
		}
	}
	for _, res := range g.resources {
		if res.kind != ResourceTexture {
			continue
		}
		switch res.att.SizeClass {
		case SizeSurfaceRelative:
			if !g.surfaceSet {
				return fmt.Errorf("%w: resource %q is surface-relative", ErrNoSurfaceDimensions, res.name)
			}
		case SizeInputRelative:
			ref := res.att.SizeRelativeName
			if _, ok := g.resourceIndex[ref]; !ok {
				return fmt.Errorf("%w: resource %q sizes from undeclared %q",
					ErrInvalidDeclaration, res.name, ref)
			}
		}
	}
	if g.surfaceSource != "" {
		i, ok := g.resourceIndex[g.surfaceSource]
		if !ok {
			return fmt.Errorf("%w: surface source %q", ErrUnknownResource, g.surfaceSource)
		}
		g.resources[i].noAlias = true
	}
	return nil
}

// textureResource returns the texture resource with the given name,
// creating it on first reference.
func (g *Graph) textureResource(name string) *Resource {
	if i, ok := g.resourceIndex[name]; ok {
		res := g.resources[i]
		if res.kind != ResourceTexture {
			g.declErr(fmt.Errorf("%w: %q is a %s", ErrResourceKindMismatch, name, res.kind))
		}
		return res
	}
	return g.newResource(name, ResourceTexture)
}

// bufferResource returns the buffer resource with the given name, creating
// it on first reference.
func (g *Graph) bufferResource(name string) *Resource {
	if i, ok := g.resourceIndex[name]; ok {
		res := g.resources[i]
		if res.kind != ResourceBuffer {
			g.declErr(fmt.Errorf("%w: %q is a %s", ErrResourceKindMismatch, name, res.kind))
		}
		return res
	}
	return g.newResource(name, ResourceBuffer)
}

func (g *Graph) newResource(name string, kind ResourceKind) *Resource {
	res := &Resource{
		index:    len(g.resources),
		name:     name,
		kind:     kind,
		physical: -1,
	}
	g.resourceIndex[name] = res.index
	g.resources = append(g.resources, res)
	return res
}

func (g *Graph) declErr(err error) {
	g.declErrs = append(g.declErrs, err)
}

// createPhysical allocates the backing textures and buffers for every
// physical slot on the device. The surface-source slot is allocated too;
// Execute substitutes the externally supplied surface texture for it when
// one is set, and the allocation serves as the offscreen fallback.
func (g *Graph) createPhysical() error {
	for _, phys := range g.physical {
		switch phys.kind {
		case ResourceTexture:
			desc := &gputypes.TextureDescriptor{
				Label: phys.label(),
				Size: gputypes.Extent3D{
					Width:              phys.dim.Width,
					Height:             phys.dim.Height,
					DepthOrArrayLayers: phys.dim.Layers,
				},
				MipLevelCount: phys.dim.Levels,
				SampleCount:   phys.dim.Samples,
				Dimension:     gputypes.TextureDimension2D,
				Format:        phys.dim.Format,
				Usage:         phys.usage,
			}
			tex, err := g.device.CreateTexture(desc)
			if err != nil {
				return fmt.Errorf("framegraph: create texture %q: %w", phys.label(), err)
			}
			phys.tex = tex
		case ResourceBuffer:
			buf, err := g.device.CreateBuffer(phys.dim.BufferSize, phys.bufUsage, phys.label())
			if err != nil {
				return fmt.Errorf("framegraph: create buffer %q: %w", phys.label(), err)
			}
			phys.buf = buf
		}
		Logger().Debug("framegraph: physical resource created",
			"slot", phys.index,
			"label", phys.label(),
			"dim", phys.dim.String(),
			"aliases", len(phys.logical))
	}
	return nil
}

func (g *Graph) releasePhysical() {
	for _, phys := range g.physical {
		phys.release()
	}
	g.physical = nil
}
