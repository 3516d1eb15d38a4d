// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/gputypes"
)

// SizeClass is the rule used to resolve a resource's concrete dimensions
// at bake time.
type SizeClass uint8

const (
	// SizeSurfaceRelative scales the declared size by the current surface
	// dimensions. The zero value: an AttachmentInfo with no explicit size
	// tracks the surface one-to-one.
	SizeSurfaceRelative SizeClass = iota

	// SizeAbsolute uses the declared width and height as pixels.
	SizeAbsolute

	// SizeInputRelative copies (and optionally scales) the resolved
	// dimensions of another named resource.
	SizeInputRelative
)

// String returns the string representation of a SizeClass.
func (s SizeClass) String() string {
	switch s {
	case SizeSurfaceRelative:
		return "SurfaceRelative"
	case SizeAbsolute:
		return "Absolute"
	case SizeInputRelative:
		return "InputRelative"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// AttachmentInfo declares a logical texture resource.
//
// The zero value declares a surface-relative, surface-format, single-level
// color attachment, which is the common case for screen-sized targets.
type AttachmentInfo struct {
	// Format is the texture format. TextureFormatUndefined inherits the
	// surface format.
	Format gputypes.TextureFormat

	// SizeClass selects how Width and Height are interpreted.
	SizeClass SizeClass

	// Width and Height are pixels for SizeAbsolute, or scale factors for
	// SizeSurfaceRelative and SizeInputRelative. Zero means 1.0 for the
	// relative classes.
	Width  float32
	Height float32

	// SizeRelativeName names the referent resource for SizeInputRelative.
	SizeRelativeName string

	// Levels is the mip level count. Zero requests the full mip chain,
	// floor(log2(min(width, height))) + 1 levels.
	Levels uint32

	// Layers is the array layer count. Zero means 1.
	Layers uint32

	// Samples is the MSAA sample count. Zero means 1.
	Samples uint32

	// AuxUsage adds usage flags beyond those deduced from how passes use
	// the resource.
	AuxUsage gputypes.TextureUsage
}

// BufferInfo declares a logical buffer resource.
type BufferInfo struct {
	// Size is the buffer size in bytes.
	Size uint64

	// Usage is the buffer usage flags.
	Usage gputypes.BufferUsage
}

// ResourceDimensions is the resolved concrete shape of a resource,
// available through Graph.ResourceDimensions after a successful bake.
type ResourceDimensions struct {
	// Format is the resolved texture format.
	Format gputypes.TextureFormat

	// Width and Height are the resolved dimensions in pixels.
	Width  uint32
	Height uint32

	// Levels is the resolved mip level count.
	Levels uint32

	// Layers is the resolved array layer count.
	Layers uint32

	// Samples is the resolved sample count.
	Samples uint32

	// BufferSize is the size in bytes for buffer resources; zero for
	// textures.
	BufferSize uint64
}

// String returns a compact human-readable description.
func (d ResourceDimensions) String() string {
	if d.BufferSize != 0 {
		return fmt.Sprintf("buffer %d bytes", d.BufferSize)
	}
	return fmt.Sprintf("%dx%d levels=%d layers=%d fmt=%d", d.Width, d.Height, d.Levels, d.Layers, uint32(d.Format))
}

// MipLevels returns the full mip chain length for a width x height base
// level: floor(log2(min(width, height))) + 1. The chain stops once the
// smaller dimension reaches 1.
func MipLevels(width, height uint32) uint32 {
	m := min(width, height)
	if m == 0 {
		return 0
	}
	return uint32(bits.Len32(m))
}

// ResourceKind distinguishes texture and buffer resources.
type ResourceKind uint8

const (
	// ResourceTexture is an image resource.
	ResourceTexture ResourceKind = iota

	// ResourceBuffer is a buffer resource.
	ResourceBuffer
)

// String returns the string representation of a ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceTexture:
		return "texture"
	case ResourceBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Resource is a named logical resource declared by a pass. It never holds
// memory itself; bake assigns it to a physical allocation, possibly shared
// with other resources whose live ranges do not overlap.
//
// Resource handles are returned by the Pass declaration methods and remain
// valid until the next Graph.Reset.
type Resource struct {
	index int
	name  string
	kind  ResourceKind

	att AttachmentInfo
	buf BufferInfo

	usage    gputypes.TextureUsage
	bufUsage gputypes.BufferUsage
	queues   QueueFlags

	// writers and readers are pass indices in declaration order.
	writers []int
	readers []int

	// noAlias marks resources whose contents outlive the straightforward
	// live range (chain sources, the surface output) and must therefore
	// keep a dedicated allocation.
	noAlias bool

	physical int
}

// Name returns the resource name, unique within one declaration cycle.
func (r *Resource) Name() string { return r.name }

// Kind returns whether the resource is a texture or a buffer.
func (r *Resource) Kind() ResourceKind { return r.kind }

func (r *Resource) addWriter(pass int) {
	for _, w := range r.writers {
		if w == pass {
			return
		}
	}
	r.writers = append(r.writers, pass)
}

func (r *Resource) addReader(pass int) {
	for _, rd := range r.readers {
		if rd == pass {
			return
		}
	}
	r.readers = append(r.readers, pass)
}
