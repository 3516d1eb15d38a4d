// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
)

// Texture is a simulated texture allocation.
type Texture struct {
	dev    *Device
	label  string
	width  uint32
	height uint32
	levels uint32
	layers uint32
	format gputypes.TextureFormat
	bytes  uint64

	released bool
}

// Label returns the debug name the texture was created with.
func (t *Texture) Label() string { return t.label }

// Width returns the level-0 width.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the level-0 height.
func (t *Texture) Height() uint32 { return t.height }

// MipLevels returns the mip chain length.
func (t *Texture) MipLevels() uint32 { return t.levels }

// ArrayLayers returns the array layer count.
func (t *Texture) ArrayLayers() uint32 { return t.layers }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// View creates a view of a mip/layer range, validating bounds.
func (t *Texture) View(desc framegraph.ViewDesc) (framegraph.TextureView, error) {
	mips := desc.MipCount
	if mips == 0 {
		mips = t.levels - desc.BaseMip
	}
	if desc.BaseMip >= t.levels || desc.BaseMip+mips > t.levels {
		return nil, fmt.Errorf("%w: %s mips [%d, %d) of %d",
			ErrViewOutOfRange, t.label, desc.BaseMip, desc.BaseMip+mips, t.levels)
	}
	layers := desc.LayerCount
	if layers == 0 {
		layers = t.layers - desc.BaseLayer
	}
	if desc.BaseLayer >= t.layers || desc.BaseLayer+layers > t.layers {
		return nil, fmt.Errorf("%w: %s layers [%d, %d) of %d",
			ErrViewOutOfRange, t.label, desc.BaseLayer, desc.BaseLayer+layers, t.layers)
	}
	return &TextureView{tex: t, baseMip: desc.BaseMip, mipCount: mips}, nil
}

// Release frees the simulated allocation. Double release is a no-op.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.dev.free(t.bytes)
	t.dev.record("release-texture", "%s", t.label)
}

// TextureView is a simulated texture view.
type TextureView struct {
	tex      *Texture
	baseMip  uint32
	mipCount uint32
}

// Texture returns the viewed texture.
func (v *TextureView) Texture() framegraph.Texture { return v.tex }

// BaseMip returns the first mip level of the view.
func (v *TextureView) BaseMip() uint32 { return v.baseMip }

// MipCount returns the number of mip levels in the view.
func (v *TextureView) MipCount() uint32 { return v.mipCount }

// Buffer is a simulated buffer allocation.
type Buffer struct {
	dev   *Device
	label string
	size  uint64
	usage gputypes.BufferUsage

	released bool
}

// Label returns the debug name the buffer was created with.
func (b *Buffer) Label() string { return b.label }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the buffer usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Release frees the simulated allocation. Double release is a no-op.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dev.free(b.size)
	b.dev.record("release-buffer", "%s", b.label)
}
