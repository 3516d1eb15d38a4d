// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// testDevice is a minimal in-memory Device for graph tests. It records
// every command into ops and enforces the submission ordering contract.
type testDevice struct {
	caps Capabilities

	textures []string
	buffers  []string
	released []string

	ops      []string
	signaled map[int]bool
}

func newTestDevice() *testDevice {
	return &testDevice{
		caps: Capabilities{
			Compute:                   true,
			MaxWorkgroupSize:          1024,
			SubgroupBasic:             true,
			SubgroupQuad:              true,
			SubgroupSizeControl:       true,
			MinSubgroupLog2:           2,
			MaxSubgroupLog2:           7,
			StorageReadWithoutFormat:  true,
			StorageWriteWithoutFormat: true,
		},
		signaled: make(map[int]bool),
	}
}

func (d *testDevice) Capabilities() Capabilities { return d.caps }

func (d *testDevice) CreateTexture(desc *gputypes.TextureDescriptor) (Texture, error) {
	d.textures = append(d.textures, desc.Label)
	return &testTexture{
		dev:    d,
		label:  desc.Label,
		width:  desc.Size.Width,
		height: desc.Size.Height,
		levels: desc.MipLevelCount,
		layers: desc.Size.DepthOrArrayLayers,
		format: desc.Format,
	}, nil
}

func (d *testDevice) CreateBuffer(size uint64, usage gputypes.BufferUsage, label string) (Buffer, error) {
	d.buffers = append(d.buffers, label)
	return &testBuffer{dev: d, label: label, size: size, usage: usage}, nil
}

func (d *testDevice) NewCommandBuffer(queue QueueFlags) (CommandBuffer, error) {
	return &testCommandBuffer{dev: d}, nil
}

func (d *testDevice) Submit(sub Submission) error {
	for _, id := range sub.Waits {
		if !d.signaled[id] {
			return fmt.Errorf("wait on unsignaled handoff %d", id)
		}
	}
	for _, id := range sub.Signals {
		d.signaled[id] = true
	}
	d.ops = append(d.ops, "submit "+sub.Queue.String())
	return nil
}

type testTexture struct {
	dev    *testDevice
	label  string
	width  uint32
	height uint32
	levels uint32
	layers uint32
	format gputypes.TextureFormat
}

func (t *testTexture) Width() uint32                   { return t.width }
func (t *testTexture) Height() uint32                  { return t.height }
func (t *testTexture) MipLevels() uint32               { return t.levels }
func (t *testTexture) ArrayLayers() uint32             { return t.layers }
func (t *testTexture) Format() gputypes.TextureFormat  { return t.format }
func (t *testTexture) Release()                        { t.dev.released = append(t.dev.released, t.label) }

func (t *testTexture) View(desc ViewDesc) (TextureView, error) {
	mips := desc.MipCount
	if mips == 0 {
		mips = t.levels - desc.BaseMip
	}
	if desc.BaseMip+mips > t.levels {
		return nil, fmt.Errorf("view of %q out of range", t.label)
	}
	return &testView{tex: t, baseMip: desc.BaseMip, mipCount: mips}, nil
}

type testView struct {
	tex      *testTexture
	baseMip  uint32
	mipCount uint32
}

func (v *testView) Texture() Texture { return v.tex }
func (v *testView) BaseMip() uint32  { return v.baseMip }
func (v *testView) MipCount() uint32 { return v.mipCount }

type testBuffer struct {
	dev   *testDevice
	label string
	size  uint64
	usage gputypes.BufferUsage
}

func (b *testBuffer) Size() uint64                { return b.size }
func (b *testBuffer) Usage() gputypes.BufferUsage { return b.usage }
func (b *testBuffer) Release()                    { b.dev.released = append(b.dev.released, b.label) }

type testCommandBuffer struct {
	dev *testDevice
}

func (cb *testCommandBuffer) op(s string) { cb.dev.ops = append(cb.dev.ops, s) }

func (cb *testCommandBuffer) BeginRenderGroup(info *RenderGroupInfo) error {
	cb.op(fmt.Sprintf("begin %s subpasses=%d", info.Label, info.Subpasses))
	return nil
}
func (cb *testCommandBuffer) NextSubpass() error    { cb.op("next-subpass"); return nil }
func (cb *testCommandBuffer) EndRenderGroup() error { cb.op("end"); return nil }

func (cb *testCommandBuffer) Barrier(transitions []Barrier) error {
	for _, b := range transitions {
		cb.op(fmt.Sprintf("barrier %s %s->%s", b.Resource.Name(), b.FromLayout, b.ToLayout))
	}
	return nil
}

func (cb *testCommandBuffer) SetTexture(set, binding uint32, view TextureView) error {
	cb.op(fmt.Sprintf("set-texture %d/%d", set, binding))
	return nil
}

func (cb *testCommandBuffer) SetStorageTexture(set, binding uint32, view TextureView) error {
	cb.op(fmt.Sprintf("set-storage-texture %d/%d mip=%d", set, binding, view.BaseMip()))
	return nil
}

func (cb *testCommandBuffer) SetInputAttachment(binding uint32, view TextureView) error {
	cb.op(fmt.Sprintf("set-input-attachment %d", binding))
	return nil
}

func (cb *testCommandBuffer) SetStorageBuffer(set, binding uint32, buf Buffer, offset, size uint64) error {
	cb.op(fmt.Sprintf("set-storage-buffer %d/%d", set, binding))
	return nil
}

func (cb *testCommandBuffer) PushConstants(data []byte) error {
	cb.op(fmt.Sprintf("push-constants %d", len(data)))
	return nil
}

func (cb *testCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	cb.op("draw")
	return nil
}

func (cb *testCommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	cb.op("draw-indexed")
	return nil
}

func (cb *testCommandBuffer) Dispatch(x, y, z uint32) error {
	cb.op(fmt.Sprintf("dispatch %dx%dx%d", x, y, z))
	return nil
}

// surfaceDim returns standard test surface dimensions.
func testSurface() ResourceDimensions {
	return ResourceDimensions{
		Format: gputypes.TextureFormatBGRA8Unorm,
		Width:  1920,
		Height: 1080,
	}
}
