// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sim provides an in-process simulation backend for the frame
// graph. It allocates no GPU memory and executes nothing; instead it
// records every command into an inspectable trace and enforces the
// submission ordering contract, which makes it the reference device for
// tests and headless tools.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
)

func init() {
	backend.Register(backend.BackendSim, func() backend.GraphBackend {
		return &Backend{}
	})
}

// Simulation errors.
var (
	// ErrWaitNotSignaled is returned by Submit when a submission waits on
	// a handoff no prior submission has signaled.
	ErrWaitNotSignaled = errors.New("sim: wait on unsignaled handoff")

	// ErrViewOutOfRange is returned for views beyond the texture's mip or
	// layer range.
	ErrViewOutOfRange = errors.New("sim: view out of range")

	// ErrNotInRenderGroup is returned for render-scope calls outside a
	// render group.
	ErrNotInRenderGroup = errors.New("sim: not in a render group")
)

// Backend is the sim GraphBackend. The zero value is ready for Init.
type Backend struct {
	dev *Device
}

// Name returns "sim".
func (b *Backend) Name() string { return backend.BackendSim }

// Init creates the simulated device.
func (b *Backend) Init() error {
	b.dev = NewDevice()
	return nil
}

// Device returns the simulated device.
func (b *Backend) Device() (framegraph.Device, error) {
	if b.dev == nil {
		return nil, backend.ErrNotInitialized
	}
	return b.dev, nil
}

// Close discards the simulated device.
func (b *Backend) Close() { b.dev = nil }

// Event is one recorded device or command-buffer operation.
type Event struct {
	// Op is the operation name, e.g. "create-texture", "barrier",
	// "dispatch", "submit".
	Op string

	// Detail is a human-readable argument summary.
	Detail string
}

// Device is a simulated framegraph.Device. Safe for concurrent use.
type Device struct {
	caps framegraph.Capabilities

	mu          sync.Mutex
	trace       []Event
	signaled    map[int]bool
	liveBytes   uint64
	peakBytes   uint64
	submissions int
}

// Option configures a simulated device.
type Option func(*Device)

// WithCapabilities overrides the advertised device capabilities. The
// default advertises a fully featured device.
func WithCapabilities(caps framegraph.Capabilities) Option {
	return func(d *Device) { d.caps = caps }
}

// NewDevice creates a simulated device.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		caps: framegraph.Capabilities{
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
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Capabilities returns the advertised capabilities.
func (d *Device) Capabilities() framegraph.Capabilities { return d.caps }

// Trace returns a copy of the recorded events in order.
func (d *Device) Trace() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.trace))
	copy(out, d.trace)
	return out
}

// TraceOps returns just the operation names of the trace, in order.
func (d *Device) TraceOps() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := make([]string, len(d.trace))
	for i, e := range d.trace {
		ops[i] = e.Op
	}
	return ops
}

// LiveBytes returns the bytes currently allocated to textures and
// buffers.
func (d *Device) LiveBytes() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.liveBytes
}

// PeakBytes returns the high-water allocation mark.
func (d *Device) PeakBytes() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.peakBytes
}

// Submissions returns the number of successful Submit calls.
func (d *Device) Submissions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submissions
}

func (d *Device) record(op, format string, args ...any) {
	d.mu.Lock()
	d.trace = append(d.trace, Event{Op: op, Detail: fmt.Sprintf(format, args...)})
	d.mu.Unlock()
}

func (d *Device) alloc(bytes uint64) {
	d.mu.Lock()
	d.liveBytes += bytes
	if d.liveBytes > d.peakBytes {
		d.peakBytes = d.liveBytes
	}
	d.mu.Unlock()
}

func (d *Device) free(bytes uint64) {
	d.mu.Lock()
	d.liveBytes -= bytes
	d.mu.Unlock()
}

// CreateTexture allocates a simulated texture and accounts its bytes,
// full mip chain included.
func (d *Device) CreateTexture(desc *gputypes.TextureDescriptor) (framegraph.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("sim: texture %q has zero size", desc.Label)
	}
	t := &Texture{
		dev:    d,
		label:  desc.Label,
		width:  desc.Size.Width,
		height: desc.Size.Height,
		levels: max(desc.MipLevelCount, 1),
		layers: max(desc.Size.DepthOrArrayLayers, 1),
		format: desc.Format,
	}
	t.bytes = textureBytes(t)
	d.alloc(t.bytes)
	d.record("create-texture", "%s %dx%d levels=%d", desc.Label, t.width, t.height, t.levels)
	return t, nil
}

// CreateBuffer allocates a simulated buffer.
func (d *Device) CreateBuffer(size uint64, usage gputypes.BufferUsage, label string) (framegraph.Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("sim: buffer %q has zero size", label)
	}
	b := &Buffer{dev: d, label: label, size: size, usage: usage}
	d.alloc(size)
	d.record("create-buffer", "%s %d bytes", label, size)
	return b, nil
}

// NewCommandBuffer opens a trace-recording command buffer.
func (d *Device) NewCommandBuffer(queue framegraph.QueueFlags) (framegraph.CommandBuffer, error) {
	return &CommandBuffer{dev: d, queue: queue}, nil
}

// Submit validates the submission ordering contract: every wait must
// name a handoff some earlier submission signaled.
func (d *Device) Submit(sub framegraph.Submission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range sub.Waits {
		if !d.signaled[id] {
			return fmt.Errorf("%w: handoff %d on queue %s", ErrWaitNotSignaled, id, sub.Queue)
		}
	}
	for _, id := range sub.Signals {
		d.signaled[id] = true
	}
	d.submissions++
	d.trace = append(d.trace, Event{
		Op:     "submit",
		Detail: fmt.Sprintf("queue=%s waits=%v signals=%v", sub.Queue, sub.Waits, sub.Signals),
	})
	return nil
}

func textureBytes(t *Texture) uint64 {
	var total uint64
	w, h := t.width, t.height
	for level := uint32(0); level < t.levels; level++ {
		total += uint64(w) * uint64(h) * uint64(t.layers) * bytesPerPixel(t.format)
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return total
}

func bytesPerPixel(format gputypes.TextureFormat) uint64 {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}
