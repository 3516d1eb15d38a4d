// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
)

func init() {
	backend.Register(backend.BackendWgpu, func() backend.GraphBackend {
		return NewBackend()
	})
}

// Backend errors.
var (
	// ErrNoGPU is returned when no compatible GPU adapter is found.
	ErrNoGPU = errors.New("wgpu: no compatible GPU found")
)

// Backend is the hardware device backend using gogpu/wgpu.
//
// The backend manages GPU resources including instance, adapter, device,
// and queue, and exposes them to the graph through framegraph.Device.
type Backend struct {
	mu sync.RWMutex

	// GPU resources
	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	// GPU information
	gpuInfo *GPUInfo

	caps framegraph.Capabilities

	// State
	initialized bool
}

// NewBackend creates a new wgpu backend.
// The backend must be initialized with Init() before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWgpu
}

// Init initializes the backend by creating GPU resources.
// This includes creating an instance, requesting an adapter,
// creating a device, and getting the command queue.
//
// Returns an error if GPU initialization fails.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	// Step 1: Create Instance
	desc := &gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	}
	b.instance = core.NewInstance(desc)

	// Step 2: Request Adapter (prefer high performance GPU)
	adapterID, err := b.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	b.adapter = adapterID

	logGPUInfo(adapterID)
	b.gpuInfo, _ = getGPUInfo(adapterID)

	// Step 3: Create Device
	deviceID, err := createDevice(adapterID, "framegraph-wgpu-device")
	if err != nil {
		return fmt.Errorf("device creation failed: %w", err)
	}
	b.device = deviceID

	// Step 4: Get Queue
	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		// Cleanup on failure
		_ = releaseDevice(deviceID)
		return fmt.Errorf("queue retrieval failed: %w", err)
	}
	b.queue = queueID

	caps, err := deviceCapabilities(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		return fmt.Errorf("capability query failed: %w", err)
	}
	b.caps = caps

	b.initialized = true
	log.Println("wgpu: backend initialized successfully")

	return nil
}

// Device returns the framegraph device view of the backend.
func (b *Backend) Device() (framegraph.Device, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	return &Device{backend: b, signaled: make(map[int]bool)}, nil
}

// Info returns the selected GPU's description, or nil before Init.
func (b *Backend) Info() *GPUInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gpuInfo
}

// Close releases all backend resources.
// The backend should not be used after Close is called.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	// Release resources in reverse order of creation.
	// Queue is released when device is dropped.

	if !b.device.IsZero() {
		if err := releaseDevice(b.device); err != nil {
			log.Printf("wgpu: error releasing device: %v", err)
		}
		b.device = core.DeviceID{}
	}

	if !b.adapter.IsZero() {
		if err := releaseAdapter(b.adapter); err != nil {
			log.Printf("wgpu: error releasing adapter: %v", err)
		}
		b.adapter = core.AdapterID{}
	}

	b.instance = nil
	b.queue = core.QueueID{}
	b.gpuInfo = nil
	b.initialized = false
}

// Device adapts the wgpu device to framegraph.Device.
//
// Resource descriptors and command streams are tracked host-side; actual
// texture allocation and command submission are enabled when the
// core↔HAL device/queue bridge is complete. The submission ordering
// contract (waits and signals) is enforced already, so plans baked
// against this device exercise the same scheduling as the sim backend.
type Device struct {
	backend *Backend

	mu       sync.Mutex
	signaled map[int]bool
}

// Capabilities returns the capability descriptor derived from the device
// limits at Init.
func (d *Device) Capabilities() framegraph.Capabilities {
	return d.backend.caps
}

// CreateTexture allocates a texture.
func (d *Device) CreateTexture(desc *gputypes.TextureDescriptor) (framegraph.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("wgpu: texture %q has zero size", desc.Label)
	}
	return &Texture{
		label:  desc.Label,
		width:  desc.Size.Width,
		height: desc.Size.Height,
		levels: max(desc.MipLevelCount, 1),
		layers: max(desc.Size.DepthOrArrayLayers, 1),
		format: desc.Format,
	}, nil
}

// CreateBuffer allocates a buffer.
func (d *Device) CreateBuffer(size uint64, usage gputypes.BufferUsage, label string) (framegraph.Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("wgpu: buffer %q has zero size", label)
	}
	return &Buffer{label: label, size: size, usage: usage}, nil
}

// NewCommandBuffer opens a command buffer for the given queue.
func (d *Device) NewCommandBuffer(queue framegraph.QueueFlags) (framegraph.CommandBuffer, error) {
	return &CommandBuffer{queue: queue}, nil
}

// Submit enqueues a recorded command buffer, enforcing the handoff
// ordering contract.
func (d *Device) Submit(sub framegraph.Submission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range sub.Waits {
		if !d.signaled[id] {
			return fmt.Errorf("wgpu: submission on %s waits on unsignaled handoff %d", sub.Queue, id)
		}
	}
	for _, id := range sub.Signals {
		d.signaled[id] = true
	}
	return nil
}
