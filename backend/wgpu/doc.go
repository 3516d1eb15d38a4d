// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the hardware device backend for the frame graph
// using gogpu/wgpu.
//
// It uses the gogpu/wgpu Pure Go WebGPU implementation, which supports
// Vulkan, Metal, and DX12 backends depending on the platform. The backend
// acquires an instance, adapter, device and queue at Init and exposes
// them to the graph through the framegraph.Device interface.
//
// # Registration and Selection
//
// The wgpu backend is automatically registered when this package is
// imported:
//
//	import _ "github.com/gogpu/framegraph/backend/wgpu"
//
// It is preferred over the sim backend when a GPU is available. If
// initialization fails, callers fall back to sim.
//
// # Current Status
//
// Device and queue acquisition, capability queries, and the submission
// ordering contract are fully implemented. Texture allocation and command
// submission are tracked host-side; they are forwarded to the GPU when
// the core↔HAL device/queue bridge is complete. Plans baked against this
// device exercise the same scheduling and synchronization as the sim
// backend.
//
// Subgroup feature queries are not exposed by wgpu core yet, so the
// advertised capabilities make capability-gated compute paths (e.g. the
// single-pass mip downsampler) select their conservative fallback.
package wgpu
