// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"

	"github.com/gogpu/framegraph"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// GraphBackend adapts a GPU implementation to the framegraph.Device
// interface. It abstracts device acquisition, allowing the graph to run
// on real hardware (wgpu) or fully in-process (sim).
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type GraphBackend interface {
	// Name returns the backend identifier (e.g., "sim", "wgpu").
	Name() string

	// Init acquires the underlying device.
	// This should be called before Device.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Device returns the device handed to Graph.Bake.
	// Returns ErrNotInitialized before a successful Init.
	Device() (framegraph.Device, error)
}
