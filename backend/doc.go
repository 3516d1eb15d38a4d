// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend provides a pluggable device backend abstraction for
// the frame graph.
//
// A backend acquires and owns a GPU device and exposes it through the
// framegraph.Device interface. Two backends exist: "wgpu" runs on real
// hardware through gogpu/wgpu, and "sim" is a pure Go simulation that
// records command traces, used for tests and headless runs.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import (
//		_ "github.com/gogpu/framegraph/backend/sim"
//		_ "github.com/gogpu/framegraph/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	dev, err := b.Device()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := graph.Bake(dev); err != nil {
//		log.Fatal(err)
//	}
//
// # Available Backends
//
// - "wgpu": hardware device via gogpu/wgpu (preferred when available)
// - "sim": in-process simulation (always available)
package backend
