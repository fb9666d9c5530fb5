// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package gpu draws packed vgraph frames with gogpu/wgpu hal.
//
// An InstanceRenderer owns one render pipeline built from the embedded
// instance shader. Each Upload replaces the per-frame uniform, vertex and
// index buffers; Draw encodes one render pass with a DrawIndexed call per
// 16-bit batch, either into a host surface view or into an offscreen
// texture that Snapshot can read back.
package gpu
