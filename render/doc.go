// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns styled vector paths into GPU draws, once per frame.
//
// A Renderer tessellates every visible path, packs the meshes into 16-bit
// batches and hands them to a Backend together with the viewport
// uniforms. A Loop drives the Renderer from the host's per-frame callback
// and keeps rescheduling itself until stopped.
//
// # Collaborators
//
// The host provides everything outside the pipeline through small
// interfaces:
//
//   - StateSource: the current visible paths, in paint order
//   - Notifier: told once per frame that the artwork was recomputed
//   - Scheduler: the per-frame callback (requestAnimationFrame, a vsync'd
//     window loop, or a test driver)
//   - Surface: drawing surface size and device pixel ratio
//   - Backend: the graphics API (see backend/gogpu, backend/opengl and
//     backend/webgl)
//
// # Usage
//
//	r, err := render.NewRenderer(backend, surface)
//	if err != nil {
//	    return err
//	}
//	loop, err := render.NewLoop(r, source, scheduler, render.WithNotifier(ui))
//	if err != nil {
//	    return err
//	}
//	defer loop.Stop()
//
// # Threading
//
// Renderer and Loop are used from the host frame thread only. Graph
// evaluation must happen on the same thread, or the StateSource must
// synchronize itself.
package render
