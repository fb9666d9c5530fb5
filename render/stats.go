// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// Stats counts the work done for one frame.
type Stats struct {
	PathsSeen        int
	PathsTessellated int
	PathsSkipped     int
	Vertices         int
	Indices          int
	Batches          int
	DrawCalls        int
}

// Triangles returns the number of triangles drawn.
func (s Stats) Triangles() int { return s.Indices / 3 }

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("paths=%d tessellated=%d skipped=%d vertices=%d triangles=%d batches=%d draws=%d",
		s.PathsSeen, s.PathsTessellated, s.PathsSkipped, s.Vertices, s.Triangles(), s.Batches, s.DrawCalls)
}
