// Package vgraph renders vector artwork described by a graph of transform
// nodes into GPU triangle geometry.
//
// # Overview
//
// The root package holds the data model shared by every stage:
//
//   - Geometry: [Point], [Affine], [CubicBez], [Subpath] and spline fitting
//   - Style: [Fill], [Gradient], [Stroke] and [PathStyle]
//   - [VectorData]: subpaths plus the style attached to them
//
// The stages live in sub-packages:
//
//   - node: pure transform nodes (SetFill, SetStroke, SetResampleCurve,
//     SetSplineFromPoints) and the node graph that composes them
//   - frame: the 36-byte vertex format, the frame buffer packer and the
//     viewport transform
//   - render: the per-frame pipeline (tessellate, pack, upload, draw) and
//     the self-rescheduling render loop
//   - backend/gogpu, backend/opengl, backend/webgl: graphics backends
//
// # Coordinate System
//
// Path coordinates are logical pixels with the origin at the top-left of
// the canvas, X increasing right and Y increasing down. The render stage
// maps them to clip space with the device pixel ratio applied.
//
// # Immutability
//
// Values produced by constructors and nodes are immutable by convention:
// constructors copy their input slices and nodes return new values instead
// of mutating their input, so one VectorData may feed several nodes.
package vgraph
