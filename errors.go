package vgraph

import "errors"

// Errors shared by the vgraph packages. Callers match them with errors.Is;
// the packages wrap them with context via fmt.Errorf("%w: ...").
var (
	// ErrSetup is returned when a renderer or backend cannot be constructed:
	// shader compile or link failure, missing GPU context, missing canvas.
	// Setup errors are fatal and never retried.
	ErrSetup = errors.New("vgraph: setup failed")

	// ErrTessellation is returned when a path cannot be converted into a
	// triangle mesh. The render loop skips the offending path.
	ErrTessellation = errors.New("vgraph: tessellation failed")

	// ErrCapacity is returned when geometry cannot be expressed with 16-bit
	// indices even after batching.
	ErrCapacity = errors.New("vgraph: index capacity exceeded")
)
