// Package backend keeps a registry of named render backends.
//
// Backend packages register a factory from their init functions, so a
// program selects a backend by importing it and naming it:
//
//	import _ "github.com/gogpu/vgraph/backend/gogpu"
//
//	b, err := backend.Open("gogpu")
//
// Default opens the first available backend in priority order. Factories
// that need a current graphics context (OpenGL) must be opened after the
// host window exists.
package backend
