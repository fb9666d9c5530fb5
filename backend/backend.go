package backend

import (
	"errors"

	"github.com/gogpu/vgraph/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or no registered backend could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend names used by the packages in this module.
const (
	NameGoGPU  = "gogpu"
	NameOpenGL = "opengl"
	NameWebGL  = "webgl"
)

// Factory opens a render backend. Errors should wrap vgraph.ErrSetup.
type Factory func() (render.Backend, error)

// Closer is implemented by backends that hold releasable resources.
type Closer interface {
	Close()
}

// Close releases b if it implements Closer.
func Close(b render.Backend) {
	if c, ok := b.(Closer); ok {
		c.Close()
	}
}
