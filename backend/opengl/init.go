package opengl

import (
	"github.com/gogpu/vgraph/backend"
	"github.com/gogpu/vgraph/render"
)

func init() {
	backend.Register(backend.NameOpenGL, func() (render.Backend, error) {
		return New()
	})
}
