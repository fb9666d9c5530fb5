//go:build !nogpu

package gogpu

import (
	"github.com/gogpu/vgraph/backend"
	"github.com/gogpu/vgraph/render"
)

func init() {
	backend.Register(backend.NameGoGPU, func() (render.Backend, error) {
		return NewHeadless()
	})
}
