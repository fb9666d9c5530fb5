//go:build js && wasm

package webgl

import (
	"github.com/gogpu/vgraph/backend"
	"github.com/gogpu/vgraph/render"
)

func init() {
	backend.Register(backend.NameWebGL, func() (render.Backend, error) {
		return New()
	})
}
