//go:build js && wasm

package webgl

import (
	"syscall/js"

	"github.com/gogpu/vgraph/render"
)

// Scheduler implements render.Scheduler with window.requestAnimationFrame.
// Only one callback is pending at a time; a later request replaces it.
type Scheduler struct {
	pending func()
	cb      js.Func
	armed   bool
}

var _ render.Scheduler = (*Scheduler)(nil)

// NewScheduler returns a scheduler bound to the global window.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.cb = js.FuncOf(func(js.Value, []js.Value) any {
		s.armed = false
		fn := s.pending
		s.pending = nil
		if fn != nil {
			fn()
		}
		return nil
	})
	return s
}

// RequestFrame runs fn on the next animation frame.
func (s *Scheduler) RequestFrame(fn func()) {
	s.pending = fn
	if s.armed {
		return
	}
	s.armed = true
	js.Global().Call("requestAnimationFrame", s.cb)
}

// Release frees the JS callback. Pending frames are dropped.
func (s *Scheduler) Release() {
	s.pending = nil
	s.cb.Release()
}
