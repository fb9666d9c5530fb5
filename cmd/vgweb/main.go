//go:build js && wasm

// Command vgweb renders the built-in vgraph scene into the page canvas
// matching ".rendering-canvas" with WebGL2.
//
// The page must set the canvas drawing-buffer size; the scene is drawn in
// CSS pixels scaled by window.devicePixelRatio.
package main

import (
	"log"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/backend/webgl"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/scenefile"
	"github.com/gogpu/vgraph/render"
)

func main() {
	vgraph.SetLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	items, err := scenefile.Default().Items()
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}

	b, err := webgl.New(webgl.WithStepMode(frame.StepVertex))
	if err != nil {
		log.Fatalf("webgl: %v", err)
	}
	r, err := render.NewRenderer(b, b)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	sched := webgl.NewScheduler()
	notify := render.NotifierFunc(func(n uint64) {
		// Hosts listen for this event to refresh overlays.
		js.Global().Call("dispatchEvent", js.Global().Get("CustomEvent").New("vgraph:frame",
			map[string]any{"detail": n}))
	})
	if _, err := render.NewLoop(r, render.NewStaticSource(items...), sched, render.WithNotifier(notify)); err != nil {
		log.Fatalf("loop: %v", err)
	}

	select {}
}
