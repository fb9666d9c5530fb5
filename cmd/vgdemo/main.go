// Command vgdemo renders a vgraph scene in a desktop window, or to a PNG
// file with the headless WebGPU backend.
//
//	vgdemo                         # built-in scene, OpenGL window
//	vgdemo -scene hills.yaml -v    # scene file, debug logging
//	vgdemo -out frame.png          # one headless frame
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/backend/gogpu"
	"github.com/gogpu/vgraph/backend/opengl"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/scenefile"
	"github.com/gogpu/vgraph/render"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "YAML scene file (default: built-in scene)")
		width     = flag.Int("width", 0, "window width (default: scene width)")
		height    = flag.Int("height", 0, "window height (default: scene height)")
		output    = flag.String("out", "", "render one frame headless to this PNG file")
		policy    = flag.String("policy", "fill", "tessellation policy: fill or stroke")
		step      = flag.String("step", "vertex", "attribute step mode: vertex or instance")
		vsync     = flag.Bool("vsync", true, "wait for vertical sync")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	vgraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	scene, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("load scene: %v", err)
	}
	if *width > 0 {
		scene.Width = *width
	}
	if *height > 0 {
		scene.Height = *height
	}
	items, err := scene.Items()
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}

	opts, mode, err := parseModes(*policy, *step)
	if err != nil {
		log.Fatal(err)
	}

	if *output != "" {
		if err := renderPNG(*output, scene, items, mode, opts); err != nil {
			log.Fatalf("render: %v", err)
		}
		log.Printf("Frame saved to %s (%dx%d)", *output, scene.Width, scene.Height)
		return
	}
	if err := runWindow(scene, items, mode, opts, *vsync, *scenePath); err != nil {
		log.Fatal(err)
	}
}

func loadScene(path string) (*scenefile.Scene, error) {
	if path == "" {
		return scenefile.Default(), nil
	}
	return scenefile.LoadFile(path)
}

func parseModes(policy, step string) ([]render.Option, frame.StepMode, error) {
	var opts []render.Option
	switch policy {
	case "fill":
		opts = append(opts, render.WithPolicy(render.PolicyFillOrStroke))
	case "stroke":
		opts = append(opts, render.WithPolicy(render.PolicyStrokeTriggered))
	default:
		return nil, 0, fmt.Errorf("unknown policy %q", policy)
	}
	switch step {
	case "vertex":
		return opts, frame.StepVertex, nil
	case "instance":
		return opts, frame.StepInstance, nil
	default:
		return nil, 0, fmt.Errorf("unknown step mode %q", step)
	}
}

func renderPNG(path string, scene *scenefile.Scene, items []render.PathItem, mode frame.StepMode, opts []render.Option) error {
	b, err := gogpu.NewHeadless(gogpu.WithStepMode(mode))
	if err != nil {
		return err
	}
	defer b.Close()

	r, err := render.NewRenderer(b, render.FixedSurface{Width: scene.Width, Height: scene.Height}, opts...)
	if err != nil {
		return err
	}
	st, err := r.DrawPaths(slices.Values(items))
	if err != nil {
		return err
	}
	log.Printf("Drew %s", st)

	img, err := b.Snapshot()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// windowSurface reports the framebuffer size and content scale of a window.
type windowSurface struct{ w *glfw.Window }

func (s windowSurface) Size() (int, int) { return s.w.GetFramebufferSize() }

func (s windowSurface) DevicePixelRatio() float64 {
	x, _ := s.w.GetContentScale()
	return float64(x)
}

// frameQueue runs the pending frame callback once per iteration of the
// window loop.
type frameQueue struct{ next func() }

func (q *frameQueue) RequestFrame(fn func()) { q.next = fn }

func (q *frameQueue) run() bool {
	fn := q.next
	q.next = nil
	if fn == nil {
		return false
	}
	fn()
	return true
}

func runWindow(scene *scenefile.Scene, items []render.PathItem, mode frame.StepMode, opts []render.Option, vsync bool, scenePath string) error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	win, err := glfw.CreateWindow(scene.Width, scene.Height, "vgdemo", nil, nil)
	if err != nil {
		return err
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := opengl.Init(); err != nil {
		return err
	}
	b, err := opengl.New(opengl.WithStepMode(mode))
	if err != nil {
		return err
	}
	defer b.Close()

	r, err := render.NewRenderer(b, windowSurface{win}, opts...)
	if err != nil {
		return err
	}
	source := render.NewStaticSource(items...)
	queue := &frameQueue{}
	loop, err := render.NewLoop(r, source, queue, render.WithNotifier(render.NotifierFunc(func(n uint64) {
		if n%600 == 0 {
			vgraph.Logger().Debug("vgdemo: frame", "n", n, "stats", r.Stats().String())
		}
	})))
	if err != nil {
		return err
	}
	defer loop.Stop()

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyR:
			reload(source, scenePath)
		}
	})

	for !win.ShouldClose() {
		glfw.PollEvents()
		if queue.run() {
			win.SwapBuffers()
		}
	}
	return nil
}

// reload re-reads the scene file and swaps the source contents. Errors keep
// the current scene.
func reload(source *render.StaticSource, path string) {
	if path == "" {
		return
	}
	scene, err := scenefile.LoadFile(path)
	if err == nil {
		var items []render.PathItem
		items, err = scene.Items()
		if err == nil {
			source.Set(items...)
			vgraph.Logger().Info("vgdemo: scene reloaded", "paths", len(items))
			return
		}
	}
	vgraph.Logger().Warn("vgdemo: reload failed", "err", err)
}
