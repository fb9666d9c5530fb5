// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"iter"
	"math"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/tess"
)

// widthScale converts stroke weights into the shader's width unit.
const widthScale = 10

// depthScale maps draw-order depth into the shader's z-index range.
const depthScale = 100

// Renderer tessellates, packs and draws styled paths.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	backend Backend
	surface Surface
	opts    options

	tess   *tess.Tessellator
	packer *frame.Packer
	mesh   tess.Buffers[frame.VertexInstance]

	stats Stats
}

// NewRenderer returns a Renderer drawing through backend onto surface.
func NewRenderer(backend Backend, surface Surface, opts ...Option) (*Renderer, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", vgraph.ErrSetup)
	}
	if surface == nil {
		return nil, fmt.Errorf("%w: nil surface", vgraph.ErrSetup)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	packer, err := frame.NewPacker(o.maxIndices)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		backend: backend,
		surface: surface,
		opts:    o,
		tess:    tess.New(tess.Options{Tolerance: o.tolerance, FillRule: o.fillRule}),
		packer:  packer,
	}, nil
}

// Policy returns the tessellation policy in effect.
func (r *Renderer) Policy() Policy { return r.opts.policy }

// Viewport returns the current surface viewport.
func (r *Renderer) Viewport() frame.Viewport {
	w, h := r.surface.Size()
	return frame.Viewport{Width: w, Height: h, DevicePixelRatio: r.surface.DevicePixelRatio()}
}

// Stats returns the statistics of the last drawn frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Frame returns the geometry of the last built frame. It is valid until
// the next DrawPaths call.
func (r *Renderer) Frame() *frame.FrameBuffer { return r.packer.Frame() }

// UploadEmpty uploads empty geometry with the current viewport.
func (r *Renderer) UploadEmpty() error {
	r.packer.Reset()
	return r.backend.Upload(r.packer.Frame(), r.Viewport().Uniforms())
}

// DrawPaths builds the frame from paths and draws it. A path that fails
// to tessellate is skipped and logged; the others are drawn. The returned
// error reports backend failures only.
func (r *Renderer) DrawPaths(paths iter.Seq[PathItem]) (Stats, error) {
	r.packer.Reset()
	var st Stats
	for item := range paths {
		st.PathsSeen++
		painted, err := r.addPath(item)
		switch {
		case err != nil:
			st.PathsSkipped++
			vgraph.Logger().Warn("render: path skipped",
				"index", st.PathsSeen-1, "depth", item.Depth, "err", err)
		case painted:
			st.PathsTessellated++
		}
	}
	return r.submit(st)
}

// Redraw uploads and draws the last built frame again with a fresh
// viewport.
func (r *Renderer) Redraw() (Stats, error) {
	st := r.stats
	return r.submit(Stats{
		PathsSeen:        st.PathsSeen,
		PathsTessellated: st.PathsTessellated,
		PathsSkipped:     st.PathsSkipped,
	})
}

func (r *Renderer) submit(st Stats) (Stats, error) {
	fb := r.packer.Frame()
	st.Vertices = fb.VertexCount()
	st.Indices = fb.IndexCount()
	st.Batches = len(fb.Batches)
	for i := range fb.Batches {
		if len(fb.Batches[i].Indices) > 0 {
			st.DrawCalls++
		}
	}
	r.stats = st

	if err := r.backend.Upload(fb, r.Viewport().Uniforms()); err != nil {
		return st, fmt.Errorf("upload frame: %w", err)
	}
	if err := r.backend.Draw(); err != nil {
		return st, fmt.Errorf("draw frame: %w", err)
	}
	vgraph.Logger().Debug("render: frame drawn", "stats", st.String())
	return st, nil
}

// addPath tessellates one path into the packer. It reports false when
// the policy leaves the path unpainted.
func (r *Renderer) addPath(item PathItem) (bool, error) {
	style := item.Data.Style
	stroke := style.Stroke

	switch r.opts.policy {
	case PolicyStrokeTriggered:
		if stroke == nil {
			return false, nil
		}
	default:
		if !style.Fill.IsVisible() && stroke == nil {
			return false, nil
		}
	}

	tmpl := frame.VertexInstance{
		ZIndex: float32(item.Depth) / depthScale,
		Width:  strokeWidth(stroke),
		Flags:  frame.FlagRounded,
	}
	if r.opts.policy == PolicyFillOrStroke && item.Data.AllClosed() {
		tmpl.Flags |= frame.FlagClosed
	}

	ctor := r.vertexFunc(style, tmpl)
	r.mesh.Reset()
	if err := tess.Fill(r.tess, item.Data.Subpaths, &r.mesh, ctor); err != nil {
		return false, err
	}
	if err := r.packer.Add(frame.Mesh{Vertices: r.mesh.Vertices, Indices: r.mesh.Indices}); err != nil {
		return false, err
	}
	return true, nil
}

// vertexFunc returns the per-vertex constructor for a path.
func (r *Renderer) vertexFunc(style vgraph.PathStyle, tmpl frame.VertexInstance) func(vgraph.Point) frame.VertexInstance {
	withPos := func(p vgraph.Point, c vgraph.Color) frame.VertexInstance {
		v := tmpl
		v.Pos = [2]float32{float32(p.X), float32(p.Y)}
		v.Color = c.Array()
		return v
	}

	color := r.opts.fallback
	if style.Stroke != nil && style.Stroke.Color != nil {
		color = *style.Stroke.Color
	}

	if r.opts.policy == PolicyFillOrStroke {
		switch style.Fill.Kind {
		case vgraph.FillSolid:
			color = style.Fill.Color
		case vgraph.FillGradient:
			if style.Fill.Gradient != nil {
				// A gradient without colored stops falls through to the
				// stroke or fallback color.
				if ramp, ok := newGradientRamp(style.Fill.Gradient); ok {
					return func(p vgraph.Point) frame.VertexInstance {
						return withPos(p, ramp.at(p))
					}
				}
			}
		}
	}

	return func(p vgraph.Point) frame.VertexInstance {
		return withPos(p, color)
	}
}

// strokeWidth returns the scaled stroke width, 0 without a usable stroke.
func strokeWidth(s *vgraph.Stroke) float32 {
	if s == nil || !(s.Weight > 0) || math.IsInf(s.Weight, 1) {
		return 0
	}
	return float32(s.Weight * widthScale)
}
