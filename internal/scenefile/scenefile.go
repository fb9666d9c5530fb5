// Package scenefile loads demo scenes from YAML.
//
// A scene lists paths. Each path starts either from a shape or from the
// output of an earlier path and runs through a chain of transform nodes:
//
//	width: 800
//	height: 600
//	paths:
//	  - name: wave
//	    depth: 1
//	    shape: {kind: polyline, points: [[40, 300], [200, 120], [360, 420]]}
//	    nodes:
//	      - spline: {}
//	      - resample: {density: 12}
//	      - stroke: {color: steelblue, weight: 3}
//	  - name: badge
//	    depth: 2
//	    shape: {kind: ellipse, points: [[500, 100], [700, 300]]}
//	    nodes:
//	      - fill: {color: "#ff8800cc"}
//
// Colors are CSS names or hex strings.
package scenefile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/node"
	"github.com/gogpu/vgraph/render"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("scenefile: invalid scene")

// Scene is a decoded scene file.
type Scene struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Paths  []Path `yaml:"paths"`
}

// Path is one drawn path.
type Path struct {
	Name  string `yaml:"name"`
	Depth int    `yaml:"depth"`
	// From names an earlier path whose output feeds this one. Exactly one
	// of From and Shape is set.
	From   string     `yaml:"from,omitempty"`
	Shape  *Shape     `yaml:"shape,omitempty"`
	Nodes  []NodeSpec `yaml:"nodes,omitempty"`
	Hidden bool       `yaml:"hidden,omitempty"`
}

// Shape describes source geometry.
type Shape struct {
	// Kind is rectangle, ellipse, polyline or spline. Rectangles and
	// ellipses take two corner points.
	Kind   string       `yaml:"kind"`
	Points [][2]float64 `yaml:"points"`
	Closed bool         `yaml:"closed,omitempty"`
}

// NodeSpec holds exactly one transform node.
type NodeSpec struct {
	Fill     *FillSpec     `yaml:"fill,omitempty"`
	Stroke   *StrokeSpec   `yaml:"stroke,omitempty"`
	Resample *ResampleSpec `yaml:"resample,omitempty"`
	Spline   *struct{}     `yaml:"spline,omitempty"`
}

// FillSpec configures SetFill. An empty spec clears the fill.
type FillSpec struct {
	Color    string        `yaml:"color,omitempty"`
	Gradient *GradientSpec `yaml:"gradient,omitempty"`
}

// GradientSpec configures a gradient fill.
type GradientSpec struct {
	Kind  string     `yaml:"kind"` // linear or radial
	Start [2]float64 `yaml:"start"`
	End   [2]float64 `yaml:"end"`
	Stops []StopSpec `yaml:"stops"`
}

// StopSpec is one gradient stop.
type StopSpec struct {
	Position float64 `yaml:"position"`
	Color    string  `yaml:"color"`
}

// StrokeSpec configures SetStroke.
type StrokeSpec struct {
	Color      string    `yaml:"color,omitempty"`
	Weight     float64   `yaml:"weight"`
	Dash       []float64 `yaml:"dash,omitempty"`
	DashOffset float64   `yaml:"dash_offset,omitempty"`
	Cap        string    `yaml:"cap,omitempty"`
	Join       string    `yaml:"join,omitempty"`
	MiterLimit float64   `yaml:"miter_limit,omitempty"`
}

// ResampleSpec configures SetResampleCurve.
type ResampleSpec struct {
	Density float64 `yaml:"density"`
}

// Parse decodes a scene from YAML bytes.
func Parse(data []byte) (*Scene, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes a scene from r. Unknown keys are errors.
func Load(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &s, nil
}

//go:embed default.yaml
var defaultScene []byte

// Default returns the built-in demo scene.
func Default() *Scene {
	s, err := Parse(defaultScene)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadFile decodes the scene file at path.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Graph builds the node graph of the scene. The output of path p has
// ID p.Name.
func (s *Scene) Graph() (*node.Graph, error) {
	g := node.NewGraph()
	seen := make(map[string]bool, len(s.Paths))
	for i, p := range s.Paths {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: path %d has no name", ErrInvalid, i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true

		input, err := s.addInput(g, p, seen)
		if err != nil {
			return nil, err
		}
		nodes := make([]node.Node, 0, len(p.Nodes))
		for j, spec := range p.Nodes {
			n, err := spec.build()
			if err != nil {
				return nil, fmt.Errorf("%w: path %q node %d: %w", ErrInvalid, p.Name, j, err)
			}
			nodes = append(nodes, n)
		}
		for j, n := range nodes {
			id := node.ID(p.Name)
			if j < len(nodes)-1 {
				id = node.ID(fmt.Sprintf("%s#%d", p.Name, j))
			}
			if err := g.Add(id, n, input); err != nil {
				return nil, err
			}
			input = id
		}
		if len(nodes) == 0 {
			// A path without nodes forwards its input.
			if err := g.Add(node.ID(p.Name), node.Chain(), input); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func (s *Scene) addInput(g *node.Graph, p Path, seen map[string]bool) (node.ID, error) {
	switch {
	case p.From != "" && p.Shape != nil:
		return "", fmt.Errorf("%w: path %q has both from and shape", ErrInvalid, p.Name)
	case p.From != "":
		if p.From == p.Name || !seen[p.From] {
			return "", fmt.Errorf("%w: path %q reads unknown path %q", ErrInvalid, p.Name, p.From)
		}
		return node.ID(p.From), nil
	case p.Shape != nil:
		sub, err := p.Shape.build()
		if err != nil {
			return "", fmt.Errorf("%w: path %q: %w", ErrInvalid, p.Name, err)
		}
		id := node.ID(p.Name + "#source")
		if err := g.AddSource(id, vgraph.NewVectorData(sub)); err != nil {
			return "", err
		}
		return id, nil
	default:
		return "", fmt.Errorf("%w: path %q has no shape", ErrInvalid, p.Name)
	}
}

// Items evaluates the graph and returns the visible paths in file order.
func (s *Scene) Items() ([]render.PathItem, error) {
	g, err := s.Graph()
	if err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(s.Paths))
	for _, p := range s.Paths {
		ids = append(ids, node.ID(p.Name))
	}
	out, err := g.EvaluateAll(ids...)
	if err != nil {
		return nil, err
	}
	items := make([]render.PathItem, 0, len(s.Paths))
	for _, p := range s.Paths {
		if p.Hidden {
			continue
		}
		items = append(items, render.PathItem{Data: out[node.ID(p.Name)], Depth: p.Depth})
	}
	return items, nil
}

func (sh *Shape) build() (vgraph.Subpath, error) {
	pts := make([]vgraph.Point, len(sh.Points))
	for i, p := range sh.Points {
		pts[i] = vgraph.Pt(p[0], p[1])
	}
	switch strings.ToLower(sh.Kind) {
	case "rectangle", "rect":
		if len(pts) != 2 {
			return vgraph.Subpath{}, fmt.Errorf("rectangle needs 2 points, got %d", len(pts))
		}
		return vgraph.Rectangle(pts[0], pts[1]), nil
	case "ellipse":
		if len(pts) != 2 {
			return vgraph.Subpath{}, fmt.Errorf("ellipse needs 2 points, got %d", len(pts))
		}
		return vgraph.Ellipse(pts[0], pts[1]), nil
	case "polyline", "polygon":
		return vgraph.FromAnchors(pts, sh.Closed || strings.EqualFold(sh.Kind, "polygon")), nil
	case "spline":
		return vgraph.NewCubicSpline(pts), nil
	default:
		return vgraph.Subpath{}, fmt.Errorf("unknown shape kind %q", sh.Kind)
	}
}

func (n NodeSpec) build() (node.Node, error) {
	var out []node.Node
	if n.Fill != nil {
		f, err := n.Fill.build()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if n.Stroke != nil {
		s, err := n.Stroke.build()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if n.Resample != nil {
		out = append(out, node.SetResampleCurve{Density: n.Resample.Density})
	}
	if n.Spline != nil {
		out = append(out, node.SetSplineFromPoints{})
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("want exactly one node per entry, got %d", len(out))
	}
	return out[0], nil
}

func (f *FillSpec) build() (node.SetFill, error) {
	if f.Gradient != nil {
		g := f.Gradient
		var kind vgraph.GradientKind
		switch strings.ToLower(g.Kind) {
		case "", "linear":
			kind = vgraph.GradientLinear
		case "radial":
			kind = vgraph.GradientRadial
		default:
			return node.SetFill{}, fmt.Errorf("unknown gradient kind %q", g.Kind)
		}
		stops := make([]vgraph.GradientStop, len(g.Stops))
		for i, st := range g.Stops {
			c, err := parseColor(st.Color)
			if err != nil {
				return node.SetFill{}, err
			}
			stops[i] = vgraph.GradientStop{Position: st.Position, Color: c}
		}
		return node.SetFill{
			Kind:         vgraph.FillGradient,
			GradientKind: kind,
			Start:        vgraph.Pt(g.Start[0], g.Start[1]),
			End:          vgraph.Pt(g.End[0], g.End[1]),
			Transform:    vgraph.Identity(),
			Stops:        stops,
		}, nil
	}
	c, err := parseColor(f.Color)
	if err != nil {
		return node.SetFill{}, err
	}
	kind := vgraph.FillSolid
	if c == nil {
		kind = vgraph.FillNone
	}
	return node.SetFill{Kind: kind, Color: c}, nil
}

func (s *StrokeSpec) build() (node.SetStroke, error) {
	c, err := parseColor(s.Color)
	if err != nil {
		return node.SetStroke{}, err
	}
	n := node.SetStroke{
		Color:       c,
		Weight:      s.Weight,
		DashLengths: s.Dash,
		DashOffset:  s.DashOffset,
		MiterLimit:  s.MiterLimit,
	}
	switch strings.ToLower(s.Cap) {
	case "", "butt":
		n.Cap = vgraph.LineCapButt
	case "round":
		n.Cap = vgraph.LineCapRound
	case "square":
		n.Cap = vgraph.LineCapSquare
	default:
		return node.SetStroke{}, fmt.Errorf("unknown line cap %q", s.Cap)
	}
	switch strings.ToLower(s.Join) {
	case "", "miter":
		n.Join = vgraph.LineJoinMiter
	case "bevel":
		n.Join = vgraph.LineJoinBevel
	case "round":
		n.Join = vgraph.LineJoinRound
	default:
		return node.SetStroke{}, fmt.Errorf("unknown line join %q", s.Join)
	}
	if n.MiterLimit == 0 {
		n.MiterLimit = vgraph.DefaultStroke().MiterLimit
	}
	return n, nil
}

// parseColor returns nil for an empty string.
func parseColor(s string) (*vgraph.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, ok := vgraph.ParseColor(s)
	if !ok {
		return nil, fmt.Errorf("bad color %q", s)
	}
	return c.Ptr(), nil
}
