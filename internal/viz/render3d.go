package viz

import (
	"math"
	"sort"

	"github.com/san-kum/choreo/internal/dynamo"
)

// Camera manages 3D projection to a 2D plane. Scale is the world extent
// that fills a third of the smaller screen dimension at zoom 1.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
	Scale            float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Zoom: 1.0, Scale: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) ResetView() {
	c.RotX, c.RotY, c.RotZ = 0, 0, 0
	c.Zoom = 1.0
}

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p dynamo.Vector3) dynamo.Vector3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts world coordinates to screen sub-pixels.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p dynamo.Vector3, sw, sh int) (int, int, float64, bool) {
	scale := c.Scale
	if scale <= 0 {
		scale = 1
	}
	rot := c.RotatePoint(p).Scale(c.Zoom / scale)
	dist := c.Distance
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	persp := dist / (dist - rot.Z)
	minDim := float64(min(sw, sh))
	pScale := minDim / 3.0
	sx := int(rot.X*persp*pScale) + sw/2
	sy := int(-rot.Y*persp*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End dynamo.Vector3
	Color      int
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                              { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e dynamo.Vector3, color int) { w.Edges = append(w.Edges, Edge{s, e, color}) }
func (w *Wireframe) AddPoint(p dynamo.Vector3, color int)   { w.Edges = append(w.Edges, Edge{p, p, color}) }
func (w *Wireframe) Clear()                                 { w.Edges = w.Edges[:0] }

// AddPath adds consecutive points as a polyline.
func (w *Wireframe) AddPath(points []dynamo.Vector3, color int) {
	for i := 1; i < len(points); i++ {
		w.AddEdge(points[i-1], points[i], color)
	}
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Color          int
}

// Render3D draws the wireframe to the canvas, farthest edges first.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Color})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })
	for _, e := range proj {
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			c.SetColor(e.X1, e.Y1, e.Color)
		} else {
			c.DrawLineColor(e.X1, e.Y1, e.X2, e.Y2, e.Color)
		}
	}
}

func CreateAxesWireframe(l float64, color int) *Wireframe {
	w, o := NewWireframe(), dynamo.Vector3{}
	w.AddEdge(o, dynamo.Vec(l, 0, 0), color)
	w.AddEdge(o, dynamo.Vec(0, l, 0), color)
	w.AddEdge(o, dynamo.Vec(0, 0, l), color)
	return w
}
