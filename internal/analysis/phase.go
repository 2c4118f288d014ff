package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/storage"
)

// Coordinate selects one scalar of a body's state.
type Coordinate int

const (
	CoordX Coordinate = iota
	CoordY
	CoordZ
	CoordVX
	CoordVY
	CoordVZ
)

var coordinateNames = [...]string{"x", "y", "z", "vx", "vy", "vz"}

func (c Coordinate) String() string {
	if c < 0 || int(c) >= len(coordinateNames) {
		return fmt.Sprintf("Coordinate(%d)", int(c))
	}
	return coordinateNames[c]
}

func (c Coordinate) Value(b dynamo.Body) float64 {
	switch c {
	case CoordX:
		return b.Position.X
	case CoordY:
		return b.Position.Y
	case CoordZ:
		return b.Position.Z
	case CoordVX:
		return b.Velocity.X
	case CoordVY:
		return b.Velocity.Y
	case CoordVZ:
		return b.Velocity.Z
	}
	return 0
}

func ParseCoordinate(s string) (Coordinate, error) {
	for i, name := range coordinateNames {
		if name == s {
			return Coordinate(i), nil
		}
	}
	return 0, fmt.Errorf("%w: coordinate %q (want one of %v)", dynamo.ErrInvalidArgument, s, coordinateNames)
}

// Series extracts coordinate c of body from recorded frames.
func Series(frames []storage.Frame, body int, c Coordinate) []float64 {
	return storage.Column(frames, func(f storage.Frame) float64 { return c.Value(f.Bodies[body]) })
}

type Point struct{ X, Y float64 }

// PhasePortrait holds one body's trajectory in a 2D slice of state space.
type PhasePortrait struct {
	Body   int
	XCoord Coordinate
	YCoord Coordinate
	Points []Point
}

func NewPhasePortrait(frames []storage.Frame, body int, x, y Coordinate) *PhasePortrait {
	if body < 0 || body >= dynamo.NumBodies {
		return nil
	}

	portrait := &PhasePortrait{
		Body:   body,
		XCoord: x,
		YCoord: y,
		Points: make([]Point, 0, len(frames)),
	}
	for _, f := range frames {
		b := f.Bodies[body]
		portrait.Points = append(portrait.Points, Point{X: x.Value(b), Y: y.Value(b)})
	}
	return portrait
}

// PoincareSection records where a trajectory crosses a threshold.
type PoincareSection struct {
	Points []Point
}

// NewPoincareSection records (x, y) of body each time its cross coordinate
// passes threshold going upward, interpolating linearly between frames.
func NewPoincareSection(
	frames []storage.Frame,
	body int,
	cross Coordinate,
	threshold float64,
	x, y Coordinate,
) *PoincareSection {
	if body < 0 || body >= dynamo.NumBodies {
		return nil
	}

	section := &PoincareSection{Points: make([]Point, 0)}
	for i := 1; i < len(frames); i++ {
		prev, curr := frames[i-1].Bodies[body], frames[i].Bodies[body]
		pv, cv := cross.Value(prev), cross.Value(curr)
		if !(pv < threshold && cv >= threshold) {
			continue
		}

		frac := (threshold - pv) / (cv - pv)
		section.Points = append(section.Points, Point{
			X: x.Value(prev) + frac*(x.Value(curr)-x.Value(prev)),
			Y: y.Value(prev) + frac*(y.Value(curr)-y.Value(prev)),
		})
	}
	return section
}

func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil {
		return ""
	}
	return plotASCII(p.Points, width, height)
}

func (s *PoincareSection) ToASCII(width, height int) string {
	if s == nil || len(s.Points) == 0 {
		return "No crossings detected"
	}
	return plotASCII(s.Points, width, height)
}

func plotASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
