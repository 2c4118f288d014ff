package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/choreo/internal/dynamo"
)

// BodyColors are the per-body trail colours: blue, green, red.
var BodyColors = []string{"#0000ff", "#00ff00", "#ff0000"}

// Plane picks the two coordinates a trail is drawn in.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

func (p Plane) project(v dynamo.Vector3) (float64, float64) {
	switch p {
	case PlaneXZ:
		return v.X, v.Z
	case PlaneYZ:
		return v.Y, v.Z
	default:
		return v.X, v.Y
	}
}

type SVGOptions struct {
	Width, Height int
	Plane         Plane
	Background    string
	Colors        []string
	StrokeWidth   float64
	// Markers draws a dot at the newest point of each trail.
	Markers bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:       800,
		Height:      800,
		Plane:       PlaneXY,
		Background:  "#0a0a0a",
		Colors:      BodyColors,
		StrokeWidth: 1.5,
		Markers:     true,
	}
}

// TrailsToSVG draws every trail as a polyline, oldest point first, on a
// shared scale so the relative geometry of the bodies is preserved.
func TrailsToSVG(trails [][]dynamo.Vector3, opts SVGOptions) string {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultSVGOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if len(opts.Colors) == 0 {
		opts.Colors = BodyColors
	}

	first := true
	var minX, maxX, minY, maxY float64
	for _, tr := range trails {
		for _, v := range tr {
			x, y := opts.Plane.project(v)
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	// keep the aspect ratio: one scale for both axes
	rangeX := maxX - minX
	rangeY := maxY - minY
	span := max(rangeX, rangeY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	size := float64(min(opts.Width, opts.Height))

	toScreen := func(v dynamo.Vector3) (float64, float64) {
		x, y := opts.Plane.project(v)
		sx := float64(opts.Width)/2 + (x-cx)/span*size
		sy := float64(opts.Height)/2 - (y-cy)/span*size
		return sx, sy
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, opts.Width, opts.Height, opts.Width, opts.Height)
	if opts.Background != "" {
		fmt.Fprintf(&sb, "<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", opts.Background)
	}

	for i, tr := range trails {
		if len(tr) == 0 {
			continue
		}
		color := opts.Colors[i%len(opts.Colors)]

		if len(tr) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="%.1f" d="M`, color, opts.StrokeWidth)
			for j, v := range tr {
				x, y := toScreen(v)
				if j == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}

		if opts.Markers {
			x, y := toScreen(tr[len(tr)-1])
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, 3*opts.StrokeWidth, color)
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func WriteSVG(w io.Writer, trails [][]dynamo.Vector3, opts SVGOptions) error {
	_, err := io.WriteString(w, TrailsToSVG(trails, opts))
	return err
}

func SaveSVG(path string, trails [][]dynamo.Vector3, opts SVGOptions) error {
	return os.WriteFile(path, []byte(TrailsToSVG(trails, opts)), 0644)
}
