package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/choreo/internal/dynamo"
)

func circle(n int, r, phase float64) []dynamo.Vector3 {
	out := make([]dynamo.Vector3, n)
	for i := range out {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		out[i] = dynamo.Vec(r*math.Cos(a), r*math.Sin(a), 0)
	}
	return out
}

func TestTrailsToSVG(t *testing.T) {
	trails := [][]dynamo.Vector3{
		circle(50, 1, 0),
		circle(50, 1, 2*math.Pi/3),
		circle(50, 1, 4*math.Pi/3),
	}

	svg := TrailsToSVG(trails, DefaultSVGOptions())

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("expected a complete svg document")
	}
	if got := strings.Count(svg, "<path"); got != 3 {
		t.Errorf("expected 3 paths, got %d", got)
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 markers, got %d", got)
	}
	for _, c := range BodyColors {
		if !strings.Contains(svg, `stroke="`+c+`"`) {
			t.Errorf("missing colour %s", c)
		}
	}
}

func TestTrailsToSVGBounds(t *testing.T) {
	tests := []struct {
		name   string
		trails [][]dynamo.Vector3
		plane  Plane
	}{
		{"circle xy", [][]dynamo.Vector3{circle(40, 3, 0)}, PlaneXY},
		{"flat in xz", [][]dynamo.Vector3{circle(40, 3, 0)}, PlaneXZ},
		{"single point", [][]dynamo.Vector3{{dynamo.Vec(5, 5, 5)}}, PlaneXY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultSVGOptions()
			opts.Plane = tt.plane
			svg := TrailsToSVG(tt.trails, opts)
			if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
				t.Errorf("non-finite coordinates in %s", svg)
			}
		})
	}
}

func TestTrailsToSVGOptions(t *testing.T) {
	opts := SVGOptions{Colors: []string{"#123456"}}
	svg := TrailsToSVG([][]dynamo.Vector3{circle(10, 1, 0), {}, circle(10, 2, 0)}, opts)

	if !strings.Contains(svg, `width="800"`) {
		t.Error("expected default size")
	}
	if strings.Contains(svg, "<rect") {
		t.Error("expected no background")
	}
	if strings.Contains(svg, "<circle") {
		t.Error("expected no markers")
	}
	if got := strings.Count(svg, `stroke="#123456"`); got != 2 {
		t.Errorf("expected 2 paths in the single colour, got %d", got)
	}
}

func TestSaveSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trails.svg")
	if err := SaveSVG(path, [][]dynamo.Vector3{circle(10, 1, 0)}, DefaultSVGOptions()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<path") {
		t.Error("expected a path in the saved file")
	}
}
