package svgclip

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/paulhankin/rectclip/internal/render"
	"github.com/paulhankin/rectclip/paths"
)

const testScene = `2
-5 5 15 5
20 20 30 30
4
-5 -5
15 -5
15 15
-5 15
0 0 10 10
`

const testSVG = `<svg width="100" height="100">
	<polygon points="0,0 50,0 25,40"/>
	<path d="M 10 10 L 90 90"/>
</svg>`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestConvertText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	cfg := &Config{In: writeFile(t, "scene.txt", testScene), Out: out}
	if err := Convert(cfg); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	got, err := paths.ParseScene(f)
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	want := &paths.Scene{
		Window:   paths.Rect(0, 0, 10, 10),
		Segments: []paths.Segment{{{0, 5}, {10, 5}}},
		Polygon:  paths.Polygon{V: []paths.Vec2{{0, 10}, {0, 0}, {10, 0}, {10, 10}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clipped scene = %+v, want %+v", got, want)
	}
}

func TestConvertWindow(t *testing.T) {
	var bb bytes.Buffer
	cfg := &Config{
		In:        writeFile(t, "in.svg", testSVG),
		Out:       "-",
		Format:    "txt",
		Window:    paths.Rect(0, 0, 20, 20),
		HasWindow: true,
		Stdout:    &bb,
	}
	if err := Convert(cfg); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	got, err := paths.ParseScene(&bb)
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	want := &paths.Scene{
		Window:   paths.Rect(0, 0, 20, 20),
		Segments: []paths.Segment{{{10, 10}, {20, 20}}},
		Polygon:  paths.Polygon{V: []paths.Vec2{{20, 20}, {12.5, 20}, {0, 0}, {20, 0}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clipped scene = %+v, want %+v", got, want)
	}
}

func TestConvertSVGStdio(t *testing.T) {
	var bb bytes.Buffer
	cfg := &Config{
		In:        "-",
		Out:       "-",
		Window:    paths.Rect(0, 0, 20, 20),
		HasWindow: true,
		Stdin:     strings.NewReader(testSVG),
		Stdout:    &bb,
	}
	if err := Convert(cfg); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	got, err := paths.FromSVG(&bb)
	if err != nil {
		t.Fatalf("failed to parse output svg: %v\n%s", err, bb.String())
	}
	if len(got.P) != 1 || len(got.Polygons) != 1 {
		t.Errorf("output has %d paths and %d polygons, want 1 of each", len(got.P), len(got.Polygons))
	}
}

func TestConvertPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	cfg := &Config{
		In:      writeFile(t, "scene.txt", testScene),
		Out:     out,
		Preview: render.Options{Width: 80, Height: 60, Margin: 5},
	}
	if err := Convert(cfg); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 80, 60) {
		t.Errorf("png bounds = %v, want 80x60", got)
	}
}

func TestConvertSimplify(t *testing.T) {
	in := `<svg width="100" height="100"><path d="M 0 50 L 50 50.01 L 100 50"/></svg>`
	var bb bytes.Buffer
	cfg := &Config{
		In:       writeFile(t, "in.svg", in),
		Out:      "-",
		Format:   "txt",
		Simplify: 0.1,
		Stdout:   &bb,
	}
	if err := Convert(cfg); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	got, err := paths.ParseScene(&bb)
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	want := []paths.Segment{{{0, 50}, {100, 50}}}
	if !reflect.DeepEqual(got.Segments, want) {
		t.Errorf("simplified segments = %v, want %v", got.Segments, want)
	}
}

const testCurvesSVG = `<svg width="100" height="100">
	<path d="M 10 10 L 30 10 L 30 30 Z"/>
	<path d="M 40 40 C 40 50 60 50 60 40"/>
	<circle cx="50" cy="50" r="10"/>
</svg>`

func TestLoadInstructions(t *testing.T) {
	ps, err := loadInstructions(strings.NewReader(testCurvesSVG))
	if err != nil {
		t.Fatalf("loadInstructions failed: %v", err)
	}
	if len(ps.P) != 1 {
		t.Fatalf("got %d paths, want 1", len(ps.P))
	}
	curve := ps.P[0].V
	if len(curve) != curveSteps+1 {
		t.Errorf("curve has %d vertices, want %d", len(curve), curveSteps+1)
	}
	if curve[0] != (paths.Vec2{40, 40}) || curve[len(curve)-1] != (paths.Vec2{60, 40}) {
		t.Errorf("curve runs from %v to %v, want 40,40 to 60,40", curve[0], curve[len(curve)-1])
	}
	if len(ps.Polygons) != 2 {
		t.Fatalf("got %d polygons, want 2", len(ps.Polygons))
	}
	if got, want := ps.Polygons[0].V, []paths.Vec2{{10, 10}, {30, 10}, {30, 30}}; !reflect.DeepEqual(got, want) {
		t.Errorf("closed path = %v, want %v", got, want)
	}
	if got := len(ps.Polygons[1].V); got != circleSteps {
		t.Errorf("circle has %d vertices, want %d", got, circleSteps)
	}
	if want := paths.Rect(10, 10, 60, 60); !boundsNear(ps.Bounds, want) {
		t.Errorf("bounds = %v, want %v", ps.Bounds, want)
	}
}

func boundsNear(a, b paths.Bounds) bool {
	for i := 0; i < 2; i++ {
		if math.Abs(a.Min[i]-b.Min[i]) > 1e-9 || math.Abs(a.Max[i]-b.Max[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestConvertInstructions(t *testing.T) {
	var bb bytes.Buffer
	window := paths.Rect(0, 0, 45, 45)
	cfg := &Config{
		In:        writeFile(t, "curves.svg", testCurvesSVG),
		Out:       "-",
		Loader:    LoaderInstructions,
		Window:    window,
		HasWindow: true,
		Stdout:    &bb,
	}
	if err := Convert(cfg); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	got, err := paths.FromSVG(&bb)
	if err != nil {
		t.Fatalf("failed to parse output svg: %v\n%s", err, bb.String())
	}
	if got.Bounds != window {
		t.Errorf("output bounds = %v, want %v", got.Bounds, window)
	}
	if len(got.Polygons) != 2 {
		t.Fatalf("got %d polygons, want the triangle and part of the circle", len(got.Polygons))
	}
	if want := []paths.Vec2{{10, 10}, {30, 10}, {30, 30}}; !reflect.DeepEqual(got.Polygons[0].V, want) {
		t.Errorf("triangle = %v, want %v", got.Polygons[0].V, want)
	}
	if len(got.P) == 0 {
		t.Fatalf("the curve was clipped away entirely")
	}
	inside := func(v paths.Vec2) bool {
		return v[0] >= 0 && v[0] <= 45 && v[1] >= 0 && v[1] <= 45
	}
	for _, p := range got.P {
		for _, v := range p.V {
			if !inside(v) {
				t.Errorf("curve vertex %v is outside the window", v)
			}
		}
	}
	for _, v := range got.Polygons[1].V {
		if !inside(v) {
			t.Errorf("circle vertex %v is outside the window", v)
		}
	}
}

func TestConvertErrors(t *testing.T) {
	scene := writeFile(t, "scene.txt", testScene)
	svgIn := writeFile(t, "in.svg", testSVG)
	twoPolys := writeFile(t, "two.svg", `<svg width="10" height="10">
		<polygon points="0,0 5,0 5,5"/>
		<polygon points="1,1 4,1 4,4"/>
	</svg>`)
	dir := t.TempDir()

	tests := []struct {
		desc string
		cfg  Config
		want string
	}{
		{"no input", Config{Out: "-"}, "input file must be specified"},
		{"no output", Config{In: scene}, "output file must be specified"},
		{"missing input", Config{In: filepath.Join(dir, "nope.svg"), Out: "-"}, "failed to read"},
		{"bad loader", Config{In: svgIn, Out: "-", Loader: "magic"}, "unknown svg loader"},
		{"bad extension", Config{In: scene, Out: filepath.Join(dir, "out.gcode")}, "unsupported output file type"},
		{"bad format", Config{In: scene, Out: "-", Format: "jpg", Stdout: &bytes.Buffer{}}, "unsupported output file type"},
		{"two polygons as text", Config{In: twoPolys, Out: filepath.Join(dir, "out.txt")}, "one polygon"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			err := Convert(&tt.cfg)
			if err == nil {
				t.Fatalf("Convert succeeded, want an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Convert error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "out.txt")); !os.IsNotExist(err) {
		t.Errorf("failed conversion left an output file behind")
	}
}

func TestBuilder(t *testing.T) {
	var b builder
	b.move(paths.Vec2{0, 0})
	b.line(paths.Vec2{1, 0})
	b.line(paths.Vec2{1, 1})
	b.line(paths.Vec2{0, 0})
	b.close()
	b.move(paths.Vec2{5, 5})
	b.cubic(paths.Vec2{5, 6}, paths.Vec2{7, 6}, paths.Vec2{7, 5})
	b.move(paths.Vec2{9, 9}) // a lone point is dropped
	b.circle(paths.Vec2{2, 3}, 1)
	b.flush()

	if len(b.ps.Polygons) != 2 {
		t.Fatalf("got %d polygons, want 2", len(b.ps.Polygons))
	}
	if got, want := b.ps.Polygons[0].V, []paths.Vec2{{0, 0}, {1, 0}, {1, 1}}; !reflect.DeepEqual(got, want) {
		t.Errorf("closed path = %v, want %v", got, want)
	}
	circle := b.ps.Polygons[1].V
	if len(circle) != circleSteps {
		t.Errorf("circle has %d vertices, want %d", len(circle), circleSteps)
	}
	for _, v := range circle {
		if r := math.Hypot(v[0]-2, v[1]-3); math.Abs(r-1) > 1e-9 {
			t.Errorf("circle vertex %v is %v from the centre, want 1", v, r)
		}
	}

	if len(b.ps.P) != 1 {
		t.Fatalf("got %d paths, want 1", len(b.ps.P))
	}
	curve := b.ps.P[0].V
	if len(curve) != curveSteps+1 {
		t.Errorf("curve has %d vertices, want %d", len(curve), curveSteps+1)
	}
	if got := curve[len(curve)-1]; got != (paths.Vec2{7, 5}) {
		t.Errorf("curve ends at %v, want 7,5", got)
	}
	if mid := curve[curveSteps/2]; math.Abs(mid[0]-6) > 1e-9 || math.Abs(mid[1]-5.75) > 1e-9 {
		t.Errorf("curve midpoint = %v, want 6,5.75", mid)
	}
}
