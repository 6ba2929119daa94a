package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/paulhankin/rectclip/paths"
)

func testLayers() Layers {
	sc := &paths.Scene{
		Window:   paths.Rect(0, 0, 10, 10),
		Segments: []paths.Segment{{{0, 9}, {10, 9}}},
		Polygon:  paths.Polygon{V: []paths.Vec2{{-5, -5}, {15, -5}, {15, 15}, {-5, 15}}},
	}
	res := sc.Clip()
	// Keep the extent to the window: only the clipped layer is drawn.
	return Layers{
		Window:  sc.Window,
		Clipped: res.Paths(sc.Window),
	}
}

func rgba(c color.Color) (r, g, b uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

func TestDraw(t *testing.T) {
	img := Draw(testLayers(), Options{Width: 120, Height: 120, Margin: 10})
	if got := img.Bounds(); got != image.Rect(0, 0, 120, 120) {
		t.Fatalf("image bounds = %v, want 120x120", got)
	}

	if r, g, b := rgba(img.At(2, 2)); r != 255 || g != 255 || b != 255 {
		t.Errorf("pixel outside the window = %d,%d,%d, want white", r, g, b)
	}

	// Centre of the window is covered by the clipped polygon.
	if r, g, b := rgba(img.At(60, 50)); !(g > r && g > b) {
		t.Errorf("pixel inside the clipped polygon = %d,%d,%d, want mostly green", r, g, b)
	}

	// The segment at y=9 is near the top of the window, so it must
	// appear near the top of the image: y goes up.
	if r, g, b := rgba(img.At(60, 20)); !(r > 200 && g < 50 && b < 50) {
		t.Errorf("pixel on the clipped segment = %d,%d,%d, want red", r, g, b)
	}
	if r, _, _ := rgba(img.At(60, 100)); r > 200 {
		t.Errorf("segment drawn near the bottom of the image, want the top")
	}
}

func TestDrawDegenerate(t *testing.T) {
	img := Draw(Layers{Window: paths.Rect(3, 3, 3, 3)}, Options{})
	def := DefaultOptions()
	if got := img.Bounds(); got != image.Rect(0, 0, def.Width, def.Height) {
		t.Errorf("image bounds = %v, want the default size", got)
	}
}

func TestWritePNG(t *testing.T) {
	var bb bytes.Buffer
	if err := WritePNG(&bb, testLayers(), Options{Width: 64, Height: 48, Margin: 4}); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	img, err := png.Decode(&bb)
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 64, 48) {
		t.Errorf("png bounds = %v, want 64x48", got)
	}
}

func TestDrawHugeCoordinates(t *testing.T) {
	seg := &paths.Paths{P: []paths.Path{{V: []paths.Vec2{{-1e308, 5}, {1e308, 5}}}}}
	l := Layers{
		Window:   paths.Rect(0, 0, 10, 10),
		Original: seg,
		Clipped:  &paths.Paths{P: []paths.Path{{V: []paths.Vec2{{0, 5}, {10, 5}}}}},
	}
	img := Draw(l, Options{Width: 100, Height: 100, Margin: 10})

	// The extent falls back to the window, which fills the middle.
	if r, g, b := rgba(img.At(2, 2)); r != 255 || g != 255 || b != 255 {
		t.Errorf("pixel outside the window = %d,%d,%d, want white", r, g, b)
	}
	if r, g, b := rgba(img.At(50, 25)); !(b > r) {
		t.Errorf("pixel inside the window = %d,%d,%d, want the window fill", r, g, b)
	}
	onLine := false
	for _, y := range []int{49, 50} {
		if r, _, b := rgba(img.At(50, y)); r > b {
			onLine = true
		}
	}
	if !onLine {
		t.Errorf("segment at y=5 not drawn across the middle of the window")
	}

	// Geometry at infinity is skipped rather than drawn.
	l.Window = paths.Rect(math.Inf(-1), 0, math.Inf(1), 10)
	if got := Draw(l, Options{Width: 40, Height: 30}).Bounds(); got != image.Rect(0, 0, 40, 30) {
		t.Errorf("image bounds = %v, want 40x30", got)
	}
}

func TestExtent(t *testing.T) {
	l := Layers{
		Window:   paths.Rect(0, 0, 10, 10),
		Original: &paths.Paths{P: []paths.Path{{V: []paths.Vec2{{-5, 3}, {4, 20}}}}},
		Clipped:  &paths.Paths{},
	}
	if got, want := extent(l), paths.Rect(-5, 0, 10, 20); got != want {
		t.Errorf("extent = %v, want %v", got, want)
	}
}
