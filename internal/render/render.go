// Package render draws a clip window, the geometry clipped against
// it and the clipped result into a PNG preview.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/paulhankin/rectclip/paths"
	"golang.org/x/image/vector"
)

// Layers is what gets drawn. Original and Clipped may be nil.
type Layers struct {
	Window   paths.Bounds
	Original *paths.Paths
	Clipped  *paths.Paths
}

// Options controls the size of the preview.
type Options struct {
	Width, Height int
	Margin        float64 // in pixels, on every side
}

// DefaultOptions returns the size of the original drawing canvas.
func DefaultOptions() Options {
	return Options{Width: 900, Height: 600, Margin: 20}
}

type style struct {
	fill, stroke color.NRGBA
	width        float32
}

var (
	windowStyle   = style{fill: color.NRGBA{100, 150, 255, 51}, stroke: color.NRGBA{0x4a, 0x88, 0xc7, 0xff}, width: 2}
	segmentStyle  = style{stroke: color.NRGBA{0xff, 0x99, 0x99, 0xff}, width: 1.5}
	clipSegStyle  = style{stroke: color.NRGBA{0xe6, 0x00, 0x00, 0xff}, width: 2.5}
	polygonStyle  = style{fill: color.NRGBA{183, 245, 183, 102}, stroke: color.NRGBA{0x00, 0x90, 0x00, 0xff}, width: 1.5}
	clipPolyStyle = style{fill: color.NRGBA{0, 120, 0, 102}, stroke: color.NRGBA{0x00, 0x44, 0x00, 0xff}, width: 2}
)

// Geometry is clipped to the image plus this many pixels on every
// side before it reaches the rasterizer.
const viewPad = 8

// maxPixel bounds pixel coordinates handed to the rasterizer.
const maxPixel = 1 << 20

// canvas maps scene coordinates to pixels, with y increasing
// upwards (row 0 is the lowest y); Draw flips the finished image.
type canvas struct {
	dst   *image.NRGBA
	z     *vector.Rasterizer
	scale float64
	mid   paths.Vec2
	w, h  int
	view  paths.Bounds // the padded image, in scene coordinates
}

func newCanvas(dst *image.NRGBA, b paths.Bounds, scale float64) *canvas {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	c := newCanvas(dst, b, scale)
	hw := (float64(w)/2 + viewPad) / scale
	hh := (float64(h)/2 + viewPad) / scale
	c.view = paths.Rect(c.mid[0]-hw, c.mid[1]-hh, c.mid[0]+hw, c.mid[1]+hh)
	return c
}

func clampPixel(x float64) float32 {
	return float32(math.Max(-maxPixel, math.Min(maxPixel, x)))
}

func (c *canvas) pt(v paths.Vec2) (float32, float32) {
	x := (v[0]-c.mid[0])*c.scale + float64(c.w)/2
	y := (v[1]-c.mid[1])*c.scale + float64(c.h)/2
	return clampPixel(x), clampPixel(y)
}

// drawable reports whether every coordinate of vs is a number.
func drawable(vs ...paths.Vec2) bool {
	for _, v := range vs {
		if math.IsNaN(v[0]) || math.IsNaN(v[1]) {
			return false
		}
	}
	return true
}

// finite reports whether b and its size are finite.
func finite(b paths.Bounds) bool {
	for _, f := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1], b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (c *canvas) paint(col color.NRGBA) {
	c.z.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{})
	c.z.Reset(c.w, c.h)
}

func (c *canvas) fill(vs []paths.Vec2, col color.NRGBA) {
	if len(vs) < 3 || col.A == 0 {
		return
	}
	for _, v := range vs {
		if paths.ComputeOutcode(v, c.view) != 0 {
			vs = paths.ClipPolygon(paths.Polygon{V: vs}, c.view).V
			break
		}
	}
	if len(vs) < 3 || !drawable(vs...) {
		return
	}
	c.z.MoveTo(c.pt(vs[0]))
	for _, v := range vs[1:] {
		c.z.LineTo(c.pt(v))
	}
	c.z.ClosePath()
	c.paint(col)
}

// line strokes a-b with a rectangle of the given pixel width. A zero
// length line is drawn as a square dot.
func (c *canvas) line(a, b paths.Vec2, width float32, col color.NRGBA) {
	s, ok := paths.ClipSegment(paths.Segment{a, b}, c.view)
	if !ok || !drawable(s[0], s[1]) {
		return
	}
	ax, ay := c.pt(s[0])
	bx, by := c.pt(s[1])
	dx, dy := bx-ax, by-ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	var nx, ny float32
	if l == 0 {
		nx, ny = 0, width/2
		ax, bx = ax-width/2, bx+width/2
	} else {
		nx, ny = -dy/l*width/2, dx/l*width/2
	}
	c.z.MoveTo(ax+nx, ay+ny)
	c.z.LineTo(bx+nx, by+ny)
	c.z.LineTo(bx-nx, by-ny)
	c.z.LineTo(ax-nx, ay-ny)
	c.z.ClosePath()
	c.paint(col)
}

func (c *canvas) outline(vs []paths.Vec2, width float32, col color.NRGBA) {
	for i := range vs {
		c.line(vs[i], vs[(i+1)%len(vs)], width, col)
	}
}

func (c *canvas) drawPaths(ps *paths.Paths, line, poly style) {
	if ps == nil {
		return
	}
	for _, p := range ps.Polygons {
		c.fill(p.V, poly.fill)
		c.outline(p.V, poly.width, poly.stroke)
	}
	for _, p := range ps.P {
		for i := 1; i < len(p.V); i++ {
			c.line(p.V[i-1], p.V[i], line.width, line.stroke)
		}
	}
}

// extent returns the bounds of the window and all the geometry.
func extent(l Layers) paths.Bounds {
	b := l.Window
	for _, ps := range []*paths.Paths{l.Original, l.Clipped} {
		if ps == nil || (len(ps.P) == 0 && len(ps.Polygons) == 0) {
			continue
		}
		t := &paths.Paths{P: ps.P, Polygons: ps.Polygons}
		t.TightenBounds()
		b = b.Union(t.Bounds)
	}
	return b
}

// Draw renders the layers, scaled to fit inside the margins and
// centred.
func Draw(l Layers, opt Options) image.Image {
	if opt.Width <= 0 || opt.Height <= 0 {
		opt = DefaultOptions()
	}
	w, h := opt.Width, opt.Height
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	b := extent(l)
	if !finite(b) {
		b = l.Window
		if !finite(b) {
			b = paths.Bounds{}
		}
	}
	sx := (float64(w) - 2*opt.Margin) / (b.Max[0] - b.Min[0])
	sy := (float64(h) - 2*opt.Margin) / (b.Max[1] - b.Min[1])
	scale := math.Min(sx, sy)
	if math.IsInf(scale, 0) || math.IsNaN(scale) || scale <= 0 {
		scale = 1
	}
	c := &canvas{
		dst:   dst,
		z:     vector.NewRasterizer(w, h),
		scale: scale,
		mid:   paths.Vec2{(b.Min[0] + b.Max[0]) / 2, (b.Min[1] + b.Max[1]) / 2},
		w:     w,
		h:     h,
	}

	win := []paths.Vec2{
		l.Window.Min,
		{l.Window.Max[0], l.Window.Min[1]},
		l.Window.Max,
		{l.Window.Min[0], l.Window.Max[1]},
	}
	c.fill(win, windowStyle.fill)
	c.outline(win, windowStyle.width, windowStyle.stroke)
	c.drawPaths(l.Original, segmentStyle, polygonStyle)
	c.drawPaths(l.Clipped, clipSegStyle, clipPolyStyle)
	return imaging.FlipV(dst)
}

// WritePNG draws the layers and writes them to w as a PNG.
func WritePNG(w io.Writer, l Layers, opt Options) error {
	return imaging.Encode(w, Draw(l, opt), imaging.PNG)
}
