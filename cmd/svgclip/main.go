// Binary svgclip clips an svg drawing or a text scene to a rectangle,
// writing the result as svg, png or text.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulhankin/rectclip/cmd/svgclip/svgclip"
	"github.com/paulhankin/rectclip/internal/render"
	"github.com/paulhankin/rectclip/paths"
)

type flagWindowValue struct {
	B     paths.Bounds
	Given bool
}

func (fw *flagWindowValue) String() string {
	if fw == nil || !fw.Given {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g,%g", fw.B.Min[0], fw.B.Min[1], fw.B.Max[0], fw.B.Max[1])
}

func (fw *flagWindowValue) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return fmt.Errorf("can't parse %q as a window: want xmin,ymin,xmax,ymax", s)
	}
	var fs [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("window %q must be finite", s)
		}
		fs[i] = f
	}
	fw.B = paths.Rect(fs[0], fs[1], fs[2], fs[3])
	fw.Given = true
	return nil
}

type flagSizeValue struct {
	W, H int
}

func (fs *flagSizeValue) String() string {
	return fmt.Sprintf("%dx%d", fs.W, fs.H)
}

func (fs *flagSizeValue) Set(s string) error {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return fmt.Errorf("can't parse %q as size: want WxH", s)
	}
	var err error
	if fs.W, err = strconv.Atoi(strings.TrimSpace(w)); err != nil {
		return err
	}
	if fs.H, err = strconv.Atoi(strings.TrimSpace(h)); err != nil {
		return err
	}
	return nil
}

// flags
var (
	flagIn       string
	flagOut      string
	flagFormat   string
	flagLoader   string
	flagSimplify float64
	flagWindow   flagWindowValue
	flagSize     = flagSizeValue{W: render.DefaultOptions().Width, H: render.DefaultOptions().Height}
)

func init() {
	flag.StringVar(&flagIn, "in", "", "input file: .svg or .txt scene, - for an svg on stdin")
	flag.StringVar(&flagOut, "out", "-", "output file: .svg, .png or .txt, - for stdout")
	flag.StringVar(&flagFormat, "format", "svg", "output format when writing to stdout (svg, png or txt)")
	flag.StringVar(&flagLoader, "loader", svgclip.LoaderSVG, "how to read svg input (svg or instructions)")
	flag.Float64Var(&flagSimplify, "simplify", 0, "if positive, simplify clipped outlines to this tolerance")
	flag.Var(&flagWindow, "window", "clip window xmin,ymin,xmax,ymax (default: the input's bounds)")
	flag.Var(&flagSize, "preview-size", "size of png output (pixels)")
}

func main() {
	failf := func(s string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, s+"\n", args...)
		os.Exit(2)
	}

	flag.Parse()
	if flagIn == "" {
		failf("must specify -in <svg or txt file>")
	}

	opt := render.DefaultOptions()
	opt.Width, opt.Height = flagSize.W, flagSize.H
	cfg := &svgclip.Config{
		In:        flagIn,
		Out:       flagOut,
		Format:    flagFormat,
		Window:    flagWindow.B,
		HasWindow: flagWindow.Given,
		Loader:    flagLoader,
		Simplify:  flagSimplify,
		Preview:   opt,
	}
	if err := svgclip.Convert(cfg); err != nil {
		failf("%v", err)
	}
}
