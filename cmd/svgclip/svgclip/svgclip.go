// Package svgclip provides the functionality for the svgclip binary
// as a library.
package svgclip

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulhankin/rectclip/internal/render"
	"github.com/paulhankin/rectclip/paths"
	"golang.org/x/term"
)

// Loaders for svg input.
const (
	LoaderSVG          = "svg"
	LoaderInstructions = "instructions"
)

type Config struct {
	In  string // .svg or .txt file, or - for an svg on stdin
	Out string // .svg, .png or .txt file, or - for stdout

	// Format is the output format (svg, png or txt) when writing to
	// stdout. The default is svg.
	Format string

	// Window is the clip window. If HasWindow is false, the window of
	// a text scene or the bounds of an svg are used.
	Window    paths.Bounds
	HasWindow bool

	Loader   string
	Simplify float64
	Preview  render.Options

	Stdin  io.Reader
	Stdout io.Writer
}

func (cfg *Config) stdin() io.Reader {
	if cfg.Stdin != nil {
		return cfg.Stdin
	}
	return os.Stdin
}

func (cfg *Config) stdout() io.Writer {
	if cfg.Stdout != nil {
		return cfg.Stdout
	}
	return os.Stdout
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (cfg *Config) load(r io.Reader) (*paths.Paths, error) {
	if strings.EqualFold(filepath.Ext(cfg.In), ".txt") {
		sc, err := paths.ParseScene(r)
		if err != nil {
			return nil, err
		}
		return sc.Paths(), nil
	}
	switch cfg.Loader {
	case "", LoaderSVG:
		return paths.FromSVG(r)
	case LoaderInstructions:
		return loadInstructions(r)
	}
	return nil, fmt.Errorf("unknown svg loader %q", cfg.Loader)
}

func (cfg *Config) read() (*paths.Paths, error) {
	if cfg.In == "-" {
		return cfg.load(cfg.stdin())
	}
	f, err := os.Open(cfg.In)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cfg.load(f)
}

// textScene converts clipped paths to a scene. Each edge of a path
// becomes a segment; the text format holds at most one polygon.
func textScene(ps *paths.Paths) (*paths.Scene, error) {
	if len(ps.Polygons) > 1 {
		return nil, fmt.Errorf("text output holds one polygon, have %d", len(ps.Polygons))
	}
	sc := &paths.Scene{Window: ps.Bounds}
	for _, p := range ps.P {
		for i := 1; i < len(p.V); i++ {
			sc.Segments = append(sc.Segments, paths.Segment{p.V[i-1], p.V[i]})
		}
	}
	if len(ps.Polygons) == 1 {
		sc.Polygon = ps.Polygons[0]
	}
	return sc, nil
}

func (cfg *Config) write(w io.Writer, ext string, orig, ps *paths.Paths) error {
	switch strings.ToLower(ext) {
	case ".svg":
		return ps.SVG(w)
	case ".png":
		return render.WritePNG(w, render.Layers{Window: ps.Bounds, Original: orig, Clipped: ps}, cfg.Preview)
	case ".txt":
		sc, err := textScene(ps)
		if err != nil {
			return err
		}
		return sc.WriteText(w)
	}
	return fmt.Errorf("unsupported output file type %q", ext)
}

// Convert reads the input, clips it to the window and writes the
// result.
func Convert(cfg *Config) error {
	if cfg.In == "" {
		return fmt.Errorf("input file must be specified")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output file must be specified")
	}

	ps, err := cfg.read()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.In, err)
	}
	if cfg.HasWindow {
		ps.Bounds = cfg.Window
	}
	orig := ps.Clone()
	ps.Clip(ps.Bounds)
	if cfg.Simplify > 0 {
		ps.Simplify(cfg.Simplify)
	}

	ext := filepath.Ext(cfg.Out)
	if cfg.Out == "-" {
		ext = "." + cfg.Format
		if cfg.Format == "" {
			ext = ".svg"
		}
		w := cfg.stdout()
		if strings.EqualFold(ext, ".png") && isTerminal(w) {
			return fmt.Errorf("refusing to write png to a terminal")
		}
		return cfg.write(w, ext, orig, ps)
	}

	// Nothing is written if rendering fails.
	var bb bytes.Buffer
	if err := cfg.write(&bb, ext, orig, ps); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Out, err)
	}
	if err := os.WriteFile(cfg.Out, bb.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Out, err)
	}
	return nil
}
