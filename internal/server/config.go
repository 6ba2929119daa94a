package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulhankin/rectclip/internal/render"
)

// Limits bounds the size of a single clip request.
type Limits struct {
	MaxBodyBytes       int64
	MaxSegments        int
	MaxPolygonVertices int
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes:       8 << 20,
		MaxSegments:        100000,
		MaxPolygonVertices: 100000,
	}
}

// SanitizeLimits replaces non-positive limits with the defaults.
func SanitizeLimits(l Limits) Limits {
	def := DefaultLimits()
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = def.MaxBodyBytes
	}
	if l.MaxSegments <= 0 {
		l.MaxSegments = def.MaxSegments
	}
	if l.MaxPolygonVertices <= 0 {
		l.MaxPolygonVertices = def.MaxPolygonVertices
	}
	return l
}

type limitsConfig struct {
	MaxBodyBytes       *int64 `json:"maxBodyBytes"`
	MaxSegments        *int   `json:"maxSegments"`
	MaxPolygonVertices *int   `json:"maxPolygonVertices"`
}

type previewConfig struct {
	Width  *int     `json:"width"`
	Height *int     `json:"height"`
	Margin *float64 `json:"margin"`
}

type fileConfig struct {
	Addr    *string        `json:"addr"`
	Limits  *limitsConfig  `json:"limits"`
	Preview *previewConfig `json:"preview"`
}

// Overrides are optional command-line settings. They win over the
// config file.
type Overrides struct {
	Addr               *string
	MaxBodyBytes       *int64
	MaxSegments        *int
	MaxPolygonVertices *int
	PreviewWidth       *int
	PreviewHeight      *int
}

// Settings is the resolved server configuration.
type Settings struct {
	Addr    string
	Limits  Limits
	Preview render.Options
}

func sanitizeSettings(s Settings) Settings {
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	s.Limits = SanitizeLimits(s.Limits)
	def := render.DefaultOptions()
	if s.Preview.Width <= 0 || s.Preview.Height <= 0 {
		s.Preview.Width, s.Preview.Height = def.Width, def.Height
	}
	if s.Preview.Margin < 0 {
		s.Preview.Margin = def.Margin
	}
	if 2*s.Preview.Margin >= float64(min(s.Preview.Width, s.Preview.Height)) {
		s.Preview.Margin = 0
	}
	return s
}

// DefaultSettings returns the settings used without a config file.
func DefaultSettings() Settings {
	return sanitizeSettings(Settings{Limits: DefaultLimits(), Preview: render.DefaultOptions()})
}

func mergeFileConfig(base Settings, cfg *fileConfig) Settings {
	if cfg == nil {
		return base
	}
	if cfg.Addr != nil {
		base.Addr = *cfg.Addr
	}
	if l := cfg.Limits; l != nil {
		if l.MaxBodyBytes != nil {
			base.Limits.MaxBodyBytes = *l.MaxBodyBytes
		}
		if l.MaxSegments != nil {
			base.Limits.MaxSegments = *l.MaxSegments
		}
		if l.MaxPolygonVertices != nil {
			base.Limits.MaxPolygonVertices = *l.MaxPolygonVertices
		}
	}
	if p := cfg.Preview; p != nil {
		if p.Width != nil {
			base.Preview.Width = *p.Width
		}
		if p.Height != nil {
			base.Preview.Height = *p.Height
		}
		if p.Margin != nil {
			base.Preview.Margin = *p.Margin
		}
	}
	return sanitizeSettings(base)
}

func (o Overrides) apply(base Settings) Settings {
	if o.Addr != nil {
		base.Addr = *o.Addr
	}
	if o.MaxBodyBytes != nil {
		base.Limits.MaxBodyBytes = *o.MaxBodyBytes
	}
	if o.MaxSegments != nil {
		base.Limits.MaxSegments = *o.MaxSegments
	}
	if o.MaxPolygonVertices != nil {
		base.Limits.MaxPolygonVertices = *o.MaxPolygonVertices
	}
	if o.PreviewWidth != nil {
		base.Preview.Width = *o.PreviewWidth
	}
	if o.PreviewHeight != nil {
		base.Preview.Height = *o.PreviewHeight
	}
	return sanitizeSettings(base)
}

// loadSettingsFromFile merges the JSON config at path into base. A
// missing file is not an error.
func loadSettingsFromFile(path string, base Settings) (Settings, error) {
	if path == "" {
		return sanitizeSettings(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return sanitizeSettings(base), nil
		}
		return sanitizeSettings(base), fmt.Errorf("read config %q: %w", cleanPath, err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return sanitizeSettings(base), fmt.Errorf("parse config %q: %w", cleanPath, err)
	}
	return mergeFileConfig(base, &cfg), nil
}
