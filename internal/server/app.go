package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type AppConfig struct {
	ConfigPath string
	Overrides  Overrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath: "configs/clipserver.json",
	}
}

func resolveSettings(cfg AppConfig) Settings {
	s := DefaultSettings()
	loaded, err := loadSettingsFromFile(cfg.ConfigPath, s)
	if err != nil {
		Logger().Warn("config: using defaults", "err", err)
	} else {
		s = loaded
	}
	return cfg.Overrides.apply(s)
}

// StartApp serves the clip service until ctx is cancelled, then shuts
// the server down, giving in-flight requests a few seconds to finish.
func StartApp(ctx context.Context, cfg AppConfig) error {
	s := resolveSettings(cfg)
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           NewHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	Logger().Info("starting clip server",
		"addr", s.Addr,
		"max_body_bytes", s.Limits.MaxBodyBytes,
		"max_segments", s.Limits.MaxSegments,
		"max_polygon_vertices", s.Limits.MaxPolygonVertices,
		"preview", fmt.Sprintf("%dx%d", s.Preview.Width, s.Preview.Height))

	select {
	case err := <-errc:
		return fmt.Errorf("clip server: %w", err)
	case <-ctx.Done():
	}

	Logger().Info("stopping clip server")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
