// Binary clipserver serves the rectangle clipping API over HTTP and
// websockets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/paulhankin/rectclip/internal/server"
)

func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("can't parse %q as size: want WxH", s)
	}
	wi, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, err
	}
	return wi, hi, nil
}

func main() {
	failf := func(s string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, s+"\n", args...)
		os.Exit(2)
	}

	addr := flag.String("addr", "", "address to listen on (e.g., 127.0.0.1:8080; default from config, else :8080)")
	configPath := flag.String("config", server.DefaultAppConfig().ConfigPath, "path to server config JSON")
	maxBody := flag.Int64("max-body", -1, "override maximum request body size in bytes")
	maxSegments := flag.Int("max-segments", -1, "override maximum number of segments per request")
	maxPolygon := flag.Int("max-polygon", -1, "override maximum number of polygon vertices per request")
	previewSize := flag.String("preview-size", "", "override preview image size, WxH")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		failf("bad -log-level: %v", err)
	}
	server.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath

	var overrides server.Overrides
	if *addr != "" {
		val := *addr
		overrides.Addr = &val
	}
	if *maxBody >= 0 {
		val := *maxBody
		overrides.MaxBodyBytes = &val
	}
	if *maxSegments >= 0 {
		val := *maxSegments
		overrides.MaxSegments = &val
	}
	if *maxPolygon >= 0 {
		val := *maxPolygon
		overrides.MaxPolygonVertices = &val
	}
	if *previewSize != "" {
		w, h, err := parseSize(*previewSize)
		if err != nil {
			failf("bad -preview-size: %v", err)
		}
		overrides.PreviewWidth = &w
		overrides.PreviewHeight = &h
	}
	cfg.Overrides = overrides

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.StartApp(ctx, cfg); err != nil {
		failf("%v", err)
	}
}
