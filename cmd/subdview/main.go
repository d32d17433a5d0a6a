// subdview is an interactive wireframe viewer for Catmull-Clark
// subdivision surfaces.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/meshkit/subdiv/internal/config"
	"github.com/meshkit/subdiv/internal/logger"
	"github.com/meshkit/subdiv/internal/parallel"
	"github.com/meshkit/subdiv/internal/viewer"
	"github.com/meshkit/subdiv/pkg/formats"
	"github.com/meshkit/subdiv/pkg/subd"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: subdview [options] <mesh.obj|mesh.ccm>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	logger.Info("=== subdview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	m, err := formats.LoadCage(path)
	if err != nil {
		logger.Error("failed to load mesh", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("cage loaded",
		zap.String("path", path),
		zap.Int32("vertices", m.VertexCount()),
		zap.Int32("faces", m.FaceCount()))

	if cfg.Subdivision.Workers > 0 {
		parallel.SetWorkers(cfg.Subdivision.Workers)
	}

	depth := int32(cfg.Subdivision.MaxDepth)
	if depth < 1 {
		depth = 1
	}
	s := subd.New(m, depth)
	start := time.Now()
	s.Refine()
	logger.Info("refined",
		zap.Int32("depth", depth),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("workers", parallel.Workers()))

	app, err := viewer.NewApp(viewer.Config{
		Title:      "subdview - " + filepath.Base(path),
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	}, s, cfg.Viewer.ShowCage)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
