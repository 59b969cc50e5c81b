// Command chunkmesh generates a demo region, meshes it on a worker pool and
// reports build statistics. Meshes and light atlases can be dumped to disk.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/xlab/closer"

	"chunkmesh/internal/config"
	"chunkmesh/internal/profiling"
)

type runOptions struct {
	dumpDir string
	shift   int
	edit    bool
}

func main() {
	configPath := flag.String("config", "", "engine config file (YAML)")
	dumpDir := flag.String("dump", "", "directory for mesh dumps and light atlases (overrides dump_dir)")
	shift := flag.Int("shift", 0, "after meshing, move the region center this many chunks along +X")
	edit := flag.Bool("edit", false, "place a block on a chunk corner and rebuild the affected chunks")
	verbose := flag.Bool("v", false, "log every chunk build")
	flag.Parse()

	logger := newLogger(os.Stdout)
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if *verbose {
		cfg.LogBuilds = true
	}
	opts := runOptions{dumpDir: cfg.DumpDir, shift: *shift, edit: *edit}
	if *dumpDir != "" {
		opts.dumpDir = *dumpDir
	}

	engine, err := setupEngine(cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	logger.Printf("chunk %dx%dx%d scale %d, %d workers, region radius %d, light %v",
		cfg.ChunkSize[0], cfg.ChunkSize[1], cfg.ChunkSize[2], cfg.Scale, cfg.Workers, cfg.Region.Radius, cfg.Light.Compute)

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		engine.Shutdown()
		logger.Printf("profile: %s", profiling.TopN(8))
	})
	closer.Checked(func() error { return run(ctx, engine, opts) }, true)
	closer.Close()
}

func run(ctx context.Context, e *Engine, opts runOptions) error {
	cx, cz := e.Config.Region.CenterX, e.Config.Region.CenterZ

	start := time.Now()
	if err := e.LoadRegion(ctx, cx, cz); err != nil {
		return err
	}
	e.Report("region", time.Since(start))

	if opts.edit {
		start = time.Now()
		if err := e.EditBorder(ctx); err != nil {
			return err
		}
		e.Report("edit", time.Since(start))
	}

	if opts.shift != 0 {
		start = time.Now()
		if err := e.Recenter(ctx, cx+opts.shift, cz); err != nil {
			return err
		}
		e.Report("shift", time.Since(start))
	}

	if opts.dumpDir != "" {
		return e.Dump(opts.dumpDir)
	}
	return nil
}
