package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"chunkmesh/internal/config"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
	"chunkmesh/pkg/blockmodel"
)

// Engine holds the initialized meshing components.
type Engine struct {
	Config    config.Config
	Registry  *registry.Registry
	Store     *world.ChunkStore
	Generator *world.Generator
	Mesher    *meshing.Mesher
	Pool      *meshing.WorkerPool
	Scheduler *meshing.Scheduler

	logger *log.Logger
}

func loadRegistry(cfg config.Config) (*registry.Registry, error) {
	if cfg.RegistryPath == "" {
		return registry.Default(), nil
	}
	root := cfg.ModelRoot
	if root == "" {
		root = filepath.Dir(cfg.RegistryPath)
	}
	return registry.Load(cfg.RegistryPath, blockmodel.NewLoader(root))
}

func setupEngine(cfg config.Config, logger *log.Logger) (*Engine, error) {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	opts := meshing.DefaultOptions()
	opts.Scale = cfg.Scale
	opts.Light = cfg.LightParams()
	if cfg.LogBuilds {
		opts.Logger = logger
	}
	mesher, err := meshing.NewMesher(reg, opts)
	if err != nil {
		return nil, err
	}

	store := world.NewChunkStore(cfg.Size())
	pool := meshing.NewWorkerPool(mesher, cfg.Workers, cfg.QueueSize)

	// every chunk may be rebuilt once per arriving neighbor, plus edits
	coords := cfg.RegionCoords()
	sched := meshing.NewScheduler(store, pool, meshing.SchedulerOptions{
		ComputeLight: cfg.Light.Compute,
		ResultBuffer: 5*len(coords) + cfg.QueueSize,
	})

	return &Engine{
		Config:    cfg,
		Registry:  reg,
		Store:     store,
		Generator: world.NewGenerator(cfg.Region.Seed, reg.DemoPalette()),
		Mesher:    mesher,
		Pool:      pool,
		Scheduler: sched,
		logger:    logger,
	}, nil
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[chunkmesh] ", log.LstdFlags|log.Lmicroseconds)
}

// Shutdown stops the worker pool.
func (e *Engine) Shutdown() {
	e.Pool.Shutdown()
}
