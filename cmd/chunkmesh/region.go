package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/meshio"
	"chunkmesh/internal/pick"
	"chunkmesh/internal/profiling"
	"chunkmesh/internal/world"
)

// loadChunk generates a chunk, makes it resident and queues its build along
// with the rebuilds of neighbors that had closed their seams against it.
func (e *Engine) loadChunk(c world.ChunkCoord) error {
	if e.Store.HasChunk(c) {
		return nil
	}
	ch := world.NewChunk(c.X, c.Z, e.Store.ChunkSize())
	e.Generator.PopulateChunk(ch)
	if !e.Store.AddChunk(ch) {
		return fmt.Errorf("chunk (%d,%d) could not be added", c.X, c.Z)
	}
	e.Scheduler.NeighborArrived(c)
	if !e.Scheduler.RequestBlocking(c) {
		return fmt.Errorf("chunk (%d,%d): worker pool stopped", c.X, c.Z)
	}
	return nil
}

// LoadRegion streams in every chunk of the region around (cx, cz) and waits
// for their meshes.
func (e *Engine) LoadRegion(ctx context.Context, cx, cz int) error {
	defer profiling.Track("region.Load")()
	cfg := e.Config
	cfg.Region.CenterX, cfg.Region.CenterZ = cx, cz
	for _, c := range cfg.RegionCoords() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.loadChunk(c); err != nil {
			return err
		}
	}
	return e.drain(ctx)
}

// Recenter evicts chunks beyond the evict radius of the new center, rebuilds
// the chunks left facing the gap, then loads the new region.
func (e *Engine) Recenter(ctx context.Context, cx, cz int) error {
	removed := e.Store.EvictFarChunks(cx, cz, e.Config.Region.EvictRadius)
	for _, c := range removed {
		e.Scheduler.ChunkRemoved(c)
	}
	if len(removed) > 0 {
		e.logger.Printf("evicted %d chunks around (%d,%d)", len(removed), cx, cz)
	}
	if err := e.drain(ctx); err != nil {
		return err
	}
	return e.LoadRegion(ctx, cx, cz)
}

// EditBorder drops a glass block onto the surface at the corner of the
// center chunk, which lies in the halo of its -X and -Z neighbors, and waits
// for the rebuilds.
func (e *Engine) EditBorder(ctx context.Context) error {
	size := e.Store.ChunkSize()
	x := e.Config.Region.CenterX * size.X
	z := e.Config.Region.CenterZ * size.Z
	top := float32(size.Y)
	hit := pick.Raycast(mgl32.Vec3{float32(x) + 0.5, top - 0.5, float32(z) + 0.5}, mgl32.Vec3{0, -1, 0}, 0, top, e.Store)
	if !hit.Hit {
		return fmt.Errorf("no surface below (%d,%d)", x, z)
	}
	p := hit.AdjacentPosition
	if p == hit.HitPosition {
		return fmt.Errorf("column (%d,%d) is full", x, z)
	}
	touched := e.Scheduler.SetBlock(p[0], p[1], p[2], e.Registry.Block("glass"))
	e.logger.Printf("edit at %v rebuilds %v", p, touched)
	return e.drain(ctx)
}

func (e *Engine) drain(ctx context.Context) error {
	if err := e.Scheduler.Drain(ctx); err != nil {
		return err
	}
	for _, c := range e.Scheduler.Published() {
		if ch := e.Store.GetChunk(c, false); ch != nil {
			ch.SetClean()
		}
	}
	return nil
}

// Report logs totals over the published meshes.
func (e *Engine) Report(label string, elapsed time.Duration) {
	var quads, thin, verts, awaiting int
	var build time.Duration
	published := e.Scheduler.Published()
	for _, c := range published {
		res, ok := e.Scheduler.Mesh(c)
		if !ok {
			continue
		}
		quads += res.Stats.Quads
		thin += res.Stats.ThinQuads
		build += res.Stats.Total
		awaiting += len(res.Awaiting)
		for _, p := range res.Mesh.Parts {
			verts += p.VertexCount()
		}
	}
	e.logger.Printf("%s: %d chunks in %sms (build %sms) quads=%d thin=%d verts=%d open_seams=%d stale=%d",
		label, len(published), profiling.FormatMs(elapsed), profiling.FormatMs(build),
		quads, thin, verts, awaiting, e.Scheduler.Stale())
}

// Dump writes every published mesh and, when light is computed, its light
// atlas into dir.
func (e *Engine) Dump(dir string) error {
	defer profiling.Track("region.Dump")()
	published := e.Scheduler.Published()
	for _, c := range published {
		res, ok := e.Scheduler.Mesh(c)
		if !ok {
			continue
		}
		if err := meshio.WriteMeshFile(filepath.Join(dir, meshio.MeshFileName(c)), res.Mesh); err != nil {
			return err
		}
		if !e.Config.Light.Compute {
			continue
		}
		buf, ok := e.Store.Snapshot(c)
		if !ok {
			continue
		}
		atlas := lighting.BuildAtlas(lighting.Compute(buf, e.Registry))
		if err := meshio.WriteAtlasFile(filepath.Join(dir, meshio.AtlasFileName(c)), atlas); err != nil {
			return err
		}
	}
	e.logger.Printf("dumped %d chunks to %s", len(published), dir)
	return nil
}
