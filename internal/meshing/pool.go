package meshing

import (
	"context"
	"fmt"
	"sync"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/world"
)

// MeshJob represents a meshing job request
type MeshJob struct {
	Buf        *world.ChunkBuf
	Generation uint64
	// Light is used as is when set. Otherwise, with ComputeLight, the worker
	// derives a field from Buf and fills its ring from NeighborBorders.
	Light           *lighting.Field
	ComputeLight    bool
	NeighborBorders map[world.Face]*lighting.Borders
	// Result channel - will be sent the result when done
	ResultChan chan MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord           world.ChunkCoord
	Generation      uint64
	// NeighborBorders are the borders the light ring was filled from.
	NeighborBorders map[world.Face]*lighting.Borders
	Result          *BuildResult
	Error           error
}

// WorkerPool manages goroutines for mesh generation
type WorkerPool struct {
	mesher   *Mesher
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(mesher *Mesher, workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		mesher:   mesher,
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued. It returns
// false if the pool shut down first.
func (p *WorkerPool) SubmitJobBlocking(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := p.run(job)

			// Send result back
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) run(job MeshJob) MeshResult {
	res := MeshResult{Coord: job.Buf.Coord, Generation: job.Generation, NeighborBorders: job.NeighborBorders}
	light := job.Light
	if light == nil && job.ComputeLight {
		light = lighting.Compute(job.Buf, p.mesher.Registry())
		for face, nb := range job.NeighborBorders {
			if err := light.ApplyNeighborBorders(face, nb); err != nil {
				res.Error = fmt.Errorf("chunk (%d,%d): %w", job.Buf.Coord.X, job.Buf.Coord.Z, err)
				return res
			}
		}
	}
	res.Result, res.Error = p.mesher.Build(job.Buf, light)
	return res
}

// Shutdown stops the workers and waits for them to exit. Jobs still queued
// are dropped.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}
