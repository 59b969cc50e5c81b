package meshing

import (
	"context"
	"sort"
	"sync"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/world"
)

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	// ComputeLight makes workers derive a light field per build, with rings
	// filled from the neighbors' last published borders.
	ComputeLight bool
	// ResultBuffer is the capacity of the results channel.
	ResultBuffer int
}

// Scheduler issues chunk builds to a WorkerPool and publishes their results.
// Every chunk carries a generation counter; a result built from an older
// generation is discarded on collection, so edits made while a build is in
// flight are never lost. Chunks built with missing neighbors are noted and
// rebuilt when the neighbor arrives. With light, a chunk whose published
// borders change makes its published neighbors rebuild their rings.
type Scheduler struct {
	store    *world.ChunkStore
	pool     *WorkerPool
	opts     SchedulerOptions
	results  chan MeshResult
	snapshot func(world.ChunkCoord) (*world.ChunkBuf, bool)

	mu        sync.Mutex
	gens      map[world.ChunkCoord]uint64
	published map[world.ChunkCoord]*BuildResult
	// waiting maps a missing chunk to the chunks whose meshes assumed it absent
	waiting  map[world.ChunkCoord]map[world.ChunkCoord]struct{}
	retry    map[world.ChunkCoord]struct{}
	inFlight int
	stale    int
}

// NewScheduler returns a scheduler feeding pool from store.
func NewScheduler(store *world.ChunkStore, pool *WorkerPool, opts SchedulerOptions) *Scheduler {
	if opts.ResultBuffer < 1 {
		opts.ResultBuffer = 256
	}
	return &Scheduler{
		store:     store,
		pool:      pool,
		opts:      opts,
		results:   make(chan MeshResult, opts.ResultBuffer),
		snapshot:  store.Snapshot,
		gens:      make(map[world.ChunkCoord]uint64),
		published: make(map[world.ChunkCoord]*BuildResult),
		waiting:   make(map[world.ChunkCoord]map[world.ChunkCoord]struct{}),
		retry:     make(map[world.ChunkCoord]struct{}),
	}
}

// Results delivers finished builds; pass each one to Collect.
func (s *Scheduler) Results() <-chan MeshResult {
	return s.results
}

// Generation returns the current generation of a chunk.
func (s *Scheduler) Generation(coord world.ChunkCoord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[coord]
}

// Invalidate bumps a chunk's generation, making in-flight builds stale.
func (s *Scheduler) Invalidate(coord world.ChunkCoord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[coord]++
	return s.gens[coord]
}

// Request snapshots a chunk and queues a build without blocking. It returns
// false if the chunk is not resident or the queue is full.
func (s *Scheduler) Request(coord world.ChunkCoord) bool {
	return s.request(coord, false)
}

// RequestBlocking is Request that waits for queue space.
func (s *Scheduler) RequestBlocking(coord world.ChunkCoord) bool {
	return s.request(coord, true)
}

func (s *Scheduler) request(coord world.ChunkCoord, block bool) bool {
	// The generation is read before the snapshot: an edit landing in between
	// bumps it and the build is discarded, never published with old voxels.
	gen := s.Generation(coord)
	buf, ok := s.snapshot(coord)
	if !ok {
		return false
	}
	s.mu.Lock()
	job := MeshJob{
		Buf:          buf,
		Generation:   gen,
		ComputeLight: s.opts.ComputeLight,
		ResultChan:   s.results,
	}
	if s.opts.ComputeLight {
		job.NeighborBorders = s.neighborBordersLocked(coord)
	}
	s.inFlight++
	s.mu.Unlock()

	var submitted bool
	if block {
		submitted = s.pool.SubmitJobBlocking(job)
	} else {
		submitted = s.pool.SubmitJob(job)
	}
	if !submitted {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}
	return submitted
}

func (s *Scheduler) neighborBordersLocked(coord world.ChunkCoord) map[world.Face]*lighting.Borders {
	var out map[world.Face]*lighting.Borders
	for _, f := range world.SideFaces {
		b := s.bordersLocked(coord.Neighbor(f))
		if b == nil {
			continue
		}
		if out == nil {
			out = make(map[world.Face]*lighting.Borders, 4)
		}
		out[f] = b
	}
	return out
}

func (s *Scheduler) bordersLocked(coord world.ChunkCoord) *lighting.Borders {
	if res, ok := s.published[coord]; ok {
		return res.Borders
	}
	return nil
}

// ringOutdatedLocked reports whether a build read neighbor borders that are
// no longer the published ones.
func (s *Scheduler) ringOutdatedLocked(res MeshResult) bool {
	if !s.opts.ComputeLight {
		return false
	}
	for _, f := range world.SideFaces {
		if res.NeighborBorders[f] != s.bordersLocked(res.Coord.Neighbor(f)) {
			return true
		}
	}
	return false
}

// Collect publishes a finished build if its generation is still current.
// It reports whether the result was published; stale results are counted
// and dropped. Build errors of current results are returned. A build that
// assumed a neighbor absent which has arrived since is published and queued
// again, as is one whose light ring came from borders replaced since. When the
// published borders change, published lateral neighbors are rebuilt.
func (s *Scheduler) Collect(res MeshResult) (bool, error) {
	s.mu.Lock()
	s.inFlight--
	if res.Generation != s.gens[res.Coord] {
		s.stale++
		s.mu.Unlock()
		return false, nil
	}
	if res.Error != nil {
		s.mu.Unlock()
		return false, res.Error
	}
	prev, hadPrev := s.published[res.Coord]
	if hadPrev {
		for _, a := range prev.Awaiting {
			delete(s.waiting[a], res.Coord)
		}
	}
	var relight []world.ChunkCoord
	if s.opts.ComputeLight {
		if hadPrev && prev.Borders.Equal(res.Result.Borders) {
			// keep the pointer neighbors compare their rings against
			res.Result.Borders = prev.Borders
		} else {
			for _, f := range world.SideFaces {
				nc := res.Coord.Neighbor(f)
				if _, ok := s.published[nc]; ok {
					s.gens[nc]++
					relight = append(relight, nc)
				}
			}
		}
	}
	s.published[res.Coord] = res.Result
	rebuild := s.ringOutdatedLocked(res)
	for _, a := range res.Result.Awaiting {
		if s.store.HasChunk(a) {
			rebuild = true
			continue
		}
		w, ok := s.waiting[a]
		if !ok {
			w = make(map[world.ChunkCoord]struct{})
			s.waiting[a] = w
		}
		w[res.Coord] = struct{}{}
	}
	s.mu.Unlock()

	if rebuild {
		s.requestOrRetry(res.Coord)
	}
	for _, c := range relight {
		s.requestOrRetry(c)
	}
	return true, nil
}

// requestOrRetry queues a build without blocking, leaving it to Drain when
// the queue is full.
func (s *Scheduler) requestOrRetry(coord world.ChunkCoord) {
	if s.Request(coord) {
		return
	}
	if !s.store.HasChunk(coord) {
		return
	}
	s.mu.Lock()
	s.retry[coord] = struct{}{}
	s.mu.Unlock()
}

// Drain collects results until no build is in flight. Rebuilds that found
// the queue full are submitted once the workers are idle. It stops at the
// first build error or when ctx is done.
func (s *Scheduler) Drain(ctx context.Context) error {
	for {
		if s.InFlight() == 0 {
			retry := s.takeRetry()
			if len(retry) == 0 {
				return nil
			}
			for _, c := range retry {
				s.RequestBlocking(c)
			}
			continue
		}
		select {
		case res := <-s.results:
			if _, err := s.Collect(res); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scheduler) takeRetry() []world.ChunkCoord {
	s.mu.Lock()
	out := make([]world.ChunkCoord, 0, len(s.retry))
	for c := range s.retry {
		out = append(out, c)
	}
	clear(s.retry)
	s.mu.Unlock()
	sortCoords(out)
	return out
}

// NeighborArrived rebuilds every chunk whose published mesh was built
// without coord. Call it after coord became resident. It returns the chunks
// that were re-requested.
func (s *Scheduler) NeighborArrived(coord world.ChunkCoord) []world.ChunkCoord {
	s.mu.Lock()
	var waiters []world.ChunkCoord
	for w := range s.waiting[coord] {
		waiters = append(waiters, w)
		s.gens[w]++
	}
	delete(s.waiting, coord)
	s.mu.Unlock()

	sortCoords(waiters)
	var requested []world.ChunkCoord
	for _, w := range waiters {
		if s.RequestBlocking(w) {
			requested = append(requested, w)
		}
	}
	return requested
}

// ChunkRemoved forgets a chunk's mesh and rebuilds its resident lateral
// neighbors, which now have to close the seam themselves.
func (s *Scheduler) ChunkRemoved(coord world.ChunkCoord) []world.ChunkCoord {
	s.mu.Lock()
	if prev, ok := s.published[coord]; ok {
		for _, a := range prev.Awaiting {
			delete(s.waiting[a], coord)
		}
	}
	delete(s.published, coord)
	s.gens[coord]++
	s.mu.Unlock()

	var requested []world.ChunkCoord
	for _, f := range world.SideFaces {
		nc := coord.Neighbor(f)
		if !s.store.HasChunk(nc) {
			continue
		}
		s.Invalidate(nc)
		if s.RequestBlocking(nc) {
			requested = append(requested, nc)
		}
	}
	return requested
}

// SetBlock edits the store and rebuilds every chunk whose mesh depends on
// the cell. It returns the affected chunks.
func (s *Scheduler) SetBlock(x, y, z int, b world.Block) []world.ChunkCoord {
	touched := s.store.Set(x, y, z, b)
	for _, c := range touched {
		s.Invalidate(c)
		s.RequestBlocking(c)
	}
	return touched
}

// Mesh returns the last published build of a chunk.
func (s *Scheduler) Mesh(coord world.ChunkCoord) (*BuildResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.published[coord]
	return res, ok
}

// Published lists chunks with a published mesh, ordered by z then x.
func (s *Scheduler) Published() []world.ChunkCoord {
	s.mu.Lock()
	out := make([]world.ChunkCoord, 0, len(s.published))
	for c := range s.published {
		out = append(out, c)
	}
	s.mu.Unlock()
	sortCoords(out)
	return out
}

// InFlight returns the number of builds submitted but not yet collected.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Stale returns how many results were discarded as outdated.
func (s *Scheduler) Stale() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

func sortCoords(cs []world.ChunkCoord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Z != cs[j].Z {
			return cs[i].Z < cs[j].Z
		}
		return cs[i].X < cs[j].X
	})
}
