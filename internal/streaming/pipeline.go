// Package streaming turns resident chunk data into device geometry around a
// moving observer.
//
// A Pipeline is driven from the control thread, once per frame. It owns the
// chunk store, the visibility sets, the in-flight mesh jobs and the device
// buffers; only the mesh workers and the generation workers run elsewhere,
// and they never touch any of that state.
package streaming

import (
	"voxelstream/internal/gpu"
	"voxelstream/internal/meshing"
	"voxelstream/internal/profiling"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// ChunkSource generates chunks that are not in the store yet.
type ChunkSource interface {
	RequestBox(center, radius world.ChunkCoord) int
	Drain(apply func(world.GeneratedChunk)) int
	Pending() int
	Close()
}

// Options configures a Pipeline.
type Options struct {
	// RenderDistance is the half-extent of the drawn box, in chunks per axis.
	RenderDistance world.ChunkCoord
	// EvictionLimit is the number of device buffers kept resident.
	EvictionLimit int
	// ReselectEvery runs eviction and selection every N frames.
	ReselectEvery int
	// RemeshOnNeighborLoad re-meshes chunks whose neighbour just arrived, so
	// seams left open by a missing neighbour get closed.
	RemeshOnNeighborLoad bool
}

// Stats is a point-in-time view of the pipeline.
type Stats struct {
	Frame          uint64
	Chunks         int
	Resident       int
	ShouldDraw     int
	NeedsMesh      int
	Unmeshed       int
	Parked         int
	Pending        int
	Generating     int
	LiveSnapshots  int64
	Evicted        int64
	UploadFailures int64
	UploadedBytes  int64
	MeshQueued     int
	MeshCompleted  int64
	MeshOverflow   int64
}

// Fields returns the stats as log fields.
func (s Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"frame":      s.Frame,
		"chunks":     s.Chunks,
		"resident":   s.Resident,
		"draw":       s.ShouldDraw,
		"needs_mesh": s.NeedsMesh,
		"unmeshed":   s.Unmeshed,
		"parked":     s.Parked,
		"pending":    s.Pending,
		"generating": s.Generating,
		"snapshots":  s.LiveSnapshots,
		"evicted":    s.Evicted,
		"upload_err": s.UploadFailures,
		"uploaded":   s.UploadedBytes,
		"mesh_queue": s.MeshQueued,
		"meshed":     s.MeshCompleted,
		"overflow":   s.MeshOverflow,
	}
}

// Pipeline is the per-world streaming context.
type Pipeline struct {
	opts Options
	log  logrus.FieldLogger

	store     *world.ChunkStore
	selector  *Selector
	scheduler *Scheduler
	buffers   *gpu.ResourceManager
	pool      *meshing.WorkerPool
	source    ChunkSource

	observer mgl32.Vec3
	frame    uint64

	evicted        int64
	uploadFailures int64
}

// New creates a pipeline over store. Buffers are allocated from device and
// mesh jobs run on pool; the pipeline shuts pool down in Shutdown.
func New(store *world.ChunkStore, device gpu.Device, pool *meshing.WorkerPool, opts Options, log logrus.FieldLogger) *Pipeline {
	if opts.ReselectEvery < 1 {
		opts.ReselectEvery = 1
	}
	log = log.WithField("component", "streaming")
	return &Pipeline{
		opts:      opts,
		log:       log,
		store:     store,
		selector:  NewSelector(),
		scheduler: NewScheduler(store, pool, log),
		buffers:   gpu.NewResourceManager(device),
		pool:      pool,
	}
}

// SetSource attaches a generator for chunks missing from the store. At each
// reselection it is asked for the render box plus one ring, so every drawn
// chunk eventually has all six neighbours.
func (p *Pipeline) SetSource(src ChunkSource) {
	p.source = src
}

// SetObserver updates the world-space observer position.
func (p *Pipeline) SetObserver(pos mgl32.Vec3) {
	p.observer = pos
}

// Observer returns the current observer position.
func (p *Pipeline) Observer() mgl32.Vec3 {
	return p.observer
}

// Store returns the chunk store.
func (p *Pipeline) Store() *world.ChunkStore {
	return p.store
}

// AddChunk inserts a new chunk and registers it for meshing.
func (p *Pipeline) AddChunk(coord world.ChunkCoord, blocks *world.BlockGrid) error {
	if _, err := p.store.Put(coord, blocks); err != nil {
		return err
	}
	p.selector.Discover(coord)

	if !p.opts.RemeshOnNeighborLoad {
		return nil
	}
	for _, f := range world.Faces {
		n := coord.Add(f.Offset())
		if p.buffers.Has(n) || p.scheduler.Pending(n) {
			p.markDirty(n)
		}
	}
	return nil
}

// SetBlock changes one block in world block coordinates and re-meshes every
// chunk whose surface can change.
func (p *Pipeline) SetBlock(x, y, z int, id world.BlockID) error {
	affected, err := p.store.SetBlock(x, y, z, id)
	if err != nil {
		return err
	}
	for _, c := range affected {
		p.markDirty(c)
	}
	return nil
}

func (p *Pipeline) markDirty(coord world.ChunkCoord) {
	if p.scheduler.MarkStale(coord) {
		return
	}
	p.selector.MarkDirty(coord)
}

// Frame advances the pipeline by one frame: it collects generated chunks,
// periodically evicts and reselects, applies finished meshes and submits
// the next batch. It never blocks on workers.
func (p *Pipeline) Frame() {
	defer profiling.Track("streaming.Frame")()

	if p.source != nil {
		p.drainGenerated()
	}
	if p.frame%uint64(p.opts.ReselectEvery) == 0 {
		p.Reselect()
	}
	p.frame++

	p.drainMeshes()
	p.submit()
}

// Reselect evicts distant buffers and then recomputes the visible set.
// Evicted chunks are meshed again only after they leave the render box and
// re-enter it.
func (p *Pipeline) Reselect() {
	p.evict()

	stop := profiling.Track("streaming.Select")
	queued := p.selector.Select(p.observer, p.opts.RenderDistance, p.store)
	stop()

	requested := 0
	if p.source != nil {
		ring := p.opts.RenderDistance.Add(world.ChunkCoord{X: 1, Y: 1, Z: 1})
		requested = p.source.RequestBox(world.ChunkCoordAt(p.observer), ring)
	}
	if queued > 0 || requested > 0 {
		p.log.WithFields(logrus.Fields{
			"queued":    queued,
			"requested": requested,
		}).Debug("Reselected chunks")
	}
}

func (p *Pipeline) evict() {
	defer profiling.Track("streaming.Evict")()

	evicted := p.buffers.Evict(p.observer, p.opts.EvictionLimit)
	for _, c := range evicted {
		p.selector.Hide(c)
		if p.scheduler.MarkDiscard(c) {
			continue
		}
		p.retire(c)
	}
	p.evicted += int64(len(evicted))
	if len(evicted) > 0 {
		p.log.WithField("count", len(evicted)).Debug("Evicted chunk buffers")
	}
}

// retire handles a chunk that lost its buffer. Inside the render box it is
// parked; outside it waits in unmeshed for the box to reach it again.
func (p *Pipeline) retire(coord world.ChunkCoord) {
	if inBox(coord, world.ChunkCoordAt(p.observer), p.opts.RenderDistance) {
		p.selector.Park(coord)
		return
	}
	p.selector.Requeue(coord)
}

func (p *Pipeline) drainGenerated() {
	defer profiling.Track("streaming.Generated")()

	p.source.Drain(func(g world.GeneratedChunk) {
		if err := p.AddChunk(g.Coord, g.Blocks); err != nil {
			p.log.WithError(err).WithField("chunk", g.Coord).Debug("Dropped generated chunk")
		}
	})
}

func (p *Pipeline) drainMeshes() {
	defer profiling.Track("streaming.Upload")()

	p.scheduler.DrainCompleted(func(res meshing.MeshResult, fate JobFate) {
		if fate == FateDiscard {
			p.retire(res.Coord)
			return
		}
		if err := p.buffers.Upload(res.Coord, res.Vertices); err != nil {
			p.uploadFailures++
			p.log.WithError(err).WithField("chunk", res.Coord).Warn("Mesh upload failed, will retry")
			p.selector.Requeue(res.Coord)
			return
		}
		if fate == FateStale {
			p.selector.MarkDirty(res.Coord)
		}
	})
}

func (p *Pipeline) submit() {
	defer profiling.Track("streaming.Submit")()

	batch := p.selector.TakeNeedsMesh(p.observer)
	for _, c := range p.scheduler.SubmitBatch(batch) {
		p.selector.Requeue(c)
	}
}

// Draw calls fn for every drawn chunk that has geometry.
func (p *Pipeline) Draw(fn func(world.ChunkCoord, gpu.MeshBuffer)) {
	p.selector.EachShouldDraw(func(c world.ChunkCoord) {
		buf, ok := p.buffers.Get(c)
		if !ok || buf.VertexCount == 0 {
			return
		}
		fn(c, buf)
	})
}

// Stats returns current counters.
func (p *Pipeline) Stats() Stats {
	draw, needs, unmeshed, parked := p.selector.Counts()
	pool := p.pool.Stats()
	s := Stats{
		Frame:          p.frame,
		Chunks:         p.store.Len(),
		Resident:       p.buffers.Len(),
		ShouldDraw:     draw,
		NeedsMesh:      needs,
		Unmeshed:       unmeshed,
		Parked:         parked,
		Pending:        p.scheduler.PendingLen(),
		LiveSnapshots:  p.scheduler.SnapshotStats().Live(),
		Evicted:        p.evicted,
		UploadFailures: p.uploadFailures,
		UploadedBytes:  p.buffers.UploadedBytes(),
		MeshQueued:     pool.Queued,
		MeshCompleted:  pool.Completed,
		MeshOverflow:   pool.Overflow,
	}
	if p.source != nil {
		s.Generating = p.source.Pending()
	}
	return s
}

// Shutdown stops the workers and frees every device buffer. It must run on
// the control thread.
func (p *Pipeline) Shutdown() {
	p.pool.Shutdown()
	if p.source != nil {
		p.source.Close()
	}
	p.buffers.FreeAll()
	p.log.WithFields(p.Stats().Fields()).Info("Streaming pipeline shut down")
}
