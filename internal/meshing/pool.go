package meshing

import (
	"context"
	"sync"

	"voxelstream/internal/world"

	"go.uber.org/atomic"
)

// MeshJob is one chunk meshing request. Every input is detached from the
// chunk store before submission, so the worker only reads immutable data.
type MeshJob struct {
	Coord     world.ChunkCoord
	Chunk     *world.BlockGrid
	Neighbors Neighbors
	// Release is called once the vertex list has been built, before the
	// result is published.
	Release func()
	// Result receives exactly one MeshResult. It must have room for it so the
	// worker never blocks on the consumer.
	Result chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord    world.ChunkCoord
	Vertices []Vertex
}

// WorkerPool manages goroutines for mesh generation. Submissions never fail
// while the pool is running: when the queue is full the job runs on an
// overflow goroutine, so the number of in-flight jobs is unbounded.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	closed    atomic.Bool
	submitted atomic.Int64
	completed atomic.Int64
	overflow  atomic.Int64
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, queueSize),
		workers:  max(workers, 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// Submit hands a job to the pool. It returns false only after Shutdown.
func (p *WorkerPool) Submit(job MeshJob) bool {
	if p.closed.Load() {
		return false
	}
	p.submitted.Inc()
	select {
	case p.jobQueue <- job:
	default:
		p.overflow.Inc()
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(job)
		}()
	}
	return true
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			p.run(job)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) run(job MeshJob) {
	verts := Mesh(job.Chunk, job.Neighbors)
	if job.Release != nil {
		job.Release()
	}
	p.completed.Inc()
	job.Result <- MeshResult{Coord: job.Coord, Vertices: verts}
}

// Shutdown stops the workers and waits for running jobs. Jobs still queued
// are dropped without running.
func (p *WorkerPool) Shutdown() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.cancel()
	p.wg.Wait()
}

// PoolStats is a point-in-time view of pool counters.
type PoolStats struct {
	Workers   int
	Queued    int
	Submitted int64
	Completed int64
	Overflow  int64
}

// Stats returns the pool counters.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Queued:    len(p.jobQueue),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Overflow:  p.overflow.Load(),
	}
}
