package streaming

import (
	"voxelstream/internal/meshing"
	"voxelstream/internal/snapshot"
	"voxelstream/internal/world"

	"github.com/sirupsen/logrus"
)

// JobFate says what to do with a job's result once it drains.
type JobFate uint8

const (
	// FateCurrent results are uploaded.
	FateCurrent JobFate = iota
	// FateStale results are uploaded but the chunk changed after submission
	// and must be meshed again.
	FateStale
	// FateDiscard results are dropped; the chunk lost its buffer while the
	// job was running.
	FateDiscard
)

func (f JobFate) String() string {
	switch f {
	case FateCurrent:
		return "current"
	case FateStale:
		return "stale"
	case FateDiscard:
		return "discard"
	}
	return "unknown"
}

type pendingJob struct {
	result chan meshing.MeshResult
	fate   JobFate
}

// Scheduler launches mesh jobs and collects their results. It is owned by
// the control thread; workers only see the job inputs and the result
// channel.
type Scheduler struct {
	store   *world.ChunkStore
	pool    *meshing.WorkerPool
	pending map[world.ChunkCoord]*pendingJob
	stats   snapshot.Stats
	log     logrus.FieldLogger
}

func NewScheduler(store *world.ChunkStore, pool *meshing.WorkerPool, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		store:   store,
		pool:    pool,
		pending: make(map[world.ChunkCoord]*pendingJob),
		log:     log,
	}
}

// SubmitBatch launches one job per coordinate, all sharing one snapshot of
// the neighbours they need. Coordinates that already have a job in flight or
// no block data are skipped. The returned coordinates could not be handed to
// the pool and were not recorded as pending.
func (s *Scheduler) SubmitBatch(coords []world.ChunkCoord) (rejected []world.ChunkCoord) {
	if len(coords) == 0 {
		return nil
	}

	b := snapshot.NewBuilder(s.store, &s.stats)
	jobs := make([]meshing.MeshJob, 0, len(coords))
	for _, c := range coords {
		if _, busy := s.pending[c]; busy {
			continue
		}
		ch, ok := s.store.Get(c)
		if !ok {
			continue
		}
		jobs = append(jobs, meshing.MeshJob{
			Coord:     c,
			Chunk:     ch.CopyBlocks(),
			Neighbors: b.Acquire(c),
		})
	}
	copies := b.Copies()
	// every reference is taken before the first job can release one
	snap := b.Seal()

	for _, job := range jobs {
		result := make(chan meshing.MeshResult, 1)
		job.Release = snap.Release
		job.Result = result
		if !s.pool.Submit(job) {
			snap.Release()
			rejected = append(rejected, job.Coord)
			continue
		}
		s.pending[job.Coord] = &pendingJob{result: result}
	}

	s.log.WithFields(logrus.Fields{
		"jobs":      len(jobs),
		"neighbors": copies,
		"rejected":  len(rejected),
	}).Debug("Submitted mesh batch")
	return rejected
}

// DrainCompleted passes every finished job to apply without waiting on the
// ones still running, and returns how many finished.
func (s *Scheduler) DrainCompleted(apply func(res meshing.MeshResult, fate JobFate)) int {
	n := 0
	for c, job := range s.pending {
		select {
		case res := <-job.result:
			delete(s.pending, c)
			apply(res, job.fate)
			n++
		default:
		}
	}
	return n
}

// Pending reports whether coord has a job in flight.
func (s *Scheduler) Pending(coord world.ChunkCoord) bool {
	_, ok := s.pending[coord]
	return ok
}

// PendingLen returns the number of jobs in flight.
func (s *Scheduler) PendingLen() int {
	return len(s.pending)
}

// MarkStale flags the in-flight job of coord as outdated. It reports false
// if there is no such job.
func (s *Scheduler) MarkStale(coord world.ChunkCoord) bool {
	job, ok := s.pending[coord]
	if !ok {
		return false
	}
	if job.fate == FateCurrent {
		job.fate = FateStale
	}
	return true
}

// MarkDiscard flags the in-flight job of coord so its result is dropped.
func (s *Scheduler) MarkDiscard(coord world.ChunkCoord) bool {
	job, ok := s.pending[coord]
	if !ok {
		return false
	}
	job.fate = FateDiscard
	return true
}

// SnapshotStats returns the counters shared by all batch snapshots.
func (s *Scheduler) SnapshotStats() *snapshot.Stats {
	return &s.stats
}
