package streaming

import (
	"sort"

	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Presence reports whether a chunk has block data.
type Presence interface {
	Has(coord world.ChunkCoord) bool
}

type coordSet map[world.ChunkCoord]struct{}

func (s coordSet) add(c world.ChunkCoord) { s[c] = struct{}{} }

func (s coordSet) has(c world.ChunkCoord) bool {
	_, ok := s[c]
	return ok
}

// Selector tracks which chunks are drawn and which still need a mesh.
//
// Every chunk in the store is in at most one of four states: unmeshed
// (known, no mesh requested), needsMesh (selected for the next batch),
// handed to the scheduler, or parked (evicted while still in range). A
// parked chunk stays out of the drawn set until it leaves the box, and is
// only meshed again once it comes back. shouldDraw is recomputed on every
// Select.
type Selector struct {
	shouldDraw coordSet
	needsMesh  coordSet
	unmeshed   coordSet
	parked     coordSet
}

func NewSelector() *Selector {
	return &Selector{
		shouldDraw: make(coordSet),
		needsMesh:  make(coordSet),
		unmeshed:   make(coordSet),
		parked:     make(coordSet),
	}
}

// Discover registers a chunk that just entered the store.
func (s *Selector) Discover(coord world.ChunkCoord) {
	if s.needsMesh.has(coord) {
		return
	}
	s.unmeshed.add(coord)
}

// Requeue returns coord to the unmeshed state so that the next selection
// that covers it requests a new mesh.
func (s *Selector) Requeue(coord world.ChunkCoord) {
	delete(s.needsMesh, coord)
	delete(s.parked, coord)
	s.unmeshed.add(coord)
}

// Park takes an evicted chunk that is still inside the box out of every
// set. Select releases it to unmeshed once the box no longer covers it.
func (s *Selector) Park(coord world.ChunkCoord) {
	delete(s.shouldDraw, coord)
	delete(s.needsMesh, coord)
	delete(s.unmeshed, coord)
	s.parked.add(coord)
}

// MarkDirty asks for a new mesh of coord. A chunk that is currently drawn is
// queued for the next batch directly; anything else waits for selection.
// Parked chunks are left alone and pick up the change when they re-enter.
func (s *Selector) MarkDirty(coord world.ChunkCoord) {
	if s.needsMesh.has(coord) || s.parked.has(coord) {
		return
	}
	if s.shouldDraw.has(coord) {
		delete(s.unmeshed, coord)
		s.needsMesh.add(coord)
		return
	}
	s.unmeshed.add(coord)
}

// Select recomputes shouldDraw for the box of radius chunks around the
// observer's chunk and moves unmeshed chunks inside it to needsMesh.
// Coordinates without block data are skipped, and parked chunks that fell
// outside the box become unmeshed. It returns the number of chunks newly
// queued for meshing.
func (s *Selector) Select(observer mgl32.Vec3, radius world.ChunkCoord, store Presence) int {
	center := world.ChunkCoordAt(observer)
	clear(s.shouldDraw)
	for c := range s.parked {
		if !inBox(c, center, radius) {
			delete(s.parked, c)
			s.unmeshed.add(c)
		}
	}

	queued := 0
	for dz := -radius.Z; dz <= radius.Z; dz++ {
		for dy := -radius.Y; dy <= radius.Y; dy++ {
			for dx := -radius.X; dx <= radius.X; dx++ {
				c := center.Add(world.ChunkCoord{X: dx, Y: dy, Z: dz})
				if !store.Has(c) || s.parked.has(c) {
					continue
				}
				if s.unmeshed.has(c) {
					delete(s.unmeshed, c)
					s.needsMesh.add(c)
					queued++
				}
				s.shouldDraw.add(c)
			}
		}
	}
	return queued
}

// TakeNeedsMesh empties needsMesh and returns its coordinates, nearest to
// observer first.
func (s *Selector) TakeNeedsMesh(observer mgl32.Vec3) []world.ChunkCoord {
	if len(s.needsMesh) == 0 {
		return nil
	}
	out := make([]world.ChunkCoord, 0, len(s.needsMesh))
	for c := range s.needsMesh {
		out = append(out, c)
	}
	clear(s.needsMesh)
	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceTo(observer) < out[j].DistanceTo(observer)
	})
	return out
}

// Hide removes coord from shouldDraw.
func (s *Selector) Hide(coord world.ChunkCoord) {
	delete(s.shouldDraw, coord)
}

func (s *Selector) ShouldDraw(coord world.ChunkCoord) bool { return s.shouldDraw.has(coord) }
func (s *Selector) NeedsMesh(coord world.ChunkCoord) bool  { return s.needsMesh.has(coord) }
func (s *Selector) Unmeshed(coord world.ChunkCoord) bool   { return s.unmeshed.has(coord) }
func (s *Selector) Parked(coord world.ChunkCoord) bool     { return s.parked.has(coord) }

// EachShouldDraw calls fn for every drawn coordinate in unspecified order.
func (s *Selector) EachShouldDraw(fn func(world.ChunkCoord)) {
	for c := range s.shouldDraw {
		fn(c)
	}
}

// Counts returns the sizes of shouldDraw, needsMesh, unmeshed and parked.
func (s *Selector) Counts() (shouldDraw, needsMesh, unmeshed, parked int) {
	return len(s.shouldDraw), len(s.needsMesh), len(s.unmeshed), len(s.parked)
}

// inBox reports whether c lies in the box of radius chunks around center.
func inBox(c, center, radius world.ChunkCoord) bool {
	return abs(c.X-center.X) <= radius.X &&
		abs(c.Y-center.Y) <= radius.Y &&
		abs(c.Z-center.Z) <= radius.Z
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
