package gpu

import (
	"fmt"
	"sort"

	"voxelstream/internal/meshing"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuffer is the device-resident mesh of one chunk.
type MeshBuffer struct {
	Handle BufferHandle
	// VertexCount is the number of indices to draw: quads × 6.
	VertexCount int
	Bytes       int
}

// ResourceManager owns one device buffer per meshed chunk. A chunk has a
// buffer only after a successful upload.
type ResourceManager struct {
	device  Device
	buffers map[world.ChunkCoord]*MeshBuffer
	scratch []byte

	uploadedBytes int64
}

// NewResourceManager creates a manager that allocates from device.
func NewResourceManager(device Device) *ResourceManager {
	return &ResourceManager{
		device:  device,
		buffers: make(map[world.ChunkCoord]*MeshBuffer),
	}
}

// Upload replaces the mesh of coord with verts, creating the buffer on first
// use. On failure the chunk is left without a buffer so it can be meshed
// again later.
func (m *ResourceManager) Upload(coord world.ChunkCoord, verts []meshing.Vertex) error {
	buf, existed := m.buffers[coord]
	if !existed {
		h, err := m.device.CreateBuffer()
		if err != nil {
			return fmt.Errorf("create buffer for chunk %v: %w", coord, err)
		}
		buf = &MeshBuffer{Handle: h}
	}

	m.scratch = meshing.AppendBytes(m.scratch[:0], verts)
	if err := m.device.UploadBuffer(buf.Handle, m.scratch); err != nil {
		// the previous contents are gone either way
		m.device.FreeBuffer(buf.Handle)
		delete(m.buffers, coord)
		return fmt.Errorf("upload mesh for chunk %v: %w", coord, err)
	}

	buf.VertexCount = meshing.DrawCount(verts)
	buf.Bytes = len(m.scratch)
	m.buffers[coord] = buf
	m.uploadedBytes += int64(len(m.scratch))
	return nil
}

// Get returns the buffer record of coord.
func (m *ResourceManager) Get(coord world.ChunkCoord) (MeshBuffer, bool) {
	buf, ok := m.buffers[coord]
	if !ok {
		return MeshBuffer{}, false
	}
	return *buf, true
}

// Has reports whether coord has a resident buffer.
func (m *ResourceManager) Has(coord world.ChunkCoord) bool {
	_, ok := m.buffers[coord]
	return ok
}

// Len returns the number of resident buffers.
func (m *ResourceManager) Len() int {
	return len(m.buffers)
}

// UploadedBytes returns the total number of bytes uploaded so far.
func (m *ResourceManager) UploadedBytes() int64 {
	return m.uploadedBytes
}

// Free releases the buffer of coord if it has one.
func (m *ResourceManager) Free(coord world.ChunkCoord) bool {
	buf, ok := m.buffers[coord]
	if !ok {
		return false
	}
	m.device.FreeBuffer(buf.Handle)
	delete(m.buffers, coord)
	return true
}

// FreeAll releases every resident buffer.
func (m *ResourceManager) FreeAll() {
	for coord := range m.buffers {
		m.Free(coord)
	}
}

type rankedChunk struct {
	coord    world.ChunkCoord
	distance float32
}

// Evict frees the buffers farthest from observer until at most limit remain
// and returns the evicted coordinates, farthest first.
func (m *ResourceManager) Evict(observer mgl32.Vec3, limit int) []world.ChunkCoord {
	excess := len(m.buffers) - max(limit, 0)
	if excess <= 0 {
		return nil
	}

	ranked := make([]rankedChunk, 0, len(m.buffers))
	for coord := range m.buffers {
		ranked = append(ranked, rankedChunk{coord: coord, distance: coord.DistanceTo(observer)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance > ranked[j].distance
		}
		return lessCoord(ranked[i].coord, ranked[j].coord)
	})

	evicted := make([]world.ChunkCoord, 0, excess)
	for _, rc := range ranked[:excess] {
		m.Free(rc.coord)
		evicted = append(evicted, rc.coord)
	}
	return evicted
}

// Each calls fn for every resident buffer in unspecified order.
func (m *ResourceManager) Each(fn func(world.ChunkCoord, MeshBuffer)) {
	for coord, buf := range m.buffers {
		fn(coord, *buf)
	}
}

func lessCoord(a, b world.ChunkCoord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
