package gpu_test

import (
	"errors"
	"testing"

	"voxelstream/internal/gpu"
	"voxelstream/internal/gpu/gputest"
	"voxelstream/internal/meshing"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kr/pretty"
)

func quad(material world.BlockID) []meshing.Vertex {
	verts := make([]meshing.Vertex, 4)
	for i := range verts {
		verts[i] = meshing.NewVertex(mgl32.Vec3{float32(i), 0, 0}, [3]int8{0, 127, 0}, material)
	}
	return verts
}

func TestUploadCreatesThenReplaces(t *testing.T) {
	dev := gputest.NewDevice()
	m := gpu.NewResourceManager(dev)
	c := world.ChunkCoord{X: 1}

	if err := m.Upload(c, quad(world.BlockStone)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	first, ok := m.Get(c)
	if !ok {
		t.Fatalf("no buffer after upload")
	}
	if first.VertexCount != 6 {
		t.Fatalf("draw count = %d, want 6", first.VertexCount)
	}

	two := append(quad(world.BlockStone), quad(world.BlockDirt)...)
	if err := m.Upload(c, two); err != nil {
		t.Fatalf("re-upload: %v", err)
	}
	second, _ := m.Get(c)
	if second.Handle != first.Handle {
		t.Fatalf("re-upload allocated a new buffer: %d -> %d", first.Handle, second.Handle)
	}
	if second.VertexCount != 12 {
		t.Fatalf("draw count = %d, want 12", second.VertexCount)
	}
	if got := len(dev.Buffers[second.Handle]); got != 8*meshing.VertexSize {
		t.Fatalf("device holds %d bytes, want %d", got, 8*meshing.VertexSize)
	}
	if dev.Live() != 1 {
		t.Fatalf("live buffers = %d, want 1", dev.Live())
	}
}

func TestEmptyMeshStillCountsAsMeshed(t *testing.T) {
	m := gpu.NewResourceManager(gputest.NewDevice())
	c := world.ChunkCoord{}
	if err := m.Upload(c, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}
	buf, ok := m.Get(c)
	if !ok || buf.VertexCount != 0 {
		t.Fatalf("got %+v %v, want empty record", buf, ok)
	}
}

func TestCreateFailureLeavesNoRecord(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailCreate = 1
	m := gpu.NewResourceManager(dev)
	c := world.ChunkCoord{Z: -3}

	err := m.Upload(c, quad(world.BlockStone))
	if !errors.Is(err, gputest.ErrCreateFailed) {
		t.Fatalf("err = %v, want ErrCreateFailed", err)
	}
	if m.Has(c) || dev.Live() != 0 {
		t.Fatalf("failed upload left state behind: has=%v live=%d", m.Has(c), dev.Live())
	}
}

func TestUploadFailureFreesBuffer(t *testing.T) {
	dev := gputest.NewDevice()
	m := gpu.NewResourceManager(dev)
	c := world.ChunkCoord{Y: 2}

	if err := m.Upload(c, quad(world.BlockStone)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	dev.FailUpload = 1
	if err := m.Upload(c, quad(world.BlockDirt)); !errors.Is(err, gputest.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if m.Has(c) {
		t.Fatalf("chunk still has a buffer after failed replace")
	}
	if dev.Live() != 0 {
		t.Fatalf("live buffers = %d, want 0", dev.Live())
	}
	if err := m.Upload(c, quad(world.BlockDirt)); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestEvictKeepsClosest(t *testing.T) {
	dev := gputest.NewDevice()
	m := gpu.NewResourceManager(dev)
	for x := -3; x <= 3; x++ {
		if err := m.Upload(world.ChunkCoord{X: x}, quad(world.BlockStone)); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}

	observer := mgl32.Vec3{8 * world.ChunkSide, 0, 0}
	evicted := m.Evict(observer, 3)
	want := []world.ChunkCoord{{X: -3}, {X: -2}, {X: -1}, {X: 0}}
	if diff := pretty.Diff(evicted, want); len(diff) > 0 {
		t.Fatalf("evicted differs: %v", diff)
	}
	if m.Len() != 3 || dev.Live() != 3 {
		t.Fatalf("resident = %d live = %d, want 3", m.Len(), dev.Live())
	}
	for x := 1; x <= 3; x++ {
		if !m.Has(world.ChunkCoord{X: x}) {
			t.Fatalf("chunk %d evicted, should be among the closest", x)
		}
	}
}

func TestEvictUnderLimitIsNoop(t *testing.T) {
	m := gpu.NewResourceManager(gputest.NewDevice())
	for x := 0; x < 4; x++ {
		m.Upload(world.ChunkCoord{X: x}, nil)
	}
	if got := m.Evict(mgl32.Vec3{}, 4); len(got) != 0 {
		t.Fatalf("evicted %v at the limit", got)
	}
	if got := m.Evict(mgl32.Vec3{}, 0); len(got) != 4 {
		t.Fatalf("limit 0 evicted %d, want 4", len(got))
	}
}

func TestFreeAll(t *testing.T) {
	dev := gputest.NewDevice()
	m := gpu.NewResourceManager(dev)
	for x := 0; x < 5; x++ {
		m.Upload(world.ChunkCoord{X: x}, quad(world.BlockGrass))
	}
	m.FreeAll()
	if m.Len() != 0 || dev.Live() != 0 || len(dev.Freed) != 5 {
		t.Fatalf("after FreeAll: len=%d live=%d freed=%d", m.Len(), dev.Live(), len(dev.Freed))
	}
}
