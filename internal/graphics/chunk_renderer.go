package graphics

import (
	_ "embed"
	"fmt"

	"voxelstream/internal/gpu"
	"voxelstream/internal/meshing"
	"voxelstream/internal/profiling"
	"voxelstream/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/chunk.vert
	chunkVertexShader string
	//go:embed shaders/chunk.frag
	chunkFragmentShader string
)

// frustum test margin in blocks
const cullMargin = 1.0

// DrawFunc enumerates the chunks to draw, as streaming.Pipeline.Draw does.
type DrawFunc func(fn func(world.ChunkCoord, gpu.MeshBuffer))

// ChunkRenderer draws chunk meshes produced by the meshing package. All
// chunks share one element buffer holding the quad index pattern for the
// largest possible chunk mesh.
type ChunkRenderer struct {
	shader *Shader
	vao    uint32
	ebo    uint32

	LightDir mgl32.Vec3
	FogColor mgl32.Vec3
	FogStart float32
	FogEnd   float32

	Drawn  int
	Culled int
}

// NewChunkRenderer compiles the chunk program and builds the shared element
// buffer. It needs a current OpenGL context.
func NewChunkRenderer() (*ChunkRenderer, error) {
	shader, err := NewShader(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	r := &ChunkRenderer{
		shader:   shader,
		LightDir: mgl32.Vec3{0.3, 1.0, 0.3}.Normalize(),
		FogColor: mgl32.Vec3{0.62, 0.76, 0.95},
		FogStart: 96,
		FogEnd:   160,
	}

	indices := meshing.IndexPattern(meshing.MaxQuadsPerChunk)
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	for i := uint32(0); i < 4; i++ {
		gl.EnableVertexAttribArray(i)
	}
	gl.BindVertexArray(0)
	return r, nil
}

// SetFog sets the fog range to end at the render distance.
func (r *ChunkRenderer) SetFog(end float32) {
	r.FogEnd = max(end, 1)
	r.FogStart = r.FogEnd * 0.6
}

// Render draws every chunk that draw enumerates and that intersects the view
// frustum.
func (r *ChunkRenderer) Render(view, proj mgl32.Mat4, draw DrawFunc) {
	defer profiling.Track("render.Chunks")()

	r.Drawn, r.Culled = 0, 0
	frustum := NewFrustum(proj.Mul4(view))

	r.shader.Use()
	r.shader.SetMat4("proj", proj)
	r.shader.SetMat4("view", view)
	r.shader.SetVec3("lightDir", r.LightDir)
	r.shader.SetVec3("fogColor", r.FogColor)
	r.shader.SetFloat("fogStart", r.FogStart)
	r.shader.SetFloat("fogEnd", r.FogEnd)

	gl.BindVertexArray(r.vao)
	draw(func(coord world.ChunkCoord, buf gpu.MeshBuffer) {
		origin := coord.Origin()
		margin := mgl32.Vec3{cullMargin, cullMargin, cullMargin}
		side := float32(world.ChunkSide)
		lo := origin.Sub(margin)
		hi := origin.Add(mgl32.Vec3{side, side, side}).Add(margin)
		if !frustum.IntersectsAABB(lo, hi) {
			r.Culled++
			return
		}
		r.drawChunk(origin, buf)
		r.Drawn++
	})
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (r *ChunkRenderer) drawChunk(origin mgl32.Vec3, buf gpu.MeshBuffer) {
	const stride = meshing.VertexSize
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf.Handle))
	gl.VertexAttribPointerWithOffset(0, 2, gl.HALF_FLOAT, false, stride, 0)
	gl.VertexAttribPointerWithOffset(1, 1, gl.HALF_FLOAT, false, stride, 4)
	gl.VertexAttribIPointer(2, 1, gl.UNSIGNED_SHORT, stride, gl.PtrOffset(6))
	gl.VertexAttribPointerWithOffset(3, 3, gl.BYTE, true, stride, 8)

	r.shader.SetVec3("chunkOffset", origin)
	gl.DrawElements(gl.TRIANGLES, int32(buf.VertexCount), gl.UNSIGNED_INT, gl.PtrOffset(0))
}

// Dispose releases the program and the shared buffers.
func (r *ChunkRenderer) Dispose() {
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	r.shader.Delete()
}
