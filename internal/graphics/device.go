package graphics

import (
	"errors"
	"fmt"
	"unsafe"

	"voxelstream/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLDevice allocates chunk vertex buffers on the current OpenGL context.
// Its methods must be called on the thread that owns the context.
type GLDevice struct{}

var _ gpu.Device = GLDevice{}

func (GLDevice) CreateBuffer() (gpu.BufferHandle, error) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return 0, errors.New("glGenBuffers returned no buffer")
	}
	return gpu.BufferHandle(vbo), nil
}

func (GLDevice) UploadBuffer(h gpu.BufferHandle, data []byte) error {
	clearErrors()

	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(h))
	gl.BufferData(gl.ARRAY_BUFFER, len(data), ptr, gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glBufferData %d bytes: error 0x%x", len(data), code)
	}
	return nil
}

func (GLDevice) FreeBuffer(h gpu.BufferHandle) {
	vbo := uint32(h)
	gl.DeleteBuffers(1, &vbo)
}

func clearErrors() {
	for i := 0; i < 8 && gl.GetError() != gl.NO_ERROR; i++ {
	}
}
