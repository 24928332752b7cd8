package gpu

// BufferHandle is an opaque device buffer name.
type BufferHandle uint32

// Device is the subset of the graphics device used for chunk geometry. Device
// contexts are bound to one thread, so every call must come from the control
// thread.
type Device interface {
	CreateBuffer() (BufferHandle, error)
	// UploadBuffer replaces the full contents of the buffer with data.
	UploadBuffer(h BufferHandle, data []byte) error
	FreeBuffer(h BufferHandle)
}
