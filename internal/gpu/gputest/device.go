// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"errors"

	"voxelstream/internal/gpu"
)

var (
	ErrCreateFailed = errors.New("gputest: create failed")
	ErrUploadFailed = errors.New("gputest: upload failed")
)

// Device records buffer contents in memory. FailCreate and FailUpload make
// the next N calls of each kind fail.
type Device struct {
	Buffers map[gpu.BufferHandle][]byte
	Freed   []gpu.BufferHandle

	FailCreate int
	FailUpload int

	next gpu.BufferHandle
}

// NewDevice creates an empty fake device.
func NewDevice() *Device {
	return &Device{Buffers: make(map[gpu.BufferHandle][]byte)}
}

func (d *Device) CreateBuffer() (gpu.BufferHandle, error) {
	if d.FailCreate > 0 {
		d.FailCreate--
		return 0, ErrCreateFailed
	}
	d.next++
	d.Buffers[d.next] = nil
	return d.next, nil
}

func (d *Device) UploadBuffer(h gpu.BufferHandle, data []byte) error {
	if _, ok := d.Buffers[h]; !ok {
		return errors.New("gputest: upload to unknown buffer")
	}
	if d.FailUpload > 0 {
		d.FailUpload--
		return ErrUploadFailed
	}
	d.Buffers[h] = append([]byte(nil), data...)
	return nil
}

func (d *Device) FreeBuffer(h gpu.BufferHandle) {
	if _, ok := d.Buffers[h]; !ok {
		panic("gputest: double free")
	}
	delete(d.Buffers, h)
	d.Freed = append(d.Freed, h)
}

// Live returns the number of allocated buffers.
func (d *Device) Live() int {
	return len(d.Buffers)
}
