package extmem

import (
	"github.com/vkngwrapper/arsenal/extmem/driver"
)

// DeviceSlice is a contiguous run of device memory of known length, ordered against a stream
type DeviceSlice interface {
	// Len returns the number of bytes in the slice
	Len() int
	// Stream returns the stream that the slice's teardown is ordered against
	Stream() *Stream
}

// DevicePtr is a DeviceSlice that can be read by device work. It exposes no way to write to the
// memory, so reads from any number of streams may run concurrently without a barrier.
type DevicePtr interface {
	DeviceSlice

	// DevicePtr returns the device address of the slice for use by work submitted to stream. The
	// returned SyncOnDrop must be synced once that work has been submitted.
	DevicePtr(stream *Stream) (driver.DevicePtr, SyncOnDrop)
}

// SyncOnDrop is the deferred synchronization obligation returned alongside a device address. Call
// Sync (usually with defer) after submitting the work that uses the address. The zero value is
// a no-op.
type SyncOnDrop struct {
	buffer *MappedBuffer
	stream *Stream
}

// Sync records the buffer's completion marker on the stream that used it. Errors cannot be returned
// from a deferred call, so they are recorded into the owning Context instead. Syncing after the
// buffer was torn down records an ErrBufferClosed error and makes no driver calls.
func (s SyncOnDrop) Sync() {
	if s.buffer == nil || s.stream == nil {
		return
	}

	s.buffer.recordRead(s.stream)
}
