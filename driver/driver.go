package driver

//go:generate mockgen -source driver.go -destination ./mocks/driver.go -package mocks

// Context is the driver's opaque identifier for a compute context
type Context uintptr

// ExternalMemory is the driver's opaque identifier for an imported external memory object
type ExternalMemory uintptr

// DevicePtr is an address in a device's address space
type DevicePtr uint64

// Stream is the driver's opaque identifier for an ordered asynchronous work queue. The zero
// value is the context's default stream.
type Stream uintptr

// Event is the driver's opaque identifier for a completion marker
type Event uintptr

// Driver is the set of primitive driver calls that external memory management is built on. Every
// call is fallible and, apart from CtxSetCurrent, requires the calling OS thread to have the owning
// context bound as current.
type Driver interface {
	// CtxSetCurrent binds ctx to the calling OS thread
	CtxSetCurrent(ctx Context) error
	// CtxDestroy tears down ctx. It is called once, after the last holder of the context releases it.
	CtxDestroy(ctx Context) error

	// ImportExternalMemoryOpaqueFD imports size bytes of memory shared through a POSIX file descriptor.
	// On success, ownership of fd passes to the driver.
	ImportExternalMemoryOpaqueFD(fd int, size uint64) (ExternalMemory, error)
	// ImportExternalMemoryOpaqueWin32 imports size bytes of memory shared through a Win32 handle.
	// Ownership of the handle stays with the caller.
	ImportExternalMemoryOpaqueWin32(handle uintptr, size uint64) (ExternalMemory, error)
	// ExternalMemoryGetMappedBuffer maps size bytes of mem, starting at offset, into device memory
	ExternalMemoryGetMappedBuffer(mem ExternalMemory, offset uint64, size uint64) (DevicePtr, error)
	// DestroyExternalMemory destroys an imported external memory object. Any mapped buffers must
	// already have been freed.
	DestroyExternalMemory(mem ExternalMemory) error
	// MemFree frees device memory, including buffers mapped from external memory
	MemFree(ptr DevicePtr) error

	StreamCreate(flags StreamFlags) (Stream, error)
	// StreamWaitEvent makes all future work submitted to stream wait until event completes. It does
	// not block the caller.
	StreamWaitEvent(stream Stream, event Event) error
	StreamSynchronize(stream Stream) error
	StreamDestroy(stream Stream) error

	EventCreate(flags EventFlags) (Event, error)
	// EventRecord captures the contents of stream at the time of the call into event
	EventRecord(event Event, stream Stream) error
	EventSynchronize(event Event) error
	EventDestroy(event Event) error
}
