package extmem

import (
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/extmem/driver"
	"github.com/vkngwrapper/arsenal/extmem/internal/utils"
)

// MappedBuffer is a read-only view of a range of ExternalMemory in the device's address space. It
// owns the ExternalMemory it was mapped from, along with a completion marker that device work reading
// the buffer records onto. Teardown orders the context's default stream behind that marker before
// freeing the mapping, so memory is never freed while a read may still be in flight.
//
// A MappedBuffer must be torn down with Close or Release.
type MappedBuffer struct {
	devicePtr driver.DevicePtr
	offset    int
	len       int
	memory    *ExternalMemory
	event     *Event
	stream    *Stream

	// Held for reading while a read is recorded, and for writing while the buffer is marked closed
	syncMutex utils.OptionalRWMutex
	closed    atomic.Bool
}

var _ DevicePtr = (*MappedBuffer)(nil)

func newMappedBuffer(memory *ExternalMemory, start, end int) (*MappedBuffer, error) {
	ctx := memory.ctx
	size := end - start

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := ctx.BindToThread()
	if err != nil {
		_ = memory.closeOwned(true)
		return nil, errors.Mark(errors.Wrap(err, "failed to bind context before mapping external memory"), ErrMappingFailed)
	}

	ptr, err := ctx.driver.ExternalMemoryGetMappedBuffer(memory.memory, uint64(start), uint64(size))
	if err != nil {
		_ = memory.closeOwned(true)
		return nil, errors.Mark(errors.Wrapf(err, "failed to map %d bytes of external memory at offset %d", size, start), ErrMappingFailed)
	}

	event, err := ctx.createEvent(driver.EventDisableTiming)
	if err != nil {
		ctx.RecordErr(errors.Wrap(ctx.driver.MemFree(ptr), "failed to free mapped buffer"))
		_ = memory.closeOwned(true)
		return nil, errors.Mark(errors.Wrap(err, "failed to create completion event for mapped buffer"), ErrMappingFailed)
	}

	buffer := &MappedBuffer{
		devicePtr: ptr,
		offset:    start,
		len:       size,
		memory:    memory,
		event:     event,
		stream:    ctx.DefaultStream(),
		syncMutex: utils.OptionalRWMutex{UseMutex: ctx.useMutex},
	}

	ctx.attachBuffer(memory, buffer)
	utils.DebugValidate(ctx)
	ctx.callbacks.Map(memory.memory, ptr, start, size)

	return buffer, nil
}

// Len returns the number of bytes in the buffer
func (b *MappedBuffer) Len() int { return b.len }

// Offset returns the offset into the ExternalMemory at which the buffer begins
func (b *MappedBuffer) Offset() int { return b.offset }

// Stream returns the stream that the buffer's teardown is ordered on. This is always the default
// stream of the owning Context.
func (b *MappedBuffer) Stream() *Stream { return b.stream }

// Memory returns the ExternalMemory this buffer was mapped from
func (b *MappedBuffer) Memory() *ExternalMemory { return b.memory }

// Context returns the Context that owns the buffer
func (b *MappedBuffer) Context() *Context { return b.memory.ctx }

// DevicePtr returns the device address of the buffer for work submitted to stream, along with an
// obligation to record the buffer's completion marker on stream once that work is submitted:
//
//	ptr, sync := buffer.DevicePtr(stream)
//	defer sync.Sync()
//
// Work reading the buffer without syncing may still be in flight when the buffer is freed.
func (b *MappedBuffer) DevicePtr(stream *Stream) (driver.DevicePtr, SyncOnDrop) {
	if b.closed.Load() {
		panic("attempted to read from a mapped buffer that has already been torn down")
	}
	if stream == nil {
		panic("attempted to read from a mapped buffer on a nil stream")
	}

	return b.devicePtr, SyncOnDrop{buffer: b, stream: stream}
}

func (b *MappedBuffer) recordRead(stream *Stream) {
	ctx := b.memory.ctx

	b.syncMutex.RLock()
	defer b.syncMutex.RUnlock()

	if b.closed.Load() {
		ctx.RecordErr(errors.Mark(
			errors.Newf("attempted to sync a read on stream %d after its mapped buffer was torn down", stream.handle),
			ErrBufferClosed,
		))
		return
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx.RecordErr(ctx.setCurrent())
	ctx.RecordErr(b.event.record(stream))
}

// markClosed waits out any read being recorded, so that every read synced before teardown is
// ordered ahead of it
func (b *MappedBuffer) markClosed() bool {
	b.syncMutex.Lock()
	defer b.syncMutex.Unlock()

	return b.closed.CompareAndSwap(false, true)
}

// Close tears down the buffer and the ExternalMemory that owns it, and returns any error that
// occurred along the way. Every teardown step is attempted even if an earlier one fails. Close is a
// no-op if the buffer has already been torn down.
func (b *MappedBuffer) Close() error {
	b.memory.ctx.logger.Debug("MappedBuffer::Close")

	if !b.markClosed() {
		return nil
	}

	err := b.unmap()
	return errors.CombineErrors(err, b.memory.closeOwned(false))
}

// Release tears down the buffer like Close, but records any error into the owning Context instead
// of returning it. It is intended to be deferred.
func (b *MappedBuffer) Release() {
	b.memory.ctx.logger.Debug("MappedBuffer::Release")

	if !b.markClosed() {
		return
	}

	b.memory.ctx.RecordErr(b.unmap())
	_ = b.memory.closeOwned(true)
}

func (b *MappedBuffer) unmap() error {
	ctx := b.memory.ctx

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := errors.Wrap(ctx.setCurrent(), "failed to bind context before unmapping")
	err = errors.CombineErrors(err, errors.Wrap(b.stream.wait(b.event), "failed to order stream behind mapped buffer reads"))

	if ctx.createFlags&ContextCreateBlockingTeardown != 0 {
		err = errors.CombineErrors(err, errors.Wrap(ctx.driver.EventSynchronize(b.event.handle), "failed to wait for mapped buffer reads"))
	}

	err = errors.CombineErrors(err, errors.Wrap(ctx.driver.MemFree(b.devicePtr), "failed to free mapped buffer"))
	err = errors.CombineErrors(err, errors.Wrap(ctx.driver.EventDestroy(b.event.handle), "failed to destroy completion event"))

	ctx.detachBuffer(b.memory)
	utils.DebugValidate(ctx)
	ctx.callbacks.Unmap(b.memory.memory, b.devicePtr, b.offset, b.len)

	return err
}
