package extmem

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/extmem/driver"
	"github.com/vkngwrapper/arsenal/extmem/internal/utils"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"golang.org/x/exp/slog"
)

type memoryState uint32

const (
	memoryStateLive memoryState = iota
	memoryStateMapped
	memoryStateClosed
)

var memoryStateMapping = make(map[memoryState]string)

func (s memoryState) String() string {
	return memoryStateMapping[s]
}

func init() {
	memoryStateMapping[memoryStateLive] = "memoryStateLive"
	memoryStateMapping[memoryStateMapped] = "memoryStateMapped"
	memoryStateMapping[memoryStateClosed] = "memoryStateClosed"
}

// ImportOptions contains optional settings for ImportExternalMemory
type ImportOptions struct {
	// HandleType is the type of handle the Resource holds. If left empty, the Context's default
	// handle type is used.
	HandleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags
	// Name is an optional label reported in statistics and unreleased-memory logs
	Name string
	// UserData is optional consumer data that can be retrieved with ExternalMemory.UserData
	UserData any
}

// ExternalMemory is device-addressable memory imported from an OS resource. It owns the driver's
// imported memory object and, on platforms where importing does not transfer ownership to the
// driver, the Resource it was imported from.
//
// ExternalMemory can be mapped exactly once, with MapAll or MapRange. Mapping moves ownership into
// the returned MappedBuffer, and from then on the ExternalMemory is torn down with the buffer.
// ExternalMemory that is never mapped must be torn down with Close or Release.
type ExternalMemory struct {
	id         uint64
	memory     driver.ExternalMemory
	size       int
	handleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags
	ctx        *Context
	resource   ownedResource
	state      atomic.Uint32

	// Guarded by the registry mutex of ctx
	buffer   *MappedBuffer
	name     string
	userData any
}

// ImportExternalMemory imports size bytes of memory shared through resource. The Resource is always
// consumed: on success the returned ExternalMemory (or, for file descriptors, the driver) owns it,
// and on failure it is closed before returning.
//
// size must be the true size of the shared memory in bytes. It cannot be verified, and mapping
// beyond the real size of the memory is undefined behavior.
func (c *Context) ImportExternalMemory(resource Resource, size int, options ImportOptions) (*ExternalMemory, error) {
	c.logger.Debug("Context::ImportExternalMemory", slog.Int("size", size))

	if resource == nil {
		panic("attempted to import external memory from a nil resource")
	}
	if size < 0 {
		panic(fmt.Sprintf("attempted to import external memory with a negative size %d", size))
	}

	// Fails before consuming anything if the context has already been destroyed
	ctx := c.Retain()
	fail := func(err error) (*ExternalMemory, error) {
		err = errors.CombineErrors(err, resource.Close())
		return nil, errors.CombineErrors(err, ctx.Release())
	}

	handleType := options.HandleType
	if handleType == 0 {
		handleType = c.defaultHandleType
	}

	if !isSupportedHandleType(handleType) {
		err := errors.Mark(
			errors.Newf("cannot import external memory with handle type %s", handleType.String()),
			ErrUnsupportedHandleType,
		)
		return fail(errors.Mark(err, ErrImportFailed))
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := c.BindToThread()
	if err != nil {
		return fail(errors.Mark(errors.Wrap(err, "failed to bind context before importing external memory"), ErrImportFailed))
	}

	var memory driver.ExternalMemory
	switch handleType {
	case khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueFD:
		memory, err = c.driver.ImportExternalMemoryOpaqueFD(int(resource.Handle()), uint64(size))
	case khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueWin32:
		memory, err = c.driver.ImportExternalMemoryOpaqueWin32(resource.Handle(), uint64(size))
	}
	if err != nil {
		// The driver only takes ownership of a descriptor on success
		return fail(errors.Mark(errors.Wrapf(err, "failed to import %d bytes of external memory as %s", size, handleType.String()), ErrImportFailed))
	}

	mem := &ExternalMemory{
		memory:     memory,
		size:       size,
		handleType: handleType,
		ctx:        ctx,
		resource: ownedResource{
			resource: resource,
			release:  !importTransfersOwnership(handleType),
		},
		name:     options.Name,
		userData: options.UserData,
	}

	c.register(mem)
	utils.DebugValidate(c)
	c.callbacks.Import(memory, size)

	return mem, nil
}

func (m *ExternalMemory) Handle() driver.ExternalMemory { return m.memory }
func (m *ExternalMemory) Size() int                     { return m.size }
func (m *ExternalMemory) Context() *Context             { return m.ctx }
func (m *ExternalMemory) HandleType() khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags {
	return m.handleType
}

// IsMapped returns true if ownership of this memory has moved into a MappedBuffer that has not yet
// been torn down
func (m *ExternalMemory) IsMapped() bool {
	return memoryState(m.state.Load()) == memoryStateMapped
}

func (m *ExternalMemory) SetName(name string) {
	m.ctx.registryMutex.Lock()
	defer m.ctx.registryMutex.Unlock()

	m.name = name
}

func (m *ExternalMemory) Name() string {
	m.ctx.registryMutex.RLock()
	defer m.ctx.registryMutex.RUnlock()

	return m.name
}

func (m *ExternalMemory) SetUserData(userData any) {
	m.ctx.registryMutex.Lock()
	defer m.ctx.registryMutex.Unlock()

	m.userData = userData
}

func (m *ExternalMemory) UserData() any {
	m.ctx.registryMutex.RLock()
	defer m.ctx.registryMutex.RUnlock()

	return m.userData
}

// MapAll maps the whole of the external memory. See MapRange.
func (m *ExternalMemory) MapAll() (*MappedBuffer, error) {
	return m.MapRange(0, m.size)
}

// MapRange maps the bytes [start, end) of the external memory into the device's address space.
//
// Only one mapped buffer may be created from an ExternalMemory. This is stricter than the driver
// requires, but it means a mapping can never overlap another mapping of the same memory. Ownership
// of the ExternalMemory moves into the returned buffer. If mapping fails, the ExternalMemory is
// torn down as though Release had been called, and any teardown errors are recorded into the Context.
//
// MapRange panics if start or end lies outside the memory, if end is before start, or if the memory
// has already been mapped or closed.
func (m *ExternalMemory) MapRange(start, end int) (*MappedBuffer, error) {
	m.ctx.logger.Debug("ExternalMemory::MapRange", slog.Int("start", start), slog.Int("end", end))

	if start < 0 || start > m.size {
		panic(fmt.Sprintf("attempted to map external memory starting at offset %d, but the memory is %d bytes", start, m.size))
	}
	if end > m.size {
		panic(fmt.Sprintf("attempted to map external memory ending at offset %d, but the memory is %d bytes", end, m.size))
	}
	if end < start {
		panic(fmt.Sprintf("attempted to map external memory from offset %d to offset %d, which ends before it starts", start, end))
	}

	if !m.state.CompareAndSwap(uint32(memoryStateLive), uint32(memoryStateMapped)) {
		panic(fmt.Sprintf("attempted to map external memory that is in state %s", memoryState(m.state.Load()).String()))
	}

	return newMappedBuffer(m, start, end)
}

// Close tears down external memory that was never mapped and returns any error that occurred along
// the way. Close is a no-op once ownership has moved into a MappedBuffer, or if the memory has
// already been torn down.
func (m *ExternalMemory) Close() error {
	m.ctx.logger.Debug("ExternalMemory::Close")

	if !m.state.CompareAndSwap(uint32(memoryStateLive), uint32(memoryStateClosed)) {
		return nil
	}

	return m.teardown(false)
}

// Release tears down external memory like Close, but records any error into the owning Context
// instead of returning it. It is intended to be deferred.
func (m *ExternalMemory) Release() {
	m.ctx.logger.Debug("ExternalMemory::Release")

	if !m.state.CompareAndSwap(uint32(memoryStateLive), uint32(memoryStateClosed)) {
		return
	}

	_ = m.teardown(true)
}

// closeOwned tears down external memory whose ownership moved into a MappedBuffer
func (m *ExternalMemory) closeOwned(record bool) error {
	if !m.state.CompareAndSwap(uint32(memoryStateMapped), uint32(memoryStateClosed)) {
		panic(fmt.Sprintf("attempted to tear down mapped external memory that is in state %s", memoryState(m.state.Load()).String()))
	}

	return m.teardown(record)
}

func (m *ExternalMemory) teardown(record bool) error {
	ctx := m.ctx
	err := m.destroy()

	if record {
		ctx.RecordErr(err)
		err = nil
	}

	// The context goes last: this may have been its final holder
	releaseErr := ctx.Release()
	if releaseErr != nil && record {
		ctx.logger.LogAttrs(context.Background(), slog.LevelError,
			"failed to destroy context after its final external memory was released",
			slog.Any("error", releaseErr))
	} else if releaseErr != nil {
		err = errors.CombineErrors(err, errors.Wrap(releaseErr, "failed to destroy context"))
	}

	return err
}

func (m *ExternalMemory) destroy() error {
	ctx := m.ctx

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := errors.Wrap(ctx.setCurrent(), "failed to bind context before destroying external memory")
	err = errors.CombineErrors(err, errors.Wrap(ctx.driver.DestroyExternalMemory(m.memory), "failed to destroy external memory"))
	err = errors.CombineErrors(err, errors.Wrap(m.resource.teardown(), "failed to close external memory resource"))

	ctx.unregister(m)
	utils.DebugValidate(ctx)
	ctx.callbacks.Destroy(m.memory, m.size)

	return err
}
