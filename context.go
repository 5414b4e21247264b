package extmem

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/extmem/driver"
	"github.com/vkngwrapper/arsenal/extmem/internal/utils"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"golang.org/x/exp/slog"
)

// Context is a shared, reference-counted owner of a driver context. External memory imported through
// a Context holds a reference to it, so the driver context outlives every ExternalMemory and
// MappedBuffer created from it regardless of the order in which they are released.
//
// A Context also acts as the sink for errors that occur during teardown. Release methods cannot
// report failure to their caller, so they record it here; the next call to CheckErr or BindToThread
// reports it.
type Context struct {
	useMutex          bool
	logger            *slog.Logger
	driver            driver.Driver
	handle            driver.Context
	createFlags       CreateFlags
	defaultHandleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags
	callbacks         *memoryCallbacks

	refCount atomic.Int32

	errMutex    utils.OptionalMutex
	deferredErr error

	defaultStream *Stream

	registryMutex utils.OptionalRWMutex
	nextID        uint64
	registry      *swiss.Map[uint64, *ExternalMemory]

	importCount  atomic.Int32
	importBytes  atomic.Int64
	mappingCount atomic.Int32
	mappingBytes atomic.Int64
}

// Handle returns the driver context this Context binds
func (c *Context) Handle() driver.Context { return c.handle }

// Driver returns the driver primitives this Context operates with
func (c *Context) Driver() driver.Driver { return c.driver }

// DefaultHandleType returns the handle type ImportExternalMemory uses when none is requested
func (c *Context) DefaultHandleType() khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags {
	return c.defaultHandleType
}

// Retain adds a holder to the Context and returns it. Each call must be balanced by a call to Release.
func (c *Context) Retain() *Context {
	for {
		count := c.refCount.Load()
		if count <= 0 {
			panic("attempted to retain a context that has already been destroyed")
		}
		if c.refCount.CompareAndSwap(count, count+1) {
			return c
		}
	}
}

// Release removes a holder from the Context. When the last holder releases it, any live external
// memory is logged as unreleased and the driver context is destroyed.
func (c *Context) Release() error {
	remaining := c.refCount.Add(-1)
	if remaining < 0 {
		panic("context reference count went negative")
	}
	if remaining > 0 {
		return nil
	}

	return c.destroy()
}

func (c *Context) destroy() error {
	c.logger.Debug("Context::destroy")

	c.registryMutex.RLock()
	if c.registry.Count() > 0 {
		c.registry.Iter(func(id uint64, mem *ExternalMemory) bool {
			c.logUnreleasedMemory(mem)
			return false
		})
	}
	c.registryMutex.RUnlock()

	if err := c.CheckErr(); err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelError,
			"deferred teardown error was never reported before the context was destroyed",
			slog.Any("error", err))
	}

	return c.driver.CtxDestroy(c.handle)
}

// logUnreleasedMemory must be called with the registry mutex held
func (c *Context) logUnreleasedMemory(mem *ExternalMemory) {
	name := mem.name
	if name == "" {
		name = "empty"
	}

	c.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] external memory was not released",
		slog.Int("size", mem.size),
		slog.String("handleType", mem.handleType.String()),
		slog.Bool("mapped", mem.IsMapped()),
		slog.Any("userData", mem.userData),
		slog.String("name", name),
	)
}

// BindToThread makes this Context current on the calling OS thread. If an error was recorded by an
// earlier teardown, that error is returned (and cleared) instead, so that it surfaces at the next
// fallible operation on the Context.
//
// Goroutines migrate between OS threads, so callers must hold runtime.LockOSThread from the call to
// BindToThread until their last driver call.
func (c *Context) BindToThread() error {
	if err := c.CheckErr(); err != nil {
		return err
	}

	return c.setCurrent()
}

func (c *Context) setCurrent() error {
	return c.driver.CtxSetCurrent(c.handle)
}

// RecordErr stores err in the Context's deferred error slot. Nil errors are ignored, and errors
// recorded before the slot is checked are combined rather than overwritten.
func (c *Context) RecordErr(err error) {
	if err == nil {
		return
	}

	c.logger.LogAttrs(context.Background(), slog.LevelWarn, "recorded deferred teardown error", slog.Any("error", err))

	if !errors.Is(err, ErrDeferredTeardown) {
		err = errors.Mark(err, ErrDeferredTeardown)
	}

	c.errMutex.Lock()
	defer c.errMutex.Unlock()

	c.deferredErr = errors.CombineErrors(c.deferredErr, err)
}

// CheckErr returns and clears the Context's deferred error slot
func (c *Context) CheckErr() error {
	c.errMutex.Lock()
	defer c.errMutex.Unlock()

	err := c.deferredErr
	c.deferredErr = nil
	return err
}

// DefaultStream returns the Context's default stream. It does not need to be destroyed.
func (c *Context) DefaultStream() *Stream {
	return c.defaultStream
}

// NewStream creates a new stream on this Context. The stream must be destroyed with Stream.Destroy.
func (c *Context) NewStream(flags driver.StreamFlags) (*Stream, error) {
	c.logger.Debug("Context::NewStream", slog.String("flags", flags.String()))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := c.BindToThread(); err != nil {
		return nil, err
	}

	handle, err := c.driver.StreamCreate(flags)
	if err != nil {
		return nil, err
	}

	return &Stream{ctx: c, handle: handle}, nil
}

// NewEvent creates a new completion marker on this Context. The event must be destroyed with
// Event.Destroy.
func (c *Context) NewEvent(flags driver.EventFlags) (*Event, error) {
	c.logger.Debug("Context::NewEvent", slog.String("flags", flags.String()))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := c.BindToThread(); err != nil {
		return nil, err
	}

	return c.createEvent(flags)
}

func (c *Context) createEvent(flags driver.EventFlags) (*Event, error) {
	handle, err := c.driver.EventCreate(flags)
	if err != nil {
		return nil, err
	}

	return &Event{ctx: c, handle: handle}, nil
}

func (c *Context) register(mem *ExternalMemory) {
	c.registryMutex.Lock()
	defer c.registryMutex.Unlock()

	c.nextID++
	mem.id = c.nextID
	c.registry.Put(mem.id, mem)

	c.importCount.Add(1)
	c.importBytes.Add(int64(mem.size))
}

func (c *Context) unregister(mem *ExternalMemory) {
	c.registryMutex.Lock()
	defer c.registryMutex.Unlock()

	if !c.registry.Delete(mem.id) {
		panic(fmt.Sprintf("attempted to unregister external memory %d, which is not registered with its context", mem.id))
	}

	c.importCount.Add(-1)
	c.importBytes.Add(-int64(mem.size))
}

func (c *Context) attachBuffer(mem *ExternalMemory, buffer *MappedBuffer) {
	c.registryMutex.Lock()
	defer c.registryMutex.Unlock()

	if mem.buffer != nil {
		panic("attempted to attach a mapped buffer to external memory that already has one")
	}
	mem.buffer = buffer

	c.mappingCount.Add(1)
	c.mappingBytes.Add(int64(buffer.len))
}

func (c *Context) detachBuffer(mem *ExternalMemory) {
	c.registryMutex.Lock()
	defer c.registryMutex.Unlock()

	buffer := mem.buffer
	if buffer == nil {
		panic("attempted to detach a mapped buffer from external memory that does not have one")
	}
	mem.buffer = nil

	if c.mappingCount.Add(-1) < 0 {
		panic("mapping count went negative")
	}
	if c.mappingBytes.Add(-int64(buffer.len)) < 0 {
		panic("mapping bytes went negative")
	}
}

// Validate verifies that the Context's live registry agrees with its statistics
func (c *Context) Validate() error {
	c.registryMutex.RLock()
	defer c.registryMutex.RUnlock()

	registered := 0
	registeredBytes := 0
	mapped := 0
	mappedBytes := 0
	c.registry.Iter(func(id uint64, mem *ExternalMemory) bool {
		registered++
		registeredBytes += mem.size
		if buffer := mem.buffer; buffer != nil {
			mapped++
			mappedBytes += buffer.len
		}
		return false
	})

	if registered != int(c.importCount.Load()) {
		return errors.Errorf("the context has %d registered imports, but its import count is %d", registered, c.importCount.Load())
	}
	if registeredBytes != int(c.importBytes.Load()) {
		return errors.Errorf("the context has %d registered import bytes, but its import byte count is %d", registeredBytes, c.importBytes.Load())
	}
	if mapped != int(c.mappingCount.Load()) {
		return errors.Errorf("the context has %d mapped imports, but its mapping count is %d", mapped, c.mappingCount.Load())
	}
	if mappedBytes != int(c.mappingBytes.Load()) {
		return errors.Errorf("the context has %d mapped bytes, but its mapped byte count is %d", mappedBytes, c.mappingBytes.Load())
	}

	return nil
}
