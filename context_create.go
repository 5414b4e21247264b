package extmem

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/extmem/driver"
	"github.com/vkngwrapper/arsenal/extmem/internal/utils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific context behaviors to activate or deactivate
type CreateFlags int32

var contextCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	contextCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return contextCreateFlagsMapping.FlagsToString(f)
}

const (
	// ContextCreateExternallySynchronized ensures that this context and all objects created from it
	// will not be synchronized internally. The consumer must guarantee they are used from only one
	// goroutine at a time or are synchronized by some other mechanism.
	ContextCreateExternallySynchronized CreateFlags = 1 << iota
	// ContextCreateBlockingTeardown causes MappedBuffer teardown to block the calling goroutine until
	// the buffer's completion marker has been reached, in addition to ordering the owning stream
	// behind it. Without this flag, teardown only orders device work and relies on the driver's
	// free call to respect that ordering.
	ContextCreateBlockingTeardown
)

func init() {
	ContextCreateExternallySynchronized.Register("ContextCreateExternallySynchronized")
	ContextCreateBlockingTeardown.Register("ContextCreateBlockingTeardown")
}

const initialRegistrySize uint32 = 16

// CreateOptions contains optional settings when creating a Context
type CreateOptions struct {
	// Flags indicates specific context behaviors to activate or deactivate
	Flags CreateFlags

	// DefaultHandleType is the handle type used by ImportExternalMemory when ImportOptions.HandleType
	// is left empty. If it is also left empty, the host's native handle type is used: opaque file
	// descriptors on unix and opaque Win32 handles on windows.
	DefaultHandleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags

	// MemoryCallbackOptions is an optional set of callbacks that will be executed when external memory
	// is imported, mapped, unmapped or destroyed through this context
	MemoryCallbackOptions *MemoryCallbackOptions
}

// New creates a Context wrapping a driver context handle. The returned Context holds a single
// reference, owned by the caller, and takes ownership of handle: the driver context is destroyed
// once the caller and every object imported through the Context have released it.
//
// logger - The logger that debug information & unreleased memory will be written to
//
// drv - The driver primitives the Context will operate with
//
// handle - The driver context to bind when operating on memory owned by this Context
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, drv driver.Driver, handle driver.Context, options CreateOptions) (*Context, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a context with a nil logger")
	}
	if drv == nil {
		return nil, errors.New("attempted to create a context with a nil driver")
	}

	defaultHandleType := options.DefaultHandleType
	if defaultHandleType == 0 {
		defaultHandleType = HostHandleType()
	}

	if defaultHandleType != 0 && !isSupportedHandleType(defaultHandleType) {
		return nil, errors.Mark(
			errors.Newf("CreateOptions.DefaultHandleType %s cannot be imported", defaultHandleType.String()),
			ErrUnsupportedHandleType,
		)
	}

	useMutex := options.Flags&ContextCreateExternallySynchronized == 0

	ctx := &Context{
		useMutex:          useMutex,
		logger:            logger,
		driver:            drv,
		handle:            handle,
		createFlags:       options.Flags,
		defaultHandleType: defaultHandleType,

		errMutex:      utils.OptionalMutex{UseMutex: useMutex},
		registryMutex: utils.OptionalRWMutex{UseMutex: useMutex},
		registry:      swiss.NewMap[uint64, *ExternalMemory](initialRegistrySize),
	}
	ctx.callbacks = &memoryCallbacks{
		Callbacks: options.MemoryCallbackOptions,
		Context:   ctx,
	}
	ctx.defaultStream = &Stream{ctx: ctx, handle: 0}
	ctx.refCount.Store(1)

	return ctx, nil
}
