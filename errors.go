package extmem

import "github.com/cockroachdb/errors"

var (
	// ErrImportFailed marks errors returned when an OS resource could not be imported as external
	// memory. The driver's error, if any, remains in the chain.
	ErrImportFailed = errors.New("failed to import external memory")
	// ErrUnsupportedHandleType marks import failures caused by a handle type that this package
	// does not know how to import
	ErrUnsupportedHandleType = errors.New("unsupported external memory handle type")
	// ErrMappingFailed marks errors returned when the driver rejected a request to map external memory
	ErrMappingFailed = errors.New("failed to map external memory")
	// ErrDeferredTeardown marks errors that occurred while releasing external memory or mapped buffers
	// and were recorded into the owning Context instead of being returned
	ErrDeferredTeardown = errors.New("error during deferred teardown")
	// ErrBufferClosed marks errors recorded when a read was synced against a mapped buffer that had
	// already been torn down. The read was not ordered before the buffer was freed.
	ErrBufferClosed = errors.New("mapped buffer has already been torn down")
)
