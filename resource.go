package extmem

import (
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
)

// Resource is an OS-level resource that external memory can be imported from: a file descriptor
// on unix and a HANDLE on windows. Implementations must not close the resource from a finalizer,
// because once an import transfers it to the driver nothing but the driver may close it.
type Resource interface {
	// Handle returns the raw descriptor or handle
	Handle() uintptr
	// Close releases the descriptor or handle
	Close() error
}

// HostHandleType returns the external memory handle type that is native to the host platform,
// or 0 if the host has none
func HostHandleType() khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags {
	return hostHandleType
}

func isSupportedHandleType(handleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags) bool {
	return handleType == khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueFD ||
		handleType == khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueWin32
}

// importTransfersOwnership reports whether a successful import of handleType passes ownership of the
// resource to the driver. File descriptors are owned by the driver once imported, and touching them
// afterward is undefined behavior. Win32 handles stay with the application, which must close them.
func importTransfersOwnership(handleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags) bool {
	return handleType == khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueFD
}

// ownedResource is a Resource together with the decision, made once at import time, of whether
// teardown must close it
type ownedResource struct {
	resource Resource
	release  bool
}

func (r *ownedResource) teardown() error {
	if !r.release {
		// Owned by the driver
		return nil
	}

	return r.resource.Close()
}
