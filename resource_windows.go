//go:build windows

package extmem

import (
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"golang.org/x/sys/windows"
)

var hostHandleType = khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueWin32

type handleResource struct {
	handle windows.Handle
	closed atomic.Bool
}

// NewHandleResource wraps a raw Win32 handle, such as one exported from a Vulkan device memory
// object, as a Resource. The Resource takes ownership of handle.
func NewHandleResource(handle windows.Handle) Resource {
	return &handleResource{handle: handle}
}

// NewFileResource detaches the handle of file into a Resource. The handle is duplicated and file is
// closed, so the lifetime of the handle is governed by the Resource alone.
func NewFileResource(file *os.File) (Resource, error) {
	if file == nil {
		return nil, errors.New("attempted to create a resource from a nil file")
	}

	process := windows.CurrentProcess()
	var handle windows.Handle
	err := windows.DuplicateHandle(process, windows.Handle(file.Fd()), process, &handle, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to duplicate the handle of %s", file.Name())
	}

	if err = file.Close(); err != nil {
		return nil, errors.CombineErrors(errors.Wrapf(err, "failed to close %s", file.Name()), windows.CloseHandle(handle))
	}

	return &handleResource{handle: handle}, nil
}

func (r *handleResource) Handle() uintptr { return uintptr(r.handle) }

func (r *handleResource) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return errors.Newf("handle %#x has already been closed", uintptr(r.handle))
	}

	return windows.CloseHandle(r.handle)
}
