//go:build unix

package extmem

import (
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"golang.org/x/sys/unix"
)

var hostHandleType = khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueFD

type descriptorResource struct {
	fd     int
	closed atomic.Bool
}

// NewDescriptorResource wraps a raw file descriptor, such as one exported from a Vulkan device
// memory object, as a Resource. The Resource takes ownership of fd.
func NewDescriptorResource(fd int) Resource {
	return &descriptorResource{fd: fd}
}

// NewFileResource detaches the descriptor of file into a Resource. The descriptor is duplicated and
// file is closed, so that the os.File finalizer cannot close a descriptor the driver has taken
// ownership of.
func NewFileResource(file *os.File) (Resource, error) {
	if file == nil {
		return nil, errors.New("attempted to create a resource from a nil file")
	}

	fd, err := unix.Dup(int(file.Fd()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to duplicate the descriptor of %s", file.Name())
	}
	unix.CloseOnExec(fd)

	if err = file.Close(); err != nil {
		return nil, errors.CombineErrors(errors.Wrapf(err, "failed to close %s", file.Name()), unix.Close(fd))
	}

	return &descriptorResource{fd: fd}, nil
}

func (r *descriptorResource) Handle() uintptr { return uintptr(r.fd) }

func (r *descriptorResource) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return errors.Newf("descriptor %d has already been closed", r.fd)
	}

	return unix.Close(r.fd)
}
