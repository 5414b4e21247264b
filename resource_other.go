//go:build !unix && !windows

package extmem

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
)

var hostHandleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags

// NewFileResource is not supported on this platform
func NewFileResource(file *os.File) (Resource, error) {
	return nil, errors.Mark(errors.New("this platform has no external memory handle type"), ErrUnsupportedHandleType)
}
