package extmem

import (
	"io"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/extmem/driver"
	"github.com/vkngwrapper/arsenal/extmem/driver/mocks"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

const (
	testContextHandle driver.Context        = 0x1000
	testMemoryHandle  driver.ExternalMemory = 0x2000
	testEventHandle   driver.Event          = 0x3000
	testDevicePtr     driver.DevicePtr      = 0x7f0000000000
)

const (
	handleTypeFD    = khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueFD
	handleTypeWin32 = khr_external_memory_capabilities.ExternalMemoryHandleTypeOpaqueWin32
)

type fakeResource struct {
	handle     uintptr
	closeCount int
	closeErr   error
}

func (r *fakeResource) Handle() uintptr { return r.handle }

func (r *fakeResource) Close() error {
	r.closeCount++
	return r.closeErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func readyContext(t require.TestingT, ctrl *gomock.Controller, options CreateOptions) (*Context, *mocks.MockDriver) {
	drv := mocks.NewMockDriver(ctrl)

	if options.DefaultHandleType == 0 {
		options.DefaultHandleType = handleTypeFD
	}

	ctx, err := New(testLogger(), drv, testContextHandle, options)
	require.NoError(t, err)

	return ctx, drv
}

// readyImport imports size bytes from resource, expecting exactly the driver calls an import makes
func readyImport(t require.TestingT, ctx *Context, drv *mocks.MockDriver, resource *fakeResource, size int, handleType khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags) *ExternalMemory {
	setCurrent := drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil)

	if handleType == handleTypeWin32 {
		drv.EXPECT().ImportExternalMemoryOpaqueWin32(resource.handle, uint64(size)).Return(testMemoryHandle, nil).After(setCurrent)
	} else {
		drv.EXPECT().ImportExternalMemoryOpaqueFD(int(resource.handle), uint64(size)).Return(testMemoryHandle, nil).After(setCurrent)
	}

	mem, err := ctx.ImportExternalMemory(resource, size, ImportOptions{HandleType: handleType})
	require.NoError(t, err)
	require.NotNil(t, mem)

	return mem
}

// readyMapping maps [start, end) of mem, expecting exactly the driver calls a mapping makes
func readyMapping(t require.TestingT, drv *mocks.MockDriver, mem *ExternalMemory, start, end int) *MappedBuffer {
	gomock.InOrder(
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().ExternalMemoryGetMappedBuffer(testMemoryHandle, uint64(start), uint64(end-start)).Return(testDevicePtr, nil),
		drv.EXPECT().EventCreate(driver.EventDisableTiming).Return(testEventHandle, nil),
	)

	buffer, err := mem.MapRange(start, end)
	require.NoError(t, err)
	require.NotNil(t, buffer)

	return buffer
}

// expectMemoryDestroy expects the driver calls made when external memory is torn down
func expectMemoryDestroy(drv *mocks.MockDriver) []any {
	return []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().DestroyExternalMemory(testMemoryHandle).Return(nil),
	}
}

// expectUnmap expects the driver calls made when a mapped buffer is torn down
func expectUnmap(drv *mocks.MockDriver) []any {
	return []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().StreamWaitEvent(driver.Stream(0), testEventHandle).Return(nil),
		drv.EXPECT().MemFree(testDevicePtr).Return(nil),
		drv.EXPECT().EventDestroy(testEventHandle).Return(nil),
	}
}

func releaseContext(t require.TestingT, ctx *Context, drv *mocks.MockDriver) {
	drv.EXPECT().CtxDestroy(testContextHandle).Return(nil)
	require.NoError(t, ctx.Release())
}
