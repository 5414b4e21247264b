package extmem

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/extmem/driver"
	"go.uber.org/mock/gomock"
)

func TestMapRange_Preconditions(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{name: "start past end of memory", start: 4097, end: 4097},
		{name: "end past end of memory", start: 0, end: 4097},
		{name: "negative start", start: -1, end: 16},
		{name: "end before start", start: 2048, end: 1024},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ctx, drv := readyContext(t, ctrl, CreateOptions{})

			mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)

			// No driver calls are expected, so any mapping attempt fails the controller
			require.Panics(t, func() {
				_, _ = mem.MapRange(test.start, test.end)
			})
			require.False(t, mem.IsMapped())

			gomock.InOrder(expectMemoryDestroy(drv)...)
			require.NoError(t, mem.Close())

			releaseContext(t, ctx, drv)
		})
	}
}

func TestMapRange_EmptyRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 4096, 4096)
	require.Equal(t, 0, buffer.Len())

	gomock.InOrder(append(expectUnmap(drv), expectMemoryDestroy(drv)...)...)
	require.NoError(t, buffer.Close())

	releaseContext(t, ctx, drv)
}

func TestMapAll_ZeroSizedMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 0, handleTypeFD)

	gomock.InOrder(
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().ExternalMemoryGetMappedBuffer(testMemoryHandle, uint64(0), uint64(0)).Return(testDevicePtr, nil),
		drv.EXPECT().EventCreate(driver.EventDisableTiming).Return(testEventHandle, nil),
	)
	buffer, err := mem.MapAll()
	require.NoError(t, err)
	require.Equal(t, 0, buffer.Len())

	gomock.InOrder(append(expectUnmap(drv), expectMemoryDestroy(drv)...)...)
	buffer.Release()
	require.NoError(t, ctx.CheckErr())

	releaseContext(t, ctx, drv)
}

func TestMapRange_OnlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 1024)

	require.Panics(t, func() {
		_, _ = mem.MapRange(2048, 4096)
	})

	// Ownership moved into the buffer, so the memory cannot be torn down on its own
	require.NoError(t, mem.Close())
	mem.Release()
	require.True(t, mem.IsMapped())

	gomock.InOrder(append(expectUnmap(drv), expectMemoryDestroy(drv)...)...)
	require.NoError(t, buffer.Close())

	// Tearing down twice is a no-op
	require.NoError(t, buffer.Close())
	buffer.Release()

	require.Panics(t, func() {
		_, _ = mem.MapAll()
	})

	releaseContext(t, ctx, drv)
}

func TestMapRange_DriverFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	resource := &fakeResource{handle: 0x99}
	mem := readyImport(t, ctx, drv, resource, 4096, handleTypeWin32)

	calls := []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().ExternalMemoryGetMappedBuffer(testMemoryHandle, uint64(0), uint64(4096)).Return(driver.DevicePtr(0), driver.ErrorOutOfMemory.ToError()),
	}
	gomock.InOrder(append(calls, expectMemoryDestroy(drv)...)...)

	buffer, err := mem.MapAll()
	require.Nil(t, buffer)
	require.True(t, errors.Is(err, ErrMappingFailed))
	require.True(t, errors.Is(err, driver.ErrorOutOfMemory.ToError()))

	// The consumed memory was torn down with it
	require.Equal(t, 1, resource.closeCount)
	require.False(t, mem.IsMapped())
	require.NoError(t, mem.Close())
	require.NoError(t, ctx.CheckErr())
	require.NoError(t, ctx.Validate())

	releaseContext(t, ctx, drv)
}

func TestMapRange_DriverFailureTeardownErrorsAreRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)

	gomock.InOrder(
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().ExternalMemoryGetMappedBuffer(testMemoryHandle, uint64(0), uint64(4096)).Return(driver.DevicePtr(0), driver.ErrorInvalidValue.ToError()),
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().DestroyExternalMemory(testMemoryHandle).Return(driver.ErrorInvalidHandle.ToError()),
	)

	_, err := mem.MapAll()
	require.True(t, errors.Is(err, ErrMappingFailed))

	err = ctx.CheckErr()
	require.True(t, errors.Is(err, ErrDeferredTeardown))
	require.True(t, errors.Is(err, driver.ErrorInvalidHandle.ToError()))

	releaseContext(t, ctx, drv)
}

func TestMapRange_EventFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)

	calls := []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().ExternalMemoryGetMappedBuffer(testMemoryHandle, uint64(0), uint64(4096)).Return(testDevicePtr, nil),
		drv.EXPECT().EventCreate(driver.EventDisableTiming).Return(driver.Event(0), driver.ErrorOutOfMemory.ToError()),
		drv.EXPECT().MemFree(testDevicePtr).Return(nil),
	}
	gomock.InOrder(append(calls, expectMemoryDestroy(drv)...)...)

	buffer, err := mem.MapAll()
	require.Nil(t, buffer)
	require.True(t, errors.Is(err, ErrMappingFailed))
	require.NoError(t, ctx.CheckErr())

	var stats Statistics
	ctx.GetStatistics(&stats)
	require.Equal(t, Statistics{}, stats)

	releaseContext(t, ctx, drv)
}

func TestMappedBuffer_BlockingTeardown(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{Flags: ContextCreateBlockingTeardown})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	calls := []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().StreamWaitEvent(driver.Stream(0), testEventHandle).Return(nil),
		drv.EXPECT().EventSynchronize(testEventHandle).Return(nil),
		drv.EXPECT().MemFree(testDevicePtr).Return(nil),
		drv.EXPECT().EventDestroy(testEventHandle).Return(nil),
	}
	gomock.InOrder(append(calls, expectMemoryDestroy(drv)...)...)

	require.NoError(t, buffer.Close())

	releaseContext(t, ctx, drv)
}

func TestMappedBuffer_TeardownContinuesPastErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	calls := []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().StreamWaitEvent(driver.Stream(0), testEventHandle).Return(driver.ErrorIllegalAddress.ToError()),
		drv.EXPECT().MemFree(testDevicePtr).Return(driver.ErrorIllegalAddress.ToError()),
		drv.EXPECT().EventDestroy(testEventHandle).Return(nil),
	}
	gomock.InOrder(append(calls, expectMemoryDestroy(drv)...)...)

	err := buffer.Close()
	require.True(t, errors.Is(err, driver.ErrorIllegalAddress.ToError()))
	require.Contains(t, err.Error(), "failed to order stream")
	require.NoError(t, ctx.CheckErr())

	releaseContext(t, ctx, drv)
}

func TestMappedBuffer_ReleaseRecordsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	calls := []any{
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().StreamWaitEvent(driver.Stream(0), testEventHandle).Return(nil),
		drv.EXPECT().MemFree(testDevicePtr).Return(driver.ErrorLaunchFailed.ToError()),
		drv.EXPECT().EventDestroy(testEventHandle).Return(nil),
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().DestroyExternalMemory(testMemoryHandle).Return(driver.ErrorInvalidHandle.ToError()),
	}
	gomock.InOrder(calls...)

	buffer.Release()

	err := ctx.CheckErr()
	require.True(t, errors.Is(err, ErrDeferredTeardown))
	require.True(t, errors.Is(err, driver.ErrorLaunchFailed.ToError()))
	require.Contains(t, fmt.Sprintf("%+v", err), "failed to destroy external memory")

	releaseContext(t, ctx, drv)
}

func TestMappedBuffer_DevicePtr(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	var slice DevicePtr = buffer
	require.Equal(t, 4096, slice.Len())

	gomock.InOrder(
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().StreamCreate(driver.StreamNonBlocking).Return(driver.Stream(0x40), nil),
	)
	stream, err := ctx.NewStream(driver.StreamNonBlocking)
	require.NoError(t, err)
	require.False(t, stream.IsDefault())

	// Any number of reads may share the buffer
	for i := 0; i < 2; i++ {
		ptr, sync := slice.DevicePtr(stream)
		require.Equal(t, testDevicePtr, ptr)

		gomock.InOrder(
			drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
			drv.EXPECT().EventRecord(testEventHandle, driver.Stream(0x40)).Return(nil),
		)
		sync.Sync()
	}
	require.NoError(t, ctx.CheckErr())

	gomock.InOrder(
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().StreamDestroy(driver.Stream(0x40)).Return(nil),
	)
	require.NoError(t, stream.Destroy())

	gomock.InOrder(append(expectUnmap(drv), expectMemoryDestroy(drv)...)...)
	require.NoError(t, buffer.Close())

	require.Panics(t, func() {
		buffer.DevicePtr(ctx.DefaultStream())
	})

	releaseContext(t, ctx, drv)
}

func TestMappedBuffer_SyncErrorsAreRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	_, sync := buffer.DevicePtr(ctx.DefaultStream())
	gomock.InOrder(
		drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil),
		drv.EXPECT().EventRecord(testEventHandle, driver.Stream(0)).Return(driver.ErrorNotReady.ToError()),
	)
	sync.Sync()

	err := ctx.CheckErr()
	require.True(t, errors.Is(err, ErrDeferredTeardown))
	require.True(t, errors.Is(err, driver.ErrorNotReady.ToError()))

	gomock.InOrder(append(expectUnmap(drv), expectMemoryDestroy(drv)...)...)
	require.NoError(t, buffer.Close())

	releaseContext(t, ctx, drv)
}

func TestMappedBuffer_SyncAfterTeardown(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	mem := readyImport(t, ctx, drv, &fakeResource{handle: 7}, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	_, sync := buffer.DevicePtr(ctx.DefaultStream())

	gomock.InOrder(append(expectUnmap(drv), expectMemoryDestroy(drv)...)...)
	require.NoError(t, buffer.Close())

	// The completion event is gone, so no driver calls may be made
	sync.Sync()

	err := ctx.CheckErr()
	require.True(t, errors.Is(err, ErrBufferClosed))
	require.True(t, errors.Is(err, ErrDeferredTeardown))

	releaseContext(t, ctx, drv)
}

func TestSyncOnDrop_ZeroValue(t *testing.T) {
	require.NotPanics(t, func() {
		var sync SyncOnDrop
		sync.Sync()
	})
}

func TestMappedBuffer_ReleaseDuringPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, drv := readyContext(t, ctrl, CreateOptions{})

	resource := &fakeResource{handle: 7}
	mem := readyImport(t, ctx, drv, resource, 4096, handleTypeFD)
	buffer := readyMapping(t, drv, mem, 0, 4096)

	require.Panics(t, func() {
		defer buffer.Release()

		_, sync := buffer.DevicePtr(ctx.DefaultStream())
		defer sync.Sync()

		record := drv.EXPECT().EventRecord(testEventHandle, driver.Stream(0)).Return(nil).
			After(drv.EXPECT().CtxSetCurrent(testContextHandle).Return(nil))
		teardown := append(expectUnmap(drv), expectMemoryDestroy(drv)...)
		teardown[0].(*gomock.Call).After(record)
		gomock.InOrder(teardown...)

		panic("kernel launch failed")
	})

	require.NoError(t, ctx.CheckErr())
	require.Equal(t, 0, resource.closeCount)

	releaseContext(t, ctx, drv)
}
