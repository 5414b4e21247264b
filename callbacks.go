package extmem

import "github.com/vkngwrapper/arsenal/extmem/driver"

type ImportExternalMemoryCallback func(
	ctx *Context,
	memory driver.ExternalMemory,
	size int,
	userData interface{},
)

type DestroyExternalMemoryCallback func(
	ctx *Context,
	memory driver.ExternalMemory,
	size int,
	userData interface{},
)

type MapBufferCallback func(
	ctx *Context,
	memory driver.ExternalMemory,
	ptr driver.DevicePtr,
	offset int,
	size int,
	userData interface{},
)

type UnmapBufferCallback func(
	ctx *Context,
	memory driver.ExternalMemory,
	ptr driver.DevicePtr,
	offset int,
	size int,
	userData interface{},
)

// MemoryCallbackOptions is a set of optional callbacks executed as external memory moves through its
// lifecycle. Destroy and Unmap are called after the corresponding driver call, whether or not it
// succeeded.
type MemoryCallbackOptions struct {
	Import  ImportExternalMemoryCallback
	Destroy DestroyExternalMemoryCallback
	Map     MapBufferCallback
	Unmap   UnmapBufferCallback
	// UserData is passed through to every callback
	UserData interface{}
}

type memoryCallbacks struct {
	Callbacks *MemoryCallbackOptions
	Context   *Context
}

func (c *memoryCallbacks) Import(memory driver.ExternalMemory, size int) {
	if c.Callbacks != nil && c.Callbacks.Import != nil {
		c.Callbacks.Import(c.Context, memory, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Destroy(memory driver.ExternalMemory, size int) {
	if c.Callbacks != nil && c.Callbacks.Destroy != nil {
		c.Callbacks.Destroy(c.Context, memory, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Map(memory driver.ExternalMemory, ptr driver.DevicePtr, offset, size int) {
	if c.Callbacks != nil && c.Callbacks.Map != nil {
		c.Callbacks.Map(c.Context, memory, ptr, offset, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Unmap(memory driver.ExternalMemory, ptr driver.DevicePtr, offset, size int) {
	if c.Callbacks != nil && c.Callbacks.Unmap != nil {
		c.Callbacks.Unmap(c.Context, memory, ptr, offset, size, c.Callbacks.UserData)
	}
}
