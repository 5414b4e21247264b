package extmem

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/extmem/driver"
)

// Stream is an ordered, asynchronous work queue belonging to a Context
type Stream struct {
	ctx    *Context
	handle driver.Stream
}

func (s *Stream) Handle() driver.Stream { return s.handle }
func (s *Stream) Context() *Context     { return s.ctx }

// IsDefault returns true if this is the default stream of its Context
func (s *Stream) IsDefault() bool { return s == s.ctx.defaultStream }

// Wait orders all work submitted to this stream after this call behind the completion of event.
// It does not block the calling goroutine.
func (s *Stream) Wait(event *Event) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := s.ctx.BindToThread(); err != nil {
		return err
	}

	return s.wait(event)
}

func (s *Stream) wait(event *Event) error {
	if event.ctx != s.ctx {
		return errors.New("attempted to wait on an event that belongs to a different context than the stream")
	}

	return s.ctx.driver.StreamWaitEvent(s.handle, event.handle)
}

// Synchronize blocks the calling goroutine until all work submitted to this stream has completed
func (s *Stream) Synchronize() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := s.ctx.BindToThread(); err != nil {
		return err
	}

	return s.ctx.driver.StreamSynchronize(s.handle)
}

// Destroy releases a stream created with Context.NewStream. Destroying the default stream is a no-op.
func (s *Stream) Destroy() error {
	if s.IsDefault() {
		return nil
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := s.ctx.setCurrent(); err != nil {
		return err
	}

	return s.ctx.driver.StreamDestroy(s.handle)
}

// Event is a completion marker belonging to a Context
type Event struct {
	ctx    *Context
	handle driver.Event
}

func (e *Event) Handle() driver.Event { return e.handle }
func (e *Event) Context() *Context    { return e.ctx }

// Record captures all work submitted to stream so far into this event
func (e *Event) Record(stream *Stream) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.ctx.BindToThread(); err != nil {
		return err
	}

	return e.record(stream)
}

func (e *Event) record(stream *Stream) error {
	if stream.ctx != e.ctx {
		return errors.New("attempted to record an event on a stream that belongs to a different context than the event")
	}

	return e.ctx.driver.EventRecord(e.handle, stream.handle)
}

// Synchronize blocks the calling goroutine until the work captured by this event has completed
func (e *Event) Synchronize() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.ctx.BindToThread(); err != nil {
		return err
	}

	return e.ctx.driver.EventSynchronize(e.handle)
}

// Destroy releases the event
func (e *Event) Destroy() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.ctx.setCurrent(); err != nil {
		return err
	}

	return e.ctx.driver.EventDestroy(e.handle)
}
