package driver

import "github.com/vkngwrapper/core/v2/common"

// EventFlags control how a completion marker is created
type EventFlags uint32

var eventFlagsMapping = common.NewFlagStringMapping[EventFlags]()

func (f EventFlags) Register(str string) {
	eventFlagsMapping.Register(f, str)
}
func (f EventFlags) String() string {
	return eventFlagsMapping.FlagsToString(f)
}

const (
	// EventBlockingSync makes EventSynchronize yield the calling thread instead of spinning
	EventBlockingSync EventFlags = 1 << iota
	// EventDisableTiming creates an event that does not record timing data, which is cheaper to
	// record and wait on
	EventDisableTiming
	// EventInterprocess creates an event that can be shared between processes. It requires
	// EventDisableTiming.
	EventInterprocess

	// EventDefault is the zero set of event flags
	EventDefault EventFlags = 0
)

func init() {
	EventBlockingSync.Register("EventBlockingSync")
	EventDisableTiming.Register("EventDisableTiming")
	EventInterprocess.Register("EventInterprocess")
}

// StreamFlags control how a work queue is created
type StreamFlags uint32

var streamFlagsMapping = common.NewFlagStringMapping[StreamFlags]()

func (f StreamFlags) Register(str string) {
	streamFlagsMapping.Register(f, str)
}
func (f StreamFlags) String() string {
	return streamFlagsMapping.FlagsToString(f)
}

const (
	// StreamNonBlocking creates a stream whose work may run concurrently with the default stream
	StreamNonBlocking StreamFlags = 1 << iota

	StreamDefault StreamFlags = 0
)

func init() {
	StreamNonBlocking.Register("StreamNonBlocking")
}
