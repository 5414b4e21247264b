package driver

import "fmt"

// Result is a status code returned by the driver
type Result int32

const (
	Success                  Result = 0
	ErrorInvalidValue        Result = 1
	ErrorOutOfMemory         Result = 2
	ErrorNotInitialized      Result = 3
	ErrorDeinitialized       Result = 4
	ErrorInvalidContext      Result = 201
	ErrorContextAlreadyInUse Result = 216
	ErrorOperatingSystem     Result = 304
	ErrorInvalidHandle       Result = 400
	ErrorIllegalState        Result = 401
	ErrorNotReady            Result = 600
	ErrorIllegalAddress      Result = 700
	ErrorLaunchFailed        Result = 719
	ErrorNotPermitted        Result = 800
	ErrorNotSupported        Result = 801
	ErrorExternalDevice      Result = 911
	ErrorUnknown             Result = 999
)

var resultMapping = make(map[Result]string)

func (r Result) String() string {
	str, ok := resultMapping[r]
	if !ok {
		return fmt.Sprintf("Result(%d)", int32(r))
	}
	return str
}

func init() {
	resultMapping[Success] = "Success"
	resultMapping[ErrorInvalidValue] = "ErrorInvalidValue"
	resultMapping[ErrorOutOfMemory] = "ErrorOutOfMemory"
	resultMapping[ErrorNotInitialized] = "ErrorNotInitialized"
	resultMapping[ErrorDeinitialized] = "ErrorDeinitialized"
	resultMapping[ErrorInvalidContext] = "ErrorInvalidContext"
	resultMapping[ErrorContextAlreadyInUse] = "ErrorContextAlreadyInUse"
	resultMapping[ErrorOperatingSystem] = "ErrorOperatingSystem"
	resultMapping[ErrorInvalidHandle] = "ErrorInvalidHandle"
	resultMapping[ErrorIllegalState] = "ErrorIllegalState"
	resultMapping[ErrorNotReady] = "ErrorNotReady"
	resultMapping[ErrorIllegalAddress] = "ErrorIllegalAddress"
	resultMapping[ErrorLaunchFailed] = "ErrorLaunchFailed"
	resultMapping[ErrorNotPermitted] = "ErrorNotPermitted"
	resultMapping[ErrorNotSupported] = "ErrorNotSupported"
	resultMapping[ErrorExternalDevice] = "ErrorExternalDevice"
	resultMapping[ErrorUnknown] = "ErrorUnknown"
}

// ToError converts a Result into an error. Success converts to nil.
func (r Result) ToError() error {
	if r == Success {
		return nil
	}
	return Error{Result: r}
}

// Error is the error value carrying a non-success Result. It is comparable, so errors.Is can be
// used to match against a specific Result, e.g. errors.Is(err, driver.ErrorOutOfMemory.ToError())
type Error struct {
	Result Result
}

func (e Error) Error() string {
	return fmt.Sprintf("driver returned %s (%d)", e.Result.String(), int32(e.Result))
}
