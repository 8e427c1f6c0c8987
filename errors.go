package serial

import "errors"

// Error categories. Every error below belongs to exactly one category, so
// callers can check either the specific error or its category with
// errors.Is.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrState               = errors.New("invalid state")
	ErrDataIntegrity       = errors.New("data integrity error")
	ErrIO                  = errors.New("I/O error")
)

// Predefined error types for robust error handling
var (
	// Configuration errors
	ErrInvalidPath             = newError(ErrConfiguration, "serial port path is empty")
	ErrInvalidDirection        = newError(ErrConfiguration, "port must be opened for reading, writing or both")
	ErrInvalidConfig           = newError(ErrConfiguration, "invalid serial configuration")
	ErrInvalidBaudRate         = newError(ErrConfiguration, "invalid baud rate")
	ErrIdentityDataUnavailable = newError(ErrConfiguration, "USB identity data unavailable")

	// Resource errors
	ErrRegistryUnavailable = newError(ErrResourceUnavailable, "device registry unavailable")
	ErrIteratorUnavailable = newError(ErrResourceUnavailable, "device registry iterator unavailable")
	ErrOpenFailed          = newError(ErrResourceUnavailable, "failed to open serial port")
	ErrDeviceNotFound      = newError(ErrResourceUnavailable, "serial device not found")

	// State errors
	ErrPortClosed      = newError(ErrState, "serial port is closed")
	ErrPortAlreadyOpen = newError(ErrState, "serial port is already open")
	ErrApplyConfig     = newError(ErrState, "failed to apply serial configuration")

	// Data integrity errors
	ErrDeviceDisconnected = newError(ErrDataIntegrity, "serial device disconnected")
	ErrInvalidPropertyID  = newError(ErrDataIntegrity, "device property is not an integer ID")
	ErrPortPathInvalid    = newError(ErrDataIntegrity, "device has no usable port path")

	// I/O errors
	ErrInvalidReadBytes = newError(ErrIO, "read returned no data")
)

type kindError struct {
	msg  string
	kind error
}

func newError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}
