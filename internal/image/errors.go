// errors.go - Error kinds surfaced by the image pipeline.
//
// Each stage of the upload pipeline fails with exactly one of these
// kinds. The HTTP layer maps them to status codes; this package never
// writes responses itself.
package image

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that match no stored image.
var ErrNotFound = errors.New("image not found")

// ErrTooLarge is the cause wrapped by a ReadError when the accumulated
// upload exceeds the reader's byte limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// ReadError reports a failure while accumulating the upload stream.
// The buffer collected so far is discarded; there is no retry.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "read upload: " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

// DecodeError reports that the uploaded bytes are not a well-formed
// raster image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode image: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a declared mime type outside the
// supported whitelist.
type UnsupportedFormatError struct {
	Mime string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("mime type %q is not supported", e.Mime)
}

// PersistenceError reports a failed insert or lookup statement:
// connectivity loss, or the (practically impossible) filename
// uniqueness violation. It is surfaced, never silently retried.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persist image: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigError reports a missing or malformed server base URL.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "url config: " + e.Reason }
