package image

import (
	"bytes"
	"io"
)

// ReadAll accumulates every chunk of r into a single buffer, preserving
// arrival order, until the stream signals EOF. Any transport failure
// aborts the whole read and surfaces a ReadError; a partially filled
// buffer is never returned.
//
// The byte limit is an explicit part of the contract so the reader is
// safe to use outside a transport that applies its own cap. A limit of
// zero or less disables the check. Exceeding the limit fails with a
// ReadError wrapping ErrTooLarge.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	src := r
	if limit > 0 {
		// Read one byte past the limit so overruns are detectable.
		src = io.LimitReader(r, limit+1)
	}
	n, err := buf.ReadFrom(src)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	if limit > 0 && n > limit {
		return nil, &ReadError{Err: ErrTooLarge}
	}
	return buf.Bytes(), nil
}
