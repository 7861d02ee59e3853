package codec

import (
	"errors"
	"fmt"
)

// Decode failures. Every error returned by Decode wraps exactly one of these
// inside a *DecodeError.
var (
	ErrIncompatibleVersion = errors.New("incompatible major version")
	ErrUnknownType         = errors.New("unknown value type")
	ErrTruncatedBuffer     = errors.New("truncated buffer")
	ErrMalformedEntry      = errors.New("malformed entry")
)

// Construction failures.
var (
	ErrInvalidKey         = errors.New("invalid key")
	ErrTypeInference      = errors.New("cannot infer value type")
	ErrInvalidType        = errors.New("invalid value type")
	ErrEmptyEntry         = errors.New("entry has no elements")
	ErrTooManyElements    = errors.New("too many elements")
	ErrValueOutOfRange    = errors.New("value out of range")
	ErrBlobLengthMismatch = errors.New("blob elements differ in length")
	ErrBlobTooLarge       = errors.New("blob too large")
	ErrRecordTooLarge     = errors.New("record too large")
)

// Lookup failures for the typed getters.
var (
	ErrNotFound     = errors.New("key not found")
	ErrTypeMismatch = errors.New("type mismatch")
)

// DecodeError reports where in the buffer decoding stopped.
type DecodeError struct {
	Offset int    // byte offset of the field being read
	Field  string // name of that field
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sdbuf: decode %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
