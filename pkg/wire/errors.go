package wire

import "errors"

var (
	// ErrHeaderTooShort is returned when a buffer is too small to hold a
	// fixed CommonHeader.
	ErrHeaderTooShort = errors.New("wire: header too short")

	// ErrTrailingData is returned when an additional-header TLV claims a
	// length exceeding the remaining buffer.
	ErrTrailingData = errors.New("wire: truncated additional header")

	// ErrTooManyAdditionalHeaders guards against a hostile length field
	// driving an unbounded allocation loop.
	ErrTooManyAdditionalHeaders = errors.New("wire: too many additional headers")

	// ErrInvalidMessage is returned when a sub-protocol message body is
	// malformed or missing a required field.
	ErrInvalidMessage = errors.New("wire: invalid message body")
)
