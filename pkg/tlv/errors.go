package tlv

import "errors"

var (
	// ErrInvalidElementType is returned when an invalid element type is encountered.
	ErrInvalidElementType = errors.New("tlv: invalid element type")

	// ErrTypeMismatch is returned when trying to read a value as the wrong type.
	ErrTypeMismatch = errors.New("tlv: type mismatch")

	// ErrNotInContainer is returned when trying to close a container that was never opened.
	ErrNotInContainer = errors.New("tlv: not in container")

	// ErrInvalidUTF8 is returned when a UTF-8 string contains invalid sequences.
	ErrInvalidUTF8 = errors.New("tlv: invalid UTF-8 string")

	// ErrNoElement is returned when trying to access an element before calling Next.
	ErrNoElement = errors.New("tlv: no current element")

	// ErrValueAlreadyRead is returned when trying to read the same value twice.
	ErrValueAlreadyRead = errors.New("tlv: value already read")
)
