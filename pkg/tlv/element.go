// Package tlv implements the tag-length-value encoding underlying the
// session core's sub-message bodies: structures and arrays of tagged
// primitive values, encoded without a schema. Only the element kinds
// and tag forms the connect/control/device-info/session messages
// actually put on the wire are implemented — minimal-width signed and
// unsigned integers, length-prefixed UTF-8 and byte strings, and
// struct/array containers addressed by anonymous or context tags.
package tlv

// ElementType is the element kind encoded in the lower 5 bits of a
// control octet.
type ElementType int

const (
	ElementTypeInt8   ElementType = 0x00 // Signed integer, 1-octet value
	ElementTypeInt16  ElementType = 0x01 // Signed integer, 2-octet value
	ElementTypeInt32  ElementType = 0x02 // Signed integer, 4-octet value
	ElementTypeInt64  ElementType = 0x03 // Signed integer, 8-octet value
	ElementTypeUInt8  ElementType = 0x04 // Unsigned integer, 1-octet value
	ElementTypeUInt16 ElementType = 0x05 // Unsigned integer, 2-octet value
	ElementTypeUInt32 ElementType = 0x06 // Unsigned integer, 4-octet value
	ElementTypeUInt64 ElementType = 0x07 // Unsigned integer, 8-octet value
	ElementTypeUTF8_1 ElementType = 0x0C // UTF-8 string, 1-octet length
	ElementTypeUTF8_2 ElementType = 0x0D // UTF-8 string, 2-octet length
	ElementTypeUTF8_4 ElementType = 0x0E // UTF-8 string, 4-octet length
	ElementTypeBytes1 ElementType = 0x10 // Octet string, 1-octet length
	ElementTypeBytes2 ElementType = 0x11 // Octet string, 2-octet length
	ElementTypeBytes4 ElementType = 0x12 // Octet string, 4-octet length
	ElementTypeStruct ElementType = 0x15 // Structure
	ElementTypeArray  ElementType = 0x16 // Array
	ElementTypeEnd    ElementType = 0x18 // End of container
)

// String returns the name of the element type.
func (e ElementType) String() string {
	switch e {
	case ElementTypeInt8:
		return "Int8"
	case ElementTypeInt16:
		return "Int16"
	case ElementTypeInt32:
		return "Int32"
	case ElementTypeInt64:
		return "Int64"
	case ElementTypeUInt8:
		return "UInt8"
	case ElementTypeUInt16:
		return "UInt16"
	case ElementTypeUInt32:
		return "UInt32"
	case ElementTypeUInt64:
		return "UInt64"
	case ElementTypeUTF8_1:
		return "UTF8_1"
	case ElementTypeUTF8_2:
		return "UTF8_2"
	case ElementTypeUTF8_4:
		return "UTF8_4"
	case ElementTypeBytes1:
		return "Bytes1"
	case ElementTypeBytes2:
		return "Bytes2"
	case ElementTypeBytes4:
		return "Bytes4"
	case ElementTypeStruct:
		return "Struct"
	case ElementTypeArray:
		return "Array"
	case ElementTypeEnd:
		return "EndOfContainer"
	default:
		return "Unknown"
	}
}

// IsSignedInt reports whether e is a signed integer type.
func (e ElementType) IsSignedInt() bool {
	return e >= ElementTypeInt8 && e <= ElementTypeInt64
}

// IsUnsignedInt reports whether e is an unsigned integer type.
func (e ElementType) IsUnsignedInt() bool {
	return e >= ElementTypeUInt8 && e <= ElementTypeUInt64
}

// IsInt reports whether e is any integer type.
func (e ElementType) IsInt() bool {
	return e.IsSignedInt() || e.IsUnsignedInt()
}

// IsUTF8String reports whether e is a length-prefixed UTF-8 string type.
func (e ElementType) IsUTF8String() bool {
	return e >= ElementTypeUTF8_1 && e <= ElementTypeUTF8_4
}

// IsBytes reports whether e is a length-prefixed octet string type.
func (e ElementType) IsBytes() bool {
	return e >= ElementTypeBytes1 && e <= ElementTypeBytes4
}

// IsString reports whether e is any length-prefixed string type.
func (e ElementType) IsString() bool {
	return e.IsUTF8String() || e.IsBytes()
}

// IsContainer reports whether e opens a struct or array.
func (e ElementType) IsContainer() bool {
	return e == ElementTypeStruct || e == ElementTypeArray
}

// ValueSize returns the size in bytes of the inline value for
// fixed-width integer types. It is 0 for string and container types.
func (e ElementType) ValueSize() int {
	switch e {
	case ElementTypeInt8, ElementTypeUInt8:
		return 1
	case ElementTypeInt16, ElementTypeUInt16:
		return 2
	case ElementTypeInt32, ElementTypeUInt32:
		return 4
	case ElementTypeInt64, ElementTypeUInt64:
		return 8
	default:
		return 0
	}
}

// LengthFieldSize returns the size in bytes of the length prefix for
// string types. It is 0 for non-string types.
func (e ElementType) LengthFieldSize() int {
	switch e {
	case ElementTypeUTF8_1, ElementTypeBytes1:
		return 1
	case ElementTypeUTF8_2, ElementTypeBytes2:
		return 2
	case ElementTypeUTF8_4, ElementTypeBytes4:
		return 4
	default:
		return 0
	}
}

const (
	elementTypeMask = 0x1F // Lower 5 bits
	tagControlMask  = 0xE0 // Upper 3 bits
	tagControlShift = 5
)

// ParseControlOctet splits a control octet into its element type and
// tag control.
func ParseControlOctet(b byte) (ElementType, TagControl) {
	elemType := ElementType(b & elementTypeMask)
	tagCtrl := TagControl((b & tagControlMask) >> tagControlShift)
	return elemType, tagCtrl
}

// BuildControlOctet combines an element type and tag control into a
// control octet.
func BuildControlOctet(elemType ElementType, tagCtrl TagControl) byte {
	return byte(elemType&elementTypeMask) | byte(tagCtrl<<tagControlShift)
}
