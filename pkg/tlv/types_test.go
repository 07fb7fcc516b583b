package tlv

import "testing"

func TestElementType_String(t *testing.T) {
	testCases := []struct {
		elemType ElementType
		expected string
	}{
		{ElementTypeInt8, "Int8"},
		{ElementTypeInt16, "Int16"},
		{ElementTypeInt32, "Int32"},
		{ElementTypeInt64, "Int64"},
		{ElementTypeUInt8, "UInt8"},
		{ElementTypeUInt16, "UInt16"},
		{ElementTypeUInt32, "UInt32"},
		{ElementTypeUInt64, "UInt64"},
		{ElementTypeUTF8_1, "UTF8_1"},
		{ElementTypeUTF8_2, "UTF8_2"},
		{ElementTypeUTF8_4, "UTF8_4"},
		{ElementTypeBytes1, "Bytes1"},
		{ElementTypeBytes2, "Bytes2"},
		{ElementTypeBytes4, "Bytes4"},
		{ElementTypeStruct, "Struct"},
		{ElementTypeArray, "Array"},
		{ElementTypeEnd, "EndOfContainer"},
		{ElementType(99), "Unknown"},
		{ElementType(-1), "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.elemType.String(); got != tc.expected {
				t.Errorf("ElementType(%d).String() = %q, want %q", tc.elemType, got, tc.expected)
			}
		})
	}
}

func TestElementType_IsSignedInt(t *testing.T) {
	signed := []ElementType{ElementTypeInt8, ElementTypeInt16, ElementTypeInt32, ElementTypeInt64}
	notSigned := []ElementType{
		ElementTypeUInt8, ElementTypeUInt16, ElementTypeUInt32, ElementTypeUInt64,
		ElementTypeUTF8_1, ElementTypeBytes1, ElementTypeStruct,
	}

	for _, et := range signed {
		if !et.IsSignedInt() {
			t.Errorf("%v.IsSignedInt() = false, want true", et)
		}
	}
	for _, et := range notSigned {
		if et.IsSignedInt() {
			t.Errorf("%v.IsSignedInt() = true, want false", et)
		}
	}
}

func TestElementType_IsUnsignedInt(t *testing.T) {
	unsigned := []ElementType{ElementTypeUInt8, ElementTypeUInt16, ElementTypeUInt32, ElementTypeUInt64}
	notUnsigned := []ElementType{
		ElementTypeInt8, ElementTypeInt16, ElementTypeInt32, ElementTypeInt64,
		ElementTypeUTF8_1, ElementTypeBytes1, ElementTypeStruct,
	}

	for _, et := range unsigned {
		if !et.IsUnsignedInt() {
			t.Errorf("%v.IsUnsignedInt() = false, want true", et)
		}
	}
	for _, et := range notUnsigned {
		if et.IsUnsignedInt() {
			t.Errorf("%v.IsUnsignedInt() = true, want false", et)
		}
	}
}

func TestElementType_IsInt(t *testing.T) {
	ints := []ElementType{
		ElementTypeInt8, ElementTypeInt16, ElementTypeInt32, ElementTypeInt64,
		ElementTypeUInt8, ElementTypeUInt16, ElementTypeUInt32, ElementTypeUInt64,
	}
	notInts := []ElementType{ElementTypeUTF8_1, ElementTypeBytes1, ElementTypeStruct}

	for _, et := range ints {
		if !et.IsInt() {
			t.Errorf("%v.IsInt() = false, want true", et)
		}
	}
	for _, et := range notInts {
		if et.IsInt() {
			t.Errorf("%v.IsInt() = true, want false", et)
		}
	}
}

func TestElementType_IsUTF8String(t *testing.T) {
	utf8s := []ElementType{ElementTypeUTF8_1, ElementTypeUTF8_2, ElementTypeUTF8_4}
	notUTF8s := []ElementType{
		ElementTypeInt8, ElementTypeUInt8,
		ElementTypeBytes1, ElementTypeBytes2, ElementTypeStruct,
	}

	for _, et := range utf8s {
		if !et.IsUTF8String() {
			t.Errorf("%v.IsUTF8String() = false, want true", et)
		}
	}
	for _, et := range notUTF8s {
		if et.IsUTF8String() {
			t.Errorf("%v.IsUTF8String() = true, want false", et)
		}
	}
}

func TestElementType_IsBytes(t *testing.T) {
	bytess := []ElementType{ElementTypeBytes1, ElementTypeBytes2, ElementTypeBytes4}
	notBytes := []ElementType{
		ElementTypeInt8, ElementTypeUInt8,
		ElementTypeUTF8_1, ElementTypeUTF8_2, ElementTypeStruct,
	}

	for _, et := range bytess {
		if !et.IsBytes() {
			t.Errorf("%v.IsBytes() = false, want true", et)
		}
	}
	for _, et := range notBytes {
		if et.IsBytes() {
			t.Errorf("%v.IsBytes() = true, want false", et)
		}
	}
}

func TestElementType_IsString(t *testing.T) {
	strings := []ElementType{
		ElementTypeUTF8_1, ElementTypeUTF8_2, ElementTypeUTF8_4,
		ElementTypeBytes1, ElementTypeBytes2, ElementTypeBytes4,
	}
	notStrings := []ElementType{
		ElementTypeInt8, ElementTypeUInt8,
		ElementTypeStruct, ElementTypeArray, ElementTypeEnd,
	}

	for _, et := range strings {
		if !et.IsString() {
			t.Errorf("%v.IsString() = false, want true", et)
		}
	}
	for _, et := range notStrings {
		if et.IsString() {
			t.Errorf("%v.IsString() = true, want false", et)
		}
	}
}

func TestElementType_IsContainer(t *testing.T) {
	containers := []ElementType{ElementTypeStruct, ElementTypeArray}
	notContainers := []ElementType{
		ElementTypeInt8, ElementTypeUInt8,
		ElementTypeUTF8_1, ElementTypeBytes1, ElementTypeEnd,
	}

	for _, et := range containers {
		if !et.IsContainer() {
			t.Errorf("%v.IsContainer() = false, want true", et)
		}
	}
	for _, et := range notContainers {
		if et.IsContainer() {
			t.Errorf("%v.IsContainer() = true, want false", et)
		}
	}
}

func TestElementType_ValueSize(t *testing.T) {
	testCases := []struct {
		elemType ElementType
		expected int
	}{
		{ElementTypeInt8, 1},
		{ElementTypeUInt8, 1},
		{ElementTypeInt16, 2},
		{ElementTypeUInt16, 2},
		{ElementTypeInt32, 4},
		{ElementTypeUInt32, 4},
		{ElementTypeInt64, 8},
		{ElementTypeUInt64, 8},
		{ElementTypeStruct, 0},
		{ElementTypeArray, 0},
		{ElementTypeEnd, 0},
		{ElementTypeUTF8_1, 0}, // variable length
		{ElementTypeBytes1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.elemType.String(), func(t *testing.T) {
			if got := tc.elemType.ValueSize(); got != tc.expected {
				t.Errorf("%v.ValueSize() = %d, want %d", tc.elemType, got, tc.expected)
			}
		})
	}
}

func TestElementType_LengthFieldSize(t *testing.T) {
	testCases := []struct {
		elemType ElementType
		expected int
	}{
		{ElementTypeUTF8_1, 1},
		{ElementTypeUTF8_2, 2},
		{ElementTypeUTF8_4, 4},
		{ElementTypeBytes1, 1},
		{ElementTypeBytes2, 2},
		{ElementTypeBytes4, 4},
		{ElementTypeInt8, 0},
		{ElementTypeUInt8, 0},
		{ElementTypeStruct, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.elemType.String(), func(t *testing.T) {
			if got := tc.elemType.LengthFieldSize(); got != tc.expected {
				t.Errorf("%v.LengthFieldSize() = %d, want %d", tc.elemType, got, tc.expected)
			}
		})
	}
}

func TestTagControl_String(t *testing.T) {
	testCases := []struct {
		ctrl     TagControl
		expected string
	}{
		{TagControlAnonymous, "Anonymous"},
		{TagControlContext, "Context"},
		{TagControl(99), "Unknown"},
		{TagControl(-1), "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.ctrl.String(); got != tc.expected {
				t.Errorf("TagControl(%d).String() = %q, want %q", tc.ctrl, got, tc.expected)
			}
		})
	}
}

func TestTagControl_Size(t *testing.T) {
	testCases := []struct {
		ctrl     TagControl
		expected int
	}{
		{TagControlAnonymous, 0},
		{TagControlContext, 1},
		{TagControl(99), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.ctrl.String(), func(t *testing.T) {
			if got := tc.ctrl.Size(); got != tc.expected {
				t.Errorf("%v.Size() = %d, want %d", tc.ctrl, got, tc.expected)
			}
		})
	}
}

func TestTag_Constructors(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		tag := Anonymous()
		if !tag.IsAnonymous() {
			t.Error("Anonymous().IsAnonymous() = false")
		}
		if tag.Control() != TagControlAnonymous {
			t.Errorf("Control() = %v, want Anonymous", tag.Control())
		}
	})

	t.Run("ContextTag", func(t *testing.T) {
		for _, num := range []uint8{0, 1, 127, 255} {
			tag := ContextTag(num)
			if !tag.IsContext() {
				t.Errorf("ContextTag(%d).IsContext() = false", num)
			}
			if tag.TagNumber() != num {
				t.Errorf("TagNumber() = %d, want %d", tag.TagNumber(), num)
			}
		}
	})
}

func TestTag_Size(t *testing.T) {
	testCases := []struct {
		name     string
		tag      Tag
		expected int
	}{
		{"anonymous", Anonymous(), 0},
		{"context", ContextTag(0), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tag.Size(); got != tc.expected {
				t.Errorf("Size() = %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestControlOctet(t *testing.T) {
	testCases := []struct {
		ctrl     byte
		elemType ElementType
		tagCtrl  TagControl
	}{
		{0x00, ElementTypeInt8, TagControlAnonymous},
		{0x04, ElementTypeUInt8, TagControlAnonymous},
		{0x15, ElementTypeStruct, TagControlAnonymous},
		{0x16, ElementTypeArray, TagControlAnonymous},
		{0x18, ElementTypeEnd, TagControlAnonymous},
		{0x20, ElementTypeInt8, TagControlContext},
		{0x24, ElementTypeUInt8, TagControlContext},
	}

	for _, tc := range testCases {
		t.Run("", func(t *testing.T) {
			gotElem, gotTag := ParseControlOctet(tc.ctrl)
			if gotElem != tc.elemType {
				t.Errorf("ParseControlOctet(0x%02x): elemType = %v, want %v", tc.ctrl, gotElem, tc.elemType)
			}
			if gotTag != tc.tagCtrl {
				t.Errorf("ParseControlOctet(0x%02x): tagCtrl = %v, want %v", tc.ctrl, gotTag, tc.tagCtrl)
			}

			built := BuildControlOctet(tc.elemType, tc.tagCtrl)
			if built != tc.ctrl {
				t.Errorf("BuildControlOctet(%v, %v) = 0x%02x, want 0x%02x", tc.elemType, tc.tagCtrl, built, tc.ctrl)
			}
		})
	}
}
