package tlv

import (
	"bytes"
	"io"
	"testing"
)

func TestReader_EOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{}))
	if err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_ErrNoElement(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x2a})) // Int8 42

	if _, err := r.Int(); err != ErrNoElement {
		t.Errorf("Int() before Next(): expected ErrNoElement, got %v", err)
	}
	if _, err := r.Uint(); err != ErrNoElement {
		t.Errorf("Uint() before Next(): expected ErrNoElement, got %v", err)
	}
	if _, err := r.String(); err != ErrNoElement {
		t.Errorf("String() before Next(): expected ErrNoElement, got %v", err)
	}
	if _, err := r.Bytes(); err != ErrNoElement {
		t.Errorf("Bytes() before Next(): expected ErrNoElement, got %v", err)
	}
	if err := r.EnterContainer(); err != ErrNoElement {
		t.Errorf("EnterContainer() before Next(): expected ErrNoElement, got %v", err)
	}
}

func TestReader_ErrTypeMismatch(t *testing.T) {
	testCases := []struct {
		name     string
		encoding []byte
		readFunc func(r *Reader) error
	}{
		{
			name:     "Int on UInt",
			encoding: []byte{0x04, 0x2a}, // UInt8 42
			readFunc: func(r *Reader) error { _, err := r.Int(); return err },
		},
		{
			name:     "Uint on Int",
			encoding: []byte{0x00, 0x2a}, // Int8 42
			readFunc: func(r *Reader) error { _, err := r.Uint(); return err },
		},
		{
			name:     "String on Int",
			encoding: []byte{0x00, 0x2a}, // Int8 42
			readFunc: func(r *Reader) error { _, err := r.String(); return err },
		},
		{
			name:     "String on Bytes",
			encoding: []byte{0x10, 0x02, 0x00, 0x01}, // octet string
			readFunc: func(r *Reader) error { _, err := r.String(); return err },
		},
		{
			name:     "Bytes on String",
			encoding: []byte{0x0c, 0x02, 0x68, 0x69}, // UTF-8 "hi"
			readFunc: func(r *Reader) error { _, err := r.Bytes(); return err },
		},
		{
			name:     "EnterContainer on Int",
			encoding: []byte{0x00, 0x2a}, // Int8 42
			readFunc: func(r *Reader) error { return r.EnterContainer() },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tc.encoding))
			if err := r.Next(); err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if err := tc.readFunc(r); err != ErrTypeMismatch {
				t.Errorf("expected ErrTypeMismatch, got %v", err)
			}
		})
	}
}

func TestReader_ErrValueAlreadyRead(t *testing.T) {
	testCases := []struct {
		name     string
		encoding []byte
		readFunc func(r *Reader) error
	}{
		{
			name:     "Int twice",
			encoding: []byte{0x00, 0x2a},
			readFunc: func(r *Reader) error { _, err := r.Int(); return err },
		},
		{
			name:     "Uint twice",
			encoding: []byte{0x04, 0x2a},
			readFunc: func(r *Reader) error { _, err := r.Uint(); return err },
		},
		{
			name:     "String twice",
			encoding: []byte{0x0c, 0x02, 0x68, 0x69},
			readFunc: func(r *Reader) error { _, err := r.String(); return err },
		},
		{
			name:     "Bytes twice",
			encoding: []byte{0x10, 0x02, 0x00, 0x01},
			readFunc: func(r *Reader) error { _, err := r.Bytes(); return err },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tc.encoding))
			if err := r.Next(); err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if err := tc.readFunc(r); err != nil {
				t.Fatalf("first read failed: %v", err)
			}
			if err := tc.readFunc(r); err != ErrValueAlreadyRead {
				t.Errorf("expected ErrValueAlreadyRead, got %v", err)
			}
		})
	}
}

func TestReader_TruncatedInput(t *testing.T) {
	nextErrorCases := []struct {
		name     string
		encoding []byte
	}{
		{"truncated_int16", []byte{0x01, 0x2a}},      // missing second byte
		{"truncated_int32", []byte{0x02, 0x2a, 0x00}}, // missing bytes
		{"truncated_int64", []byte{0x03, 0x00, 0x00}}, // missing bytes
		{"truncated_string_len", []byte{0x0c}},        // missing length
		{"truncated_context_tag", []byte{0x20}},       // missing tag byte
	}

	for _, tc := range nextErrorCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tc.encoding))
			if err := r.Next(); err == nil {
				t.Error("expected error for truncated input during Next(), got nil")
			}
		})
	}

	// The string/bytes data itself is read lazily, so Next() succeeds when
	// the data is truncated but the subsequent value read fails.
	t.Run("truncated_string_data", func(t *testing.T) {
		encoding := []byte{0x0c, 0x05, 0x68, 0x69} // length says 5, 2 bytes follow
		r := NewReader(bytes.NewReader(encoding))
		if err := r.Next(); err != nil {
			t.Fatalf("Next() should succeed, got error: %v", err)
		}
		if _, err := r.String(); err == nil {
			t.Error("expected error for truncated string data, got nil")
		}
	})

	t.Run("truncated_bytes_data", func(t *testing.T) {
		encoding := []byte{0x10, 0x05, 0x00, 0x01} // length says 5, 2 bytes follow
		r := NewReader(bytes.NewReader(encoding))
		if err := r.Next(); err != nil {
			t.Fatalf("Next() should succeed, got error: %v", err)
		}
		if _, err := r.Bytes(); err == nil {
			t.Error("expected error for truncated bytes data, got nil")
		}
	})
}

// TestReader_StructFields mirrors how pkg/wire decodes a tagged struct
// body: enter the container, then loop Next until the end marker,
// dispatching on the context tag.
func TestReader_StructFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.StartStructure(Anonymous()); err != nil {
		t.Fatal(err)
	}
	if err := w.PutBytes(ContextTag(1), []byte{0xAA, 0xBB}); err != nil {
		t.Fatal(err)
	}
	if err := w.PutUint(ContextTag(2), 3333); err != nil {
		t.Fatal(err)
	}
	if err := w.EndContainer(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if r.Type() != ElementTypeStruct {
		t.Fatalf("Type() = %v, want Struct", r.Type())
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}

	var gotBytes []byte
	var gotUint uint64
	for {
		if err := r.Next(); err != nil {
			t.Fatal(err)
		}
		if r.Type() == ElementTypeEnd {
			break
		}
		switch r.Tag().TagNumber() {
		case 1:
			v, err := r.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			gotBytes = v
		case 2:
			v, err := r.Uint()
			if err != nil {
				t.Fatal(err)
			}
			gotUint = v
		}
	}

	if !bytes.Equal(gotBytes, []byte{0xAA, 0xBB}) {
		t.Errorf("field 1 = %x, want aabb", gotBytes)
	}
	if gotUint != 3333 {
		t.Errorf("field 2 = %d, want 3333", gotUint)
	}
}

// TestReader_ArrayOfStructs mirrors how the transport-upgrade endpoint
// list is decoded: an array of anonymous-tagged structs, terminated by
// matching End markers at each nesting level.
func TestReader_ArrayOfStructs(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.StartArray(ContextTag(1)); err != nil {
		t.Fatal(err)
	}
	for _, port := range []uint64{443, 8443} {
		if err := w.StartStructure(Anonymous()); err != nil {
			t.Fatal(err)
		}
		if err := w.PutUint(ContextTag(1), port); err != nil {
			t.Fatal(err)
		}
		if err := w.EndContainer(); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.EndContainer(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if r.Type() != ElementTypeArray {
		t.Fatalf("Type() = %v, want Array", r.Type())
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}

	var ports []uint64
	for {
		if err := r.Next(); err != nil {
			t.Fatal(err)
		}
		if r.Type() == ElementTypeEnd {
			break
		}
		if r.Type() != ElementTypeStruct {
			t.Fatalf("element type = %v, want Struct", r.Type())
		}
		if err := r.EnterContainer(); err != nil {
			t.Fatal(err)
		}
		if err := r.Next(); err != nil {
			t.Fatal(err)
		}
		v, err := r.Uint()
		if err != nil {
			t.Fatal(err)
		}
		ports = append(ports, v)
		// Consume the struct's own End marker before the array loop
		// asks for the next element.
		if err := r.Next(); err != nil {
			t.Fatal(err)
		}
		if r.Type() != ElementTypeEnd {
			t.Fatalf("expected struct End, got %v", r.Type())
		}
	}

	if len(ports) != 2 || ports[0] != 443 || ports[1] != 8443 {
		t.Errorf("ports = %v, want [443 8443]", ports)
	}
}
