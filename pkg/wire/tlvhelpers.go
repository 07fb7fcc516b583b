package wire

import (
	"io"

	"github.com/kestrelnet/cdpsession/pkg/tlv"
)

// enterAnonymousStruct advances past the opening anonymous structure
// element every sub-protocol message body is wrapped in.
func enterAnonymousStruct(r *tlv.Reader) error {
	if err := r.Next(); err != nil {
		return err
	}
	if r.Type() != tlv.ElementTypeStruct {
		return ErrInvalidMessage
	}
	return r.EnterContainer()
}

// nextStructField advances to the next field of an open structure.
// done is true once the end of the structure is reached.
func nextStructField(r *tlv.Reader) (done bool, err error) {
	err = r.Next()
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if r.Type() == tlv.ElementTypeEnd {
		return true, nil
	}
	if !r.Tag().IsContext() {
		return false, nil
	}
	return false, nil
}

// readFixedBytes reads an octet-string field into a fixed-size
// destination, failing if the lengths disagree.
func readFixedBytes(r *tlv.Reader, dst []byte) error {
	v, err := r.Bytes()
	if err != nil {
		return err
	}
	if len(v) != len(dst) {
		return ErrInvalidMessage
	}
	copy(dst, v)
	return nil
}
