package wire

import "encoding/binary"

// maxAdditionalHeaders bounds how many TLV entries Decode will allocate
// for, so a corrupt count field cannot drive an unbounded allocation.
const maxAdditionalHeaders = 1024

// AdditionalHeader is one type-length-value entry in a CommonHeader's
// additional-header list.
type AdditionalHeader struct {
	Type  uint8
	Value []byte
}

// Size returns the encoded size of the entry: 1-byte type, 2-byte
// big-endian length, and the value itself.
func (ah AdditionalHeader) Size() int {
	return 1 + 2 + len(ah.Value)
}

// EncodeTo serializes the entry into buf and returns the number of
// bytes written.
func (ah AdditionalHeader) EncodeTo(buf []byte) int {
	buf[0] = ah.Type
	binary.BigEndian.PutUint16(buf[1:], uint16(len(ah.Value)))
	copy(buf[3:], ah.Value)
	return ah.Size()
}

func decodeAdditionalHeader(data []byte) (AdditionalHeader, int, error) {
	if len(data) < 3 {
		return AdditionalHeader{}, 0, ErrTrailingData
	}
	typ := data[0]
	length := binary.BigEndian.Uint16(data[1:])
	if len(data) < 3+int(length) {
		return AdditionalHeader{}, 0, ErrTrailingData
	}
	value := make([]byte, length)
	copy(value, data[3:3+int(length)])
	return AdditionalHeader{Type: typ, Value: value}, 3 + int(length), nil
}

// FixedChannelResponseHeaderType and FixedChannelResponseHeaderValue
// are the magic additional header attached to every StartChannelResponse
// (spec §6, §9). Its meaning is undocumented upstream; it is preserved
// verbatim.
const FixedChannelResponseHeaderType uint8 = 129

var FixedChannelResponseHeaderValue = []byte{0x30, 0x00, 0x00, 0x01}

// FixedChannelResponseHeader returns a fresh copy of the magic
// additional header for a channel-open response.
func FixedChannelResponseHeader() AdditionalHeader {
	value := make([]byte, len(FixedChannelResponseHeaderValue))
	copy(value, FixedChannelResponseHeaderValue)
	return AdditionalHeader{Type: FixedChannelResponseHeaderType, Value: value}
}
