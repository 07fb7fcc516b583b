// Package wire implements the session core's frame codec: the
// CommonHeader that prefixes every frame, its additional-header TLV
// list, and the session-id bit layout used by the registry and state
// machine. All multi-byte integers are big-endian on the wire.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"
)

// MessageType selects which sub-protocol a frame's payload belongs to.
type MessageType uint8

const (
	MessageTypeConnect             MessageType = 0
	MessageTypeControl             MessageType = 1
	MessageTypeSession             MessageType = 2
	MessageTypeReliabilityResponse MessageType = 3
)

// String returns a human-readable name for the message type.
func (m MessageType) String() string {
	switch m {
	case MessageTypeConnect:
		return "Connect"
	case MessageTypeControl:
		return "Control"
	case MessageTypeSession:
		return "Session"
	case MessageTypeReliabilityResponse:
		return "ReliabilityResponse"
	default:
		return "Unknown"
	}
}

// HeaderSignature is the fixed 8-byte magic that opens every frame.
var HeaderSignature = [8]byte{'C', 'D', 'P', 'S', 'E', 'S', 'S', 0x01}

// fixedHeaderSize is the encoded size of CommonHeader excluding the
// additional-header list: Sig(8) + MsgType(1) + Flags(2) + PayloadSize(4)
// + SessionID(8) + SequenceNumber(4) + FragmentIndex(2) + FragmentCount(2)
// + RequestID(8) + ReplyToId(8) + ChannelID(8) + AdditionalHeaderCount(2).
const fixedHeaderSize = 8 + 1 + 2 + 4 + 8 + 4 + 2 + 2 + 8 + 8 + 8 + 2

// SessionIDHostFlag is bit 31 of the composite session id: the
// host-role flag each side sets on outgoing frames to distinguish
// originator.
const SessionIDHostFlag uint64 = 1 << 31

// sessionIDLowMask isolates bits 30..0 of the composite session id's
// low half, which carry the originator's peer's local session id.
const sessionIDLowMask uint64 = SessionIDHostFlag - 1

// CommonHeader is the frame header parsed ahead of every payload
// (spec §4.A / §6).
type CommonHeader struct {
	MessageType       MessageType
	Flags             uint16
	PayloadSize       uint32
	SessionID         uint64
	SequenceNumber    uint32
	FragmentIndex     uint16
	FragmentCount     uint16
	RequestID         uint64
	ReplyToId         uint64
	ChannelID         uint64
	AdditionalHeaders []AdditionalHeader
}

// Size returns the encoded size of the header in bytes.
func (h *CommonHeader) Size() int {
	size := fixedHeaderSize
	for _, ah := range h.AdditionalHeaders {
		size += ah.Size()
	}
	return size
}

// Encode serializes the header to a new byte slice.
func (h *CommonHeader) Encode() []byte {
	buf := make([]byte, h.Size())
	h.EncodeTo(buf)
	return buf
}

// EncodeTo serializes the header into buf, which must be at least
// Size() bytes long. Returns the number of bytes written.
func (h *CommonHeader) EncodeTo(buf []byte) int {
	offset := 0
	offset += copy(buf[offset:], HeaderSignature[:])

	buf[offset] = byte(h.MessageType)
	offset++

	binary.BigEndian.PutUint16(buf[offset:], h.Flags)
	offset += 2
	binary.BigEndian.PutUint32(buf[offset:], h.PayloadSize)
	offset += 4
	binary.BigEndian.PutUint64(buf[offset:], h.SessionID)
	offset += 8
	binary.BigEndian.PutUint32(buf[offset:], h.SequenceNumber)
	offset += 4
	binary.BigEndian.PutUint16(buf[offset:], h.FragmentIndex)
	offset += 2
	binary.BigEndian.PutUint16(buf[offset:], h.FragmentCount)
	offset += 2
	binary.BigEndian.PutUint64(buf[offset:], h.RequestID)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], h.ReplyToId)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], h.ChannelID)
	offset += 8

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(h.AdditionalHeaders)))
	offset += 2
	for _, ah := range h.AdditionalHeaders {
		offset += ah.EncodeTo(buf[offset:])
	}

	return offset
}

// Decode parses a CommonHeader from data, returning the number of
// bytes consumed.
func Decode(data []byte) (*CommonHeader, int, error) {
	if len(data) < fixedHeaderSize {
		return nil, 0, ErrHeaderTooShort
	}

	h := &CommonHeader{}
	offset := 8 // signature is not re-validated here; callers that care check HeaderSignature themselves

	h.MessageType = MessageType(data[offset])
	offset++
	h.Flags = binary.BigEndian.Uint16(data[offset:])
	offset += 2
	h.PayloadSize = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	h.SessionID = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	h.SequenceNumber = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	h.FragmentIndex = binary.BigEndian.Uint16(data[offset:])
	offset += 2
	h.FragmentCount = binary.BigEndian.Uint16(data[offset:])
	offset += 2
	h.RequestID = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	h.ReplyToId = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	h.ChannelID = binary.BigEndian.Uint64(data[offset:])
	offset += 8

	count := binary.BigEndian.Uint16(data[offset:])
	offset += 2
	if count > maxAdditionalHeaders {
		return nil, 0, ErrTooManyAdditionalHeaders
	}

	h.AdditionalHeaders = make([]AdditionalHeader, 0, count)
	for i := uint16(0); i < count; i++ {
		ah, n, err := decodeAdditionalHeader(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		h.AdditionalHeaders = append(h.AdditionalHeaders, ah)
		offset += n
	}

	return h, offset, nil
}

// ReadHeader incrementally reads one CommonHeader from a stream
// transport, which (unlike Decode) cannot assume a full frame is
// already buffered. It returns the decoded header along with the
// exact header bytes consumed, for reuse as HMAC AAD.
func ReadHeader(r io.Reader) (*CommonHeader, []byte, error) {
	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(fixed[:8], HeaderSignature[:]) {
		return nil, nil, ErrInvalidMessage
	}

	h := &CommonHeader{}
	offset := 8
	h.MessageType = MessageType(fixed[offset])
	offset++
	h.Flags = binary.BigEndian.Uint16(fixed[offset:])
	offset += 2
	h.PayloadSize = binary.BigEndian.Uint32(fixed[offset:])
	offset += 4
	h.SessionID = binary.BigEndian.Uint64(fixed[offset:])
	offset += 8
	h.SequenceNumber = binary.BigEndian.Uint32(fixed[offset:])
	offset += 4
	h.FragmentIndex = binary.BigEndian.Uint16(fixed[offset:])
	offset += 2
	h.FragmentCount = binary.BigEndian.Uint16(fixed[offset:])
	offset += 2
	h.RequestID = binary.BigEndian.Uint64(fixed[offset:])
	offset += 8
	h.ReplyToId = binary.BigEndian.Uint64(fixed[offset:])
	offset += 8
	h.ChannelID = binary.BigEndian.Uint64(fixed[offset:])
	offset += 8
	count := binary.BigEndian.Uint16(fixed[offset:])
	if count > maxAdditionalHeaders {
		return nil, nil, ErrTooManyAdditionalHeaders
	}

	headerBytes := fixed
	h.AdditionalHeaders = make([]AdditionalHeader, 0, count)
	for i := uint16(0); i < count; i++ {
		prefix := make([]byte, 3)
		if _, err := io.ReadFull(r, prefix); err != nil {
			return nil, nil, err
		}
		length := binary.BigEndian.Uint16(prefix[1:])
		value := make([]byte, length)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, nil, err
		}
		h.AdditionalHeaders = append(h.AdditionalHeaders, AdditionalHeader{Type: prefix[0], Value: value})
		headerBytes = append(headerBytes, prefix...)
		headerBytes = append(headerBytes, value...)
	}

	return h, headerBytes, nil
}

// CorrectClientSessionBit flips the host-role flag of a session id,
// producing the value a reply frame should carry so that it is
// attributed to the correct originator.
func CorrectClientSessionBit(sessionID uint64) uint64 {
	return sessionID ^ SessionIDHostFlag
}

// ComposeSessionID builds the wire composite session id from an
// originator's local session id, its host-role bit, and the
// originator's peer's local session id (0 before the peer has one).
func ComposeSessionID(local uint32, hostRole bool, peerLocal uint32) uint64 {
	low := uint64(peerLocal) & sessionIDLowMask
	if hostRole {
		low |= SessionIDHostFlag
	}
	return uint64(local)<<32 | low
}

// DecomposeSessionID splits a wire composite session id into the
// originator's local session id, its host-role bit, and the
// originator's peer's local session id.
func DecomposeSessionID(sessionID uint64) (local uint32, hostRole bool, peerLocal uint32) {
	local = uint32(sessionID >> 32)
	low := uint32(sessionID)
	hostRole = uint64(low)&SessionIDHostFlag != 0
	peerLocal = low & uint32(sessionIDLowMask)
	return
}
