package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/kestrelnet/cdpsession/pkg/tlv"
)

// ControlMessageType selects the sub-handler for a Control frame
// (spec §4.F dispatch table).
type ControlMessageType uint8

const (
	ControlMessageStartChannelRequest  ControlMessageType = 0
	ControlMessageStartChannelResponse ControlMessageType = 1
)

// ControlHeader prefixes the body of every Control frame.
type ControlHeader struct {
	MessageType ControlMessageType
}

// Size is the encoded size of a ControlHeader.
func (h ControlHeader) Size() int { return 1 }

// EncodeTo writes the header into buf and returns bytes written.
func (h ControlHeader) EncodeTo(buf []byte) int {
	buf[0] = byte(h.MessageType)
	return 1
}

// DecodeControlHeader reads a ControlHeader, returning bytes consumed.
func DecodeControlHeader(data []byte) (ControlHeader, int, error) {
	if len(data) < 1 {
		return ControlHeader{}, 0, ErrHeaderTooShort
	}
	return ControlHeader{MessageType: ControlMessageType(data[0])}, 1, nil
}

const (
	tagAppID   = 1
	tagAppName = 2
)

// StartChannelRequest names the application the initiator wants a
// dedicated channel opened for (spec §8 scenario 3).
type StartChannelRequest struct {
	AppID   string
	AppName string
}

// Encode serializes the StartChannelRequest body.
func (r *StartChannelRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.ContextTag(tagAppID), r.AppID); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.ContextTag(tagAppName), r.AppName); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeStartChannelRequest parses a StartChannelRequest body.
func DecodeStartChannelRequest(data []byte) (*StartChannelRequest, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	req := &StartChannelRequest{}
	if err := enterAnonymousStruct(r); err != nil {
		return nil, err
	}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		switch r.Tag().TagNumber() {
		case tagAppID:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			req.AppID = v
		case tagAppName:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			req.AppName = v
		}
	}
	return req, nil
}

// StartChannelResponse reports the channel id assigned to a
// StartChannelRequest. Its wire shape is a raw fixed layout, not TLV:
// a one-byte status followed by an 8-byte big-endian channel id (spec
// §6, confirmed by §8 scenario 3's literal response bytes).
type StartChannelResponse struct {
	Status    uint8
	ChannelID uint64
}

// Size is the encoded size of a StartChannelResponse body.
func (r StartChannelResponse) Size() int { return 9 }

// Encode serializes the StartChannelResponse body.
func (r StartChannelResponse) Encode() []byte {
	buf := make([]byte, r.Size())
	r.EncodeTo(buf)
	return buf
}

// EncodeTo writes the body into buf and returns bytes written.
func (r StartChannelResponse) EncodeTo(buf []byte) int {
	buf[0] = r.Status
	binary.BigEndian.PutUint64(buf[1:9], r.ChannelID)
	return 9
}

// DecodeStartChannelResponse parses a StartChannelResponse body.
func DecodeStartChannelResponse(data []byte) (StartChannelResponse, error) {
	if len(data) < 9 {
		return StartChannelResponse{}, ErrInvalidMessage
	}
	return StartChannelResponse{
		Status:    data[0],
		ChannelID: binary.BigEndian.Uint64(data[1:9]),
	}, nil
}
