package wire

import (
	"bytes"

	"github.com/kestrelnet/cdpsession/pkg/crypto"
	"github.com/kestrelnet/cdpsession/pkg/tlv"
)

// ConnectionMessageType selects the sub-handler for a Connect frame
// (spec §4.F dispatch table).
type ConnectionMessageType uint8

const (
	ConnectionMessageConnectRequest              ConnectionMessageType = 0
	ConnectionMessageConnectResponse             ConnectionMessageType = 1
	ConnectionMessageDeviceAuthRequest           ConnectionMessageType = 2
	ConnectionMessageDeviceAuthResponse          ConnectionMessageType = 3
	ConnectionMessageUserDeviceAuthRequest       ConnectionMessageType = 4
	ConnectionMessageUserDeviceAuthResponse      ConnectionMessageType = 5
	ConnectionMessageUpgradeRequest              ConnectionMessageType = 6
	ConnectionMessageUpgradeResponse             ConnectionMessageType = 7
	ConnectionMessageUpgradeFinalization         ConnectionMessageType = 8
	ConnectionMessageUpgradeFinalizationResponse ConnectionMessageType = 9
	ConnectionMessageUpgradeFailure              ConnectionMessageType = 10
	ConnectionMessageTransportRequest            ConnectionMessageType = 11
	ConnectionMessageTransportConfirmation       ConnectionMessageType = 12
	ConnectionMessageAuthDoneRequest             ConnectionMessageType = 13
	ConnectionMessageAuthDoneResponse            ConnectionMessageType = 14
	ConnectionMessageDeviceInfoMessage           ConnectionMessageType = 15
	ConnectionMessageDeviceInfoResponseMessage   ConnectionMessageType = 16
)

// ConnectionHeader prefixes the body of every Connect frame and selects
// which sub-message follows.
type ConnectionHeader struct {
	MessageType ConnectionMessageType
}

// Size is the encoded size of a ConnectionHeader.
func (h ConnectionHeader) Size() int { return 1 }

// EncodeTo writes the header into buf and returns bytes written.
func (h ConnectionHeader) EncodeTo(buf []byte) int {
	buf[0] = byte(h.MessageType)
	return 1
}

// DecodeConnectionHeader reads a ConnectionHeader, returning bytes consumed.
func DecodeConnectionHeader(data []byte) (ConnectionHeader, int, error) {
	if len(data) < 1 {
		return ConnectionHeader{}, 0, ErrHeaderTooShort
	}
	return ConnectionHeader{MessageType: ConnectionMessageType(data[0])}, 1, nil
}

// ConnectResult is the outcome field of a ConnectResponse.
type ConnectResult uint8

const (
	ConnectResultPending ConnectResult = 0
	ConnectResultSuccess ConnectResult = 1
	ConnectResultFailure ConnectResult = 2
)

// TLV context tags shared by the Connect sub-protocol messages.
const (
	tagPublicKeyX = 1
	tagPublicKeyY = 2
	tagNonce      = 3
)

// ConnectRequest carries the initiator's ephemeral P-256 public key and
// nonce (spec §4.F: ConnectRequest).
type ConnectRequest struct {
	PublicKeyX [32]byte
	PublicKeyY [32]byte
	Nonce      [64]byte
}

// Encode serializes the ConnectRequest body.
func (r *ConnectRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagPublicKeyX), r.PublicKeyX[:]); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagPublicKeyY), r.PublicKeyY[:]); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagNonce), r.Nonce[:]); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeConnectRequest parses a ConnectRequest body.
func DecodeConnectRequest(data []byte) (*ConnectRequest, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	req := &ConnectRequest{}
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
		case tagPublicKeyX:
			if err := readFixedBytes(r, req.PublicKeyX[:]); err != nil {
				return nil, err
			}
		case tagPublicKeyY:
			if err := readFixedBytes(r, req.PublicKeyY[:]); err != nil {
				return nil, err
			}
		case tagNonce:
			if err := readFixedBytes(r, req.Nonce[:]); err != nil {
				return nil, err
			}
		}
	}
	return req, nil
}

// ConnectResponse is the reply to ConnectRequest, carrying the
// responder's own key material (spec §4.F, §8 scenario 1).
type ConnectResponse struct {
	Result              ConnectResult
	Nonce               [64]byte
	PublicKeyX          [32]byte
	PublicKeyY          [32]byte
	HmacSize            uint8
	MessageFragmentSize uint32
}

const (
	tagConnectResult      = 4
	tagHmacSize           = 5
	tagMessageFragmentSz  = 6
)

// Encode serializes the ConnectResponse body.
func (r *ConnectResponse) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.ContextTag(tagConnectResult), uint64(r.Result)); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagNonce), r.Nonce[:]); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagPublicKeyX), r.PublicKeyX[:]); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagPublicKeyY), r.PublicKeyY[:]); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.ContextTag(tagHmacSize), uint64(r.HmacSize)); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.ContextTag(tagMessageFragmentSz), uint64(r.MessageFragmentSize)); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeConnectResponse parses a ConnectResponse body.
func DecodeConnectResponse(data []byte) (*ConnectResponse, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	resp := &ConnectResponse{}
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
		case tagConnectResult:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			resp.Result = ConnectResult(v)
		case tagNonce:
			if err := readFixedBytes(r, resp.Nonce[:]); err != nil {
				return nil, err
			}
		case tagPublicKeyX:
			if err := readFixedBytes(r, resp.PublicKeyX[:]); err != nil {
				return nil, err
			}
		case tagPublicKeyY:
			if err := readFixedBytes(r, resp.PublicKeyY[:]); err != nil {
				return nil, err
			}
		case tagHmacSize:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			resp.HmacSize = uint8(v)
		case tagMessageFragmentSz:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			resp.MessageFragmentSize = uint32(v)
		}
	}
	return resp, nil
}

// KeyMaterial builds remote key material from a ConnectRequest's split
// public-key coordinates and its nonce.
func (r *ConnectRequest) KeyMaterial() (*crypto.KeyMaterial, error) {
	return crypto.KeyMaterialFromRemote(r.PublicKeyX[:], r.PublicKeyY[:], r.Nonce[:])
}
