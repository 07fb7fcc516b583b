package wire

import "bytes"

import "github.com/kestrelnet/cdpsession/pkg/tlv"

const (
	tagThumbprint  = 1
	tagAuthPayload = 2
	tagHResult     = 1
)

// DeviceAuthRequest carries a thumbprint over (local nonce, remote
// nonce) and an opaque certificate-backed authentication payload
// (spec §4.F: DeviceAuthRequest / UserDeviceAuthRequest).
type DeviceAuthRequest struct {
	Thumbprint  []byte
	AuthPayload []byte
}

// Encode serializes the request body.
func (m *DeviceAuthRequest) Encode() ([]byte, error) {
	return encodeThumbprintPayload(m.Thumbprint, m.AuthPayload)
}

// DecodeDeviceAuthRequest parses a DeviceAuthRequest body. The same
// wire shape is used for UserDeviceAuthRequest.
func DecodeDeviceAuthRequest(data []byte) (*DeviceAuthRequest, error) {
	thumb, payload, err := decodeThumbprintPayload(data)
	if err != nil {
		return nil, err
	}
	return &DeviceAuthRequest{Thumbprint: thumb, AuthPayload: payload}, nil
}

// DeviceAuthResponse carries this endpoint's own certificate-backed
// authentication payload in reply.
type DeviceAuthResponse struct {
	AuthPayload []byte
}

// Encode serializes the response body.
func (m *DeviceAuthResponse) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagAuthPayload), m.AuthPayload); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDeviceAuthResponse parses a DeviceAuthResponse body. The same
// wire shape is used for UserDeviceAuthResponse.
func DecodeDeviceAuthResponse(data []byte) (*DeviceAuthResponse, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return nil, err
	}
	resp := &DeviceAuthResponse{}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if r.Tag().TagNumber() == tagAuthPayload {
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			resp.AuthPayload = v
		}
	}
	return resp, nil
}

func encodeThumbprintPayload(thumbprint, payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagThumbprint), thumbprint); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagAuthPayload), payload); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeThumbprintPayload(data []byte) (thumbprint, payload []byte, err error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return nil, nil, err
	}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
		switch r.Tag().TagNumber() {
		case tagThumbprint:
			v, err := r.Bytes()
			if err != nil {
				return nil, nil, err
			}
			thumbprint = v
		case tagAuthPayload:
			v, err := r.Bytes()
			if err != nil {
				return nil, nil, err
			}
			payload = v
		}
	}
	return thumbprint, payload, nil
}

// UserDeviceAuthRequest is the user-interactive counterpart of
// DeviceAuthRequest; it shares the same wire shape.
type UserDeviceAuthRequest = DeviceAuthRequest

// UserDeviceAuthResponse shares DeviceAuthResponse's wire shape.
type UserDeviceAuthResponse = DeviceAuthResponse

// AuthDoneRequest has no body; its arrival is itself the signal.
type AuthDoneRequest struct{}

// Encode serializes the (empty) request body.
func (AuthDoneRequest) Encode() ([]byte, error) { return encodeEmptyStruct() }

// DecodeAuthDoneRequest parses an AuthDoneRequest body.
func DecodeAuthDoneRequest(data []byte) (AuthDoneRequest, error) {
	return AuthDoneRequest{}, decodeEmptyStruct(data)
}

// AuthDoneResponse carries the result of finalizing authentication.
type AuthDoneResponse struct {
	HResult int32
}

// Encode serializes the response body.
func (m *AuthDoneResponse) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutInt(tlv.ContextTag(tagHResult), int64(m.HResult)); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeAuthDoneResponse parses an AuthDoneResponse body.
func DecodeAuthDoneResponse(data []byte) (*AuthDoneResponse, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return nil, err
	}
	resp := &AuthDoneResponse{}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if r.Tag().TagNumber() == tagHResult {
			v, err := r.Int()
			if err != nil {
				return nil, err
			}
			resp.HResult = int32(v)
		}
	}
	return resp, nil
}

func encodeEmptyStruct() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	return buf.Bytes(), w.EndContainer()
}

func decodeEmptyStruct(data []byte) error {
	r := tlv.NewReader(bytes.NewReader(data))
	return enterAnonymousStruct(r)
}
