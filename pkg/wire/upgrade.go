package wire

import (
	"bytes"

	"github.com/kestrelnet/cdpsession/pkg/tlv"
)

const (
	tagEndpointTransport = 1
	tagEndpointHost      = 2
	tagEndpointPort      = 3
	tagEndpoints         = 1
	tagUpgradeHResult    = 1
	tagTransportBody     = 1
)

// Endpoint advertises one transport a peer is willing to upgrade the
// session onto (spec §4.F UpgradeRequest/UpgradeResponse, §8 scenario 5).
type Endpoint struct {
	Transport string
	Host      string
	Port      uint16
}

func (e Endpoint) encode(w *tlv.Writer, tag tlv.Tag) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutString(tlv.ContextTag(tagEndpointTransport), e.Transport); err != nil {
		return err
	}
	if err := w.PutString(tlv.ContextTag(tagEndpointHost), e.Host); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(tagEndpointPort), uint64(e.Port)); err != nil {
		return err
	}
	return w.EndContainer()
}

func decodeEndpoint(r *tlv.Reader) (Endpoint, error) {
	var ep Endpoint
	if r.Type() != tlv.ElementTypeStruct {
		return ep, ErrInvalidMessage
	}
	if err := r.EnterContainer(); err != nil {
		return ep, err
	}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return ep, err
		}
		if done {
			break
		}
		switch r.Tag().TagNumber() {
		case tagEndpointTransport:
			v, err := r.String()
			if err != nil {
				return ep, err
			}
			ep.Transport = v
		case tagEndpointHost:
			v, err := r.String()
			if err != nil {
				return ep, err
			}
			ep.Host = v
		case tagEndpointPort:
			v, err := r.Uint()
			if err != nil {
				return ep, err
			}
			ep.Port = uint16(v)
		}
	}
	return ep, nil
}

// endpointList is the shared wire shape of UpgradeRequest and
// UpgradeResponse: a struct containing one array of Endpoint.
type endpointList struct {
	Endpoints []Endpoint
}

func (m endpointList) encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.StartArray(tlv.ContextTag(tagEndpoints)); err != nil {
		return nil, err
	}
	for _, ep := range m.Endpoints {
		if err := ep.encode(w, tlv.Anonymous()); err != nil {
			return nil, err
		}
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), w.EndContainer()
}

func decodeEndpointList(data []byte) (endpointList, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return endpointList{}, err
	}
	var out endpointList
	for {
		done, err := nextStructField(r)
		if err != nil {
			return endpointList{}, err
		}
		if done {
			break
		}
		if r.Tag().TagNumber() != tagEndpoints || r.Type() != tlv.ElementTypeArray {
			continue
		}
		if err := r.EnterContainer(); err != nil {
			return endpointList{}, err
		}
		for {
			if err := r.Next(); err != nil {
				return endpointList{}, err
			}
			if r.Type() == tlv.ElementTypeEnd {
				break
			}
			ep, err := decodeEndpoint(r)
			if err != nil {
				return endpointList{}, err
			}
			out.Endpoints = append(out.Endpoints, ep)
		}
	}
	return out, nil
}

// UpgradeRequest lists the transports the initiator offers to move
// the session onto.
type UpgradeRequest struct{ Endpoints []Endpoint }

// Encode serializes the UpgradeRequest body.
func (m *UpgradeRequest) Encode() ([]byte, error) {
	return endpointList{Endpoints: m.Endpoints}.encode()
}

// DecodeUpgradeRequest parses an UpgradeRequest body.
func DecodeUpgradeRequest(data []byte) (*UpgradeRequest, error) {
	l, err := decodeEndpointList(data)
	if err != nil {
		return nil, err
	}
	return &UpgradeRequest{Endpoints: l.Endpoints}, nil
}

// UpgradeResponse lists the transports the responder accepts, shares
// UpgradeRequest's wire shape.
type UpgradeResponse struct{ Endpoints []Endpoint }

// Encode serializes the UpgradeResponse body.
func (m *UpgradeResponse) Encode() ([]byte, error) {
	return endpointList{Endpoints: m.Endpoints}.encode()
}

// DecodeUpgradeResponse parses an UpgradeResponse body.
func DecodeUpgradeResponse(data []byte) (*UpgradeResponse, error) {
	l, err := decodeEndpointList(data)
	if err != nil {
		return nil, err
	}
	return &UpgradeResponse{Endpoints: l.Endpoints}, nil
}

// UpgradeFinalization has no body; it commits both peers to the
// chosen transport.
type UpgradeFinalization struct{}

// Encode serializes the (empty) request body.
func (UpgradeFinalization) Encode() ([]byte, error) { return encodeEmptyStruct() }

// DecodeUpgradeFinalization parses an UpgradeFinalization body.
func DecodeUpgradeFinalization(data []byte) (UpgradeFinalization, error) {
	return UpgradeFinalization{}, decodeEmptyStruct(data)
}

// UpgradeFinalizationResponse has no body.
type UpgradeFinalizationResponse struct{}

// Encode serializes the (empty) response body.
func (UpgradeFinalizationResponse) Encode() ([]byte, error) { return encodeEmptyStruct() }

// DecodeUpgradeFinalizationResponse parses an
// UpgradeFinalizationResponse body.
func DecodeUpgradeFinalizationResponse(data []byte) (UpgradeFinalizationResponse, error) {
	return UpgradeFinalizationResponse{}, decodeEmptyStruct(data)
}

// UpgradeFailure reports why a transport upgrade could not proceed.
type UpgradeFailure struct {
	HResult int32
}

// Encode serializes the UpgradeFailure body.
func (m *UpgradeFailure) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutInt(tlv.ContextTag(tagUpgradeHResult), int64(m.HResult)); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeUpgradeFailure parses an UpgradeFailure body.
func DecodeUpgradeFailure(data []byte) (*UpgradeFailure, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return nil, err
	}
	m := &UpgradeFailure{}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if r.Tag().TagNumber() == tagUpgradeHResult {
			v, err := r.Int()
			if err != nil {
				return nil, err
			}
			m.HResult = int32(v)
		}
	}
	return m, nil
}

// TransportRequest and TransportConfirmation carry an opaque body
// that the responder echoes back unmodified once the new transport is
// confirmed live (spec §9 Open Questions: TransportRequest echo).
type TransportRequest struct{ Body []byte }

// Encode serializes the TransportRequest body.
func (m *TransportRequest) Encode() ([]byte, error) { return encodeTransportBody(m.Body) }

// DecodeTransportRequest parses a TransportRequest body.
func DecodeTransportRequest(data []byte) (*TransportRequest, error) {
	body, err := decodeTransportBody(data)
	if err != nil {
		return nil, err
	}
	return &TransportRequest{Body: body}, nil
}

// TransportConfirmation shares TransportRequest's wire shape; a
// conforming responder sets Body to the exact bytes it received.
type TransportConfirmation struct{ Body []byte }

// Encode serializes the TransportConfirmation body.
func (m *TransportConfirmation) Encode() ([]byte, error) { return encodeTransportBody(m.Body) }

// DecodeTransportConfirmation parses a TransportConfirmation body.
func DecodeTransportConfirmation(data []byte) (*TransportConfirmation, error) {
	body, err := decodeTransportBody(data)
	if err != nil {
		return nil, err
	}
	return &TransportConfirmation{Body: body}, nil
}

func encodeTransportBody(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(tagTransportBody), body); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTransportBody(data []byte) ([]byte, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return nil, err
	}
	var body []byte
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if r.Tag().TagNumber() == tagTransportBody {
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			body = v
		}
	}
	return body, nil
}
