package wire

import (
	"bytes"

	"github.com/kestrelnet/cdpsession/pkg/tlv"
)

const (
	tagDeviceName   = 1
	tagDeviceModel  = 2
	tagDeviceOSInfo = 3
)

// DeviceInfoMessage is an informational, one-way exchange of device
// metadata once a session is established (spec §4.F DeviceInfoMessage).
type DeviceInfoMessage struct {
	Name   string
	Model  string
	OSInfo string
}

// Encode serializes the DeviceInfoMessage body.
func (m *DeviceInfoMessage) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.ContextTag(tagDeviceName), m.Name); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.ContextTag(tagDeviceModel), m.Model); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.ContextTag(tagDeviceOSInfo), m.OSInfo); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDeviceInfoMessage parses a DeviceInfoMessage body.
func DecodeDeviceInfoMessage(data []byte) (*DeviceInfoMessage, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := enterAnonymousStruct(r); err != nil {
		return nil, err
	}
	m := &DeviceInfoMessage{}
	for {
		done, err := nextStructField(r)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		switch r.Tag().TagNumber() {
		case tagDeviceName:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			m.Name = v
		case tagDeviceModel:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			m.Model = v
		case tagDeviceOSInfo:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			m.OSInfo = v
		}
	}
	return m, nil
}

// DeviceInfoResponseMessage is a bodyless acknowledgement.
type DeviceInfoResponseMessage struct{}

// Encode serializes the (empty) acknowledgement body.
func (DeviceInfoResponseMessage) Encode() ([]byte, error) { return encodeEmptyStruct() }

// DecodeDeviceInfoResponseMessage parses a DeviceInfoResponseMessage body.
func DecodeDeviceInfoResponseMessage(data []byte) (DeviceInfoResponseMessage, error) {
	return DeviceInfoResponseMessage{}, decodeEmptyStruct(data)
}
