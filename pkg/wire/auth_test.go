package wire

import "bytes"

import "testing"

func TestDeviceAuthRequestRoundTrip(t *testing.T) {
	req := &DeviceAuthRequest{
		Thumbprint:  []byte{1, 2, 3, 4},
		AuthPayload: []byte("certificate-bytes"),
	}
	encoded, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := DecodeDeviceAuthRequest(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got.Thumbprint, req.Thumbprint) || !bytes.Equal(got.AuthPayload, req.AuthPayload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestDeviceAuthResponseRoundTrip(t *testing.T) {
	resp := &DeviceAuthResponse{AuthPayload: []byte("reply-certificate")}
	encoded, err := resp.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := DecodeDeviceAuthResponse(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got.AuthPayload, resp.AuthPayload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, resp)
	}
}

func TestAuthDoneRequestRoundTrip(t *testing.T) {
	encoded, err := AuthDoneRequest{}.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := DecodeAuthDoneRequest(encoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
}

func TestAuthDoneResponseRoundTrip(t *testing.T) {
	resp := &AuthDoneResponse{HResult: -2147024891}
	encoded, err := resp.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := DecodeAuthDoneResponse(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.HResult != resp.HResult {
		t.Fatalf("HResult = %d, want %d", got.HResult, resp.HResult)
	}
}
