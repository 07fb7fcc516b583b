package crypto

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func sharedSecretFixture() [32]byte {
	var s [32]byte
	for i := range s {
		s[i] = byte(i)
	}
	return s
}

func TestCryptorRoundTrip(t *testing.T) {
	secret := sharedSecretFixture()
	c, err := NewCryptor(secret)
	if err != nil {
		t.Fatalf("NewCryptor failed: %v", err)
	}

	header := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	plaintext := []byte("hello session core")
	const hmacSize = 16
	const seq = 7

	var buf bytes.Buffer
	headerBuf := append([]byte(nil), header...)
	if err := c.EncryptMessage(&buf, headerBuf, seq, plaintext, hmacSize); err != nil {
		t.Fatalf("EncryptMessage failed: %v", err)
	}

	wire := buf.Bytes()
	if !bytes.Equal(wire[:len(header)], header) {
		t.Fatalf("header prefix mismatch")
	}
	payload := wire[len(header):]

	reader, err := c.Read(bytes.NewReader(payload), header, seq, len(payload), hmacSize)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading plaintext failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
	}
}

func TestCryptorDetectsBitFlip(t *testing.T) {
	secret := sharedSecretFixture()
	c, err := NewCryptor(secret)
	if err != nil {
		t.Fatalf("NewCryptor failed: %v", err)
	}

	header := []byte{0x01, 0x02}
	const hmacSize = 16
	const seq = 3

	var buf bytes.Buffer
	if err := c.EncryptMessage(&buf, header, seq, []byte("payload"), hmacSize); err != nil {
		t.Fatalf("EncryptMessage failed: %v", err)
	}

	wire := buf.Bytes()
	payload := append([]byte(nil), wire[len(header):]...)
	payload[0] ^= 0x01 // flip a bit in the ciphertext

	_, err = c.Read(bytes.NewReader(payload), header, seq, len(payload), hmacSize)
	if !errors.Is(err, ErrCryptoIntegrity) {
		t.Fatalf("expected ErrCryptoIntegrity, got %v", err)
	}
}

func TestCryptorDifferentSequenceNumbersDifferCiphertext(t *testing.T) {
	secret := sharedSecretFixture()
	c, err := NewCryptor(secret)
	if err != nil {
		t.Fatalf("NewCryptor failed: %v", err)
	}

	header := []byte{0x00}
	plaintext := []byte("same plaintext")

	var buf1, buf2 bytes.Buffer
	if err := c.EncryptMessage(&buf1, header, 1, plaintext, 16); err != nil {
		t.Fatalf("EncryptMessage(seq=1) failed: %v", err)
	}
	if err := c.EncryptMessage(&buf2, header, 2, plaintext, 16); err != nil {
		t.Fatalf("EncryptMessage(seq=2) failed: %v", err)
	}

	if bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Fatal("ciphertexts for distinct sequence numbers must differ")
	}
}

func TestTwoCryptorsFromSameSecretAgree(t *testing.T) {
	secret := sharedSecretFixture()
	c1, err := NewCryptor(secret)
	if err != nil {
		t.Fatalf("NewCryptor (1) failed: %v", err)
	}
	c2, err := NewCryptor(secret)
	if err != nil {
		t.Fatalf("NewCryptor (2) failed: %v", err)
	}

	header := []byte{0x10}
	plaintext := []byte("cross-cryptor check")

	var buf bytes.Buffer
	if err := c1.EncryptMessage(&buf, header, 9, plaintext, 16); err != nil {
		t.Fatalf("EncryptMessage failed: %v", err)
	}

	reader, err := c2.Read(bytes.NewReader(buf.Bytes()[len(header):]), header, 9, buf.Len()-len(header), 16)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading plaintext failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("cross-cryptor round trip mismatch: got %q, want %q", got, plaintext)
	}
}
