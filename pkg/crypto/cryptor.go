package crypto

import (
	"bytes"
	"io"
)

// cryptorKeysInfo is the HKDF info label used to split the 32-byte
// session secret into an AES key and an HMAC key.
const cryptorKeysInfo = "CDPCryptorSubkeys"

// cryptorSubkeyLen is the length of each derived subkey (AES-256 key,
// HMAC-SHA256 key).
const cryptorSubkeyLen = 32

// Cryptor implements the session core's AES-CBC + HMAC-SHA256 framing
// construction, keyed by a 32-byte ECDH-derived shared secret. A Cryptor
// is immutable once constructed and safe for concurrent use by multiple
// goroutines, since AES-CBC under a distinct IV per call has no shared
// mutable state.
type Cryptor struct {
	aesKey  []byte
	hmacKey []byte
}

// NewCryptor derives the AES and HMAC subkeys from the shared secret and
// returns a ready-to-use Cryptor. Two Cryptors built from the same secret
// derive identical subkeys.
func NewCryptor(sharedSecret [32]byte) (*Cryptor, error) {
	subkeys, err := HKDFSHA256(sharedSecret[:], nil, []byte(cryptorKeysInfo), 2*cryptorSubkeyLen)
	if err != nil {
		return nil, err
	}
	return &Cryptor{
		aesKey:  subkeys[:cryptorSubkeyLen],
		hmacKey: subkeys[cryptorSubkeyLen:],
	}, nil
}

// Read consumes an encrypted payload region of payloadSize bytes from
// raw, where payloadSize includes the trailing HMAC. It verifies the
// HMAC over headerBytes||ciphertext, decrypts the AES-CBC body with an
// IV derived from sequenceNumber, and returns a reader over the
// plaintext. It returns ErrCryptoIntegrity on HMAC mismatch.
func (c *Cryptor) Read(raw io.Reader, headerBytes []byte, sequenceNumber uint32, payloadSize int, hmacSize int) (io.Reader, error) {
	if payloadSize < hmacSize {
		return nil, ErrShortCiphertext
	}

	region := make([]byte, payloadSize)
	if _, err := io.ReadFull(raw, region); err != nil {
		return nil, err
	}

	ciphertext := region[:payloadSize-hmacSize]
	gotMAC := region[payloadSize-hmacSize:]

	mac := NewHMACSHA256(c.hmacKey)
	mac.Write(headerBytes)
	mac.Write(ciphertext)
	wantMAC := mac.Sum(nil)[:hmacSize]

	if !HMACEqual(gotMAC, wantMAC) {
		return nil, ErrCryptoIntegrity
	}

	plaintext, err := AESCBCDecrypt(c.aesKey, DeriveIV(sequenceNumber), ciphertext)
	if err != nil {
		return nil, ErrCryptoIntegrity
	}
	return bytes.NewReader(plaintext), nil
}

// EncryptMessage encrypts plaintext under AES-CBC with an IV derived
// from sequenceNumber, then writes headerBytes, ciphertext, and a
// truncated HMAC-SHA256 (computed over headerBytes||ciphertext) to out.
// Callers compute headerBytes after learning the final ciphertext length,
// since the header's PayloadSize field must reflect it.
func (c *Cryptor) EncryptMessage(out io.Writer, headerBytes []byte, sequenceNumber uint32, plaintext []byte, hmacSize int) error {
	ciphertext, err := AESCBCEncrypt(c.aesKey, DeriveIV(sequenceNumber), plaintext)
	if err != nil {
		return err
	}

	mac := NewHMACSHA256(c.hmacKey)
	mac.Write(headerBytes)
	mac.Write(ciphertext)
	tag := mac.Sum(nil)[:hmacSize]

	if _, err := out.Write(headerBytes); err != nil {
		return err
	}
	if _, err := out.Write(ciphertext); err != nil {
		return err
	}
	_, err = out.Write(tag)
	return err
}

// SealedSize returns the on-wire payload size (ciphertext + HMAC) for a
// plaintext of the given length, accounting for PKCS#7 padding.
func SealedSize(plaintextLen, hmacSize int) int {
	padded := plaintextLen + (AESBlockSizeBytes - plaintextLen%AESBlockSizeBytes)
	return padded + hmacSize
}
