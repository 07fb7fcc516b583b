package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// P-256 key material sizes.
const (
	// P256GroupSizeBytes is the group (scalar) size in bytes.
	P256GroupSizeBytes = 32

	// P256PublicKeySizeBytes is the uncompressed public key size.
	// Format: 0x04 || X (32 bytes) || Y (32 bytes) = 65 bytes.
	P256PublicKeySizeBytes = 65
)

// P256KeyPair is an ECDH key pair on the NIST P-256 curve, as mandated
// by the session core's default encryption parameters.
type P256KeyPair struct {
	private *ecdh.PrivateKey
}

// PublicKey returns the public key in uncompressed format (65 bytes).
func (kp *P256KeyPair) PublicKey() []byte {
	return kp.private.PublicKey().Bytes()
}

// PrivateKey returns the private key as a 32-byte scalar.
func (kp *P256KeyPair) PrivateKey() []byte {
	return kp.private.Bytes()
}

// P256GenerateKeyPair generates a fresh P-256 key pair.
func P256GenerateKeyPair() (*P256KeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate P-256 key: %w", err)
	}
	return &P256KeyPair{private: priv}, nil
}

// P256KeyPairFromPrivateKey reconstructs a key pair from a raw 32-byte scalar.
func P256KeyPairFromPrivateKey(privateKey []byte) (*P256KeyPair, error) {
	priv, err := ecdh.P256().NewPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid P-256 private key: %w", err)
	}
	return &P256KeyPair{private: priv}, nil
}

// P256ECDH computes the ECDH shared secret between a local key pair and a
// peer's uncompressed public key. Returns the raw 32-byte X-coordinate.
func P256ECDH(keyPair *P256KeyPair, peerPublicKey []byte) ([]byte, error) {
	peerPub, err := ecdh.P256().NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid peer public key: %w", err)
	}

	secret, err := keyPair.private.ECDH(peerPub)
	if err != nil {
		return nil, fmt.Errorf("crypto: ECDH failed: %w", err)
	}
	return secret, nil
}

// P256BuildPublicKey assembles an uncompressed public key from separate
// 32-byte X/Y coordinates, as received over the wire in a ConnectRequest.
func P256BuildPublicKey(x, y []byte) ([]byte, error) {
	if len(x) != P256GroupSizeBytes || len(y) != P256GroupSizeBytes {
		return nil, fmt.Errorf("crypto: P-256 coordinate must be %d bytes", P256GroupSizeBytes)
	}
	pub := make([]byte, P256PublicKeySizeBytes)
	pub[0] = 0x04
	copy(pub[1:33], x)
	copy(pub[33:65], y)

	// Validate the point actually lies on the curve.
	if _, err := ecdh.P256().NewPublicKey(pub); err != nil {
		return nil, fmt.Errorf("crypto: invalid P-256 point: %w", err)
	}
	return pub, nil
}

// P256ValidatePublicKey validates that a public key is well-formed and on the curve.
func P256ValidatePublicKey(publicKey []byte) error {
	_, err := ecdh.P256().NewPublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("crypto: invalid P-256 public key: %w", err)
	}
	return nil
}
