package crypto

import (
	"crypto/rand"
	"fmt"
)

// NonceSizeBytes is the length of the nonce exchanged during the
// handshake and mixed into the shared-secret KDF.
const NonceSizeBytes = 64

// sharedSecretInfo is the HKDF info parameter for the ECDH shared-secret
// derivation. No reference wire trace for CdpEncryptionParams.Default was
// available in this implementation's source material; this is this
// implementation's own documented choice (see DESIGN.md).
const sharedSecretInfo = "CDPSessionKey"

// KeyMaterial holds one side's ECDH key pair, nonce, and (for the local
// side only) an optional device certificate. It corresponds to the
// session core's EncryptionInfo.
type KeyMaterial struct {
	keyPair     *P256KeyPair
	publicKey   []byte
	nonce       []byte
	certificate []byte
}

// CreateKeyMaterial generates a fresh local key pair and nonce.
func CreateKeyMaterial() (*KeyMaterial, error) {
	kp, err := P256GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("crypto: create key material: %w", err)
	}

	nonce := make([]byte, NonceSizeBytes)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: create key material nonce: %w", err)
	}

	return &KeyMaterial{
		keyPair:   kp,
		publicKey: kp.PublicKey(),
		nonce:     nonce,
	}, nil
}

// KeyMaterialFromRemote wraps a peer's public key coordinates and nonce,
// as received in a ConnectRequest. It holds no private key.
func KeyMaterialFromRemote(x, y, nonce []byte) (*KeyMaterial, error) {
	if len(nonce) != NonceSizeBytes {
		return nil, fmt.Errorf("crypto: remote nonce must be %d bytes, got %d", NonceSizeBytes, len(nonce))
	}
	pub, err := P256BuildPublicKey(x, y)
	if err != nil {
		return nil, fmt.Errorf("crypto: remote key material: %w", err)
	}

	nonceCopy := make([]byte, NonceSizeBytes)
	copy(nonceCopy, nonce)

	return &KeyMaterial{
		publicKey: pub,
		nonce:     nonceCopy,
	}, nil
}

// SetCertificate attaches a device certificate to this key material. The
// session core treats the certificate as an opaque blob handed to the
// authentication handler; it is never parsed here.
func (km *KeyMaterial) SetCertificate(cert []byte) {
	km.certificate = cert
}

// Certificate returns the attached device certificate, or nil if none.
func (km *KeyMaterial) Certificate() []byte {
	return km.certificate
}

// PublicKey returns the uncompressed P-256 public key (65 bytes).
func (km *KeyMaterial) PublicKey() []byte {
	return km.publicKey
}

// PublicKeyXY returns the public key as separate 32-byte X and Y coordinates.
func (km *KeyMaterial) PublicKeyXY() (x, y []byte) {
	return km.publicKey[1:33], km.publicKey[33:65]
}

// Nonce returns the 64-byte nonce.
func (km *KeyMaterial) Nonce() []byte {
	return km.nonce
}

// GenerateSharedSecret performs ECDH against the remote key material's
// public key using this (local) key material's private key, then derives
// a 32-byte session secret via HKDF-SHA256. The salt is the local nonce
// followed by the remote nonce, mirroring the wire's documented
// initiator-first nonce ordering; see DESIGN.md for the rationale.
func (km *KeyMaterial) GenerateSharedSecret(remote *KeyMaterial) ([32]byte, error) {
	var out [32]byte
	if km.keyPair == nil {
		return out, fmt.Errorf("crypto: generate shared secret: local key material has no private key")
	}

	ecdhSecret, err := P256ECDH(km.keyPair, remote.publicKey)
	if err != nil {
		return out, fmt.Errorf("crypto: generate shared secret: %w", err)
	}

	salt := make([]byte, 0, len(km.nonce)+len(remote.nonce))
	salt = append(salt, km.nonce...)
	salt = append(salt, remote.nonce...)

	derived, err := HKDFSHA256(ecdhSecret, salt, []byte(sharedSecretInfo), 32)
	if err != nil {
		return out, fmt.Errorf("crypto: generate shared secret: %w", err)
	}
	copy(out[:], derived)
	return out, nil
}
