package crypto

import "testing"

func TestP256GenerateKeyPair(t *testing.T) {
	kp, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("P256GenerateKeyPair failed: %v", err)
	}

	pub := kp.PublicKey()
	if len(pub) != P256PublicKeySizeBytes {
		t.Errorf("public key length = %d, want %d", len(pub), P256PublicKeySizeBytes)
	}
	if pub[0] != 0x04 {
		t.Errorf("public key prefix = %#x, want 0x04", pub[0])
	}

	priv := kp.PrivateKey()
	if len(priv) != P256GroupSizeBytes {
		t.Errorf("private key length = %d, want %d", len(priv), P256GroupSizeBytes)
	}
}

func TestP256KeyPairFromPrivateKey(t *testing.T) {
	kp1, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("P256GenerateKeyPair failed: %v", err)
	}

	kp2, err := P256KeyPairFromPrivateKey(kp1.PrivateKey())
	if err != nil {
		t.Fatalf("P256KeyPairFromPrivateKey failed: %v", err)
	}

	pub1 := kp1.PublicKey()
	pub2 := kp2.PublicKey()
	if len(pub1) != len(pub2) {
		t.Fatalf("public key length mismatch: %d vs %d", len(pub1), len(pub2))
	}
	for i := range pub1 {
		if pub1[i] != pub2[i] {
			t.Fatalf("reconstructed key pair does not match original")
		}
	}
}

func TestP256ECDH(t *testing.T) {
	alice, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("alice keygen failed: %v", err)
	}
	bob, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("bob keygen failed: %v", err)
	}

	aliceSecret, err := P256ECDH(alice, bob.PublicKey())
	if err != nil {
		t.Fatalf("alice ECDH failed: %v", err)
	}
	bobSecret, err := P256ECDH(bob, alice.PublicKey())
	if err != nil {
		t.Fatalf("bob ECDH failed: %v", err)
	}

	if len(aliceSecret) != P256GroupSizeBytes {
		t.Fatalf("shared secret length = %d, want %d", len(aliceSecret), P256GroupSizeBytes)
	}
	for i := range aliceSecret {
		if aliceSecret[i] != bobSecret[i] {
			t.Fatalf("shared secrets disagree at byte %d", i)
		}
	}
}

func TestP256ECDHInvalidPeerKey(t *testing.T) {
	kp, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if _, err := P256ECDH(kp, []byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error for malformed peer public key, got nil")
	}
}

func TestP256BuildPublicKey(t *testing.T) {
	kp, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	pub := kp.PublicKey()
	x := pub[1:33]
	y := pub[33:65]

	rebuilt, err := P256BuildPublicKey(x, y)
	if err != nil {
		t.Fatalf("P256BuildPublicKey failed: %v", err)
	}
	if len(rebuilt) != len(pub) {
		t.Fatalf("rebuilt key length mismatch: %d vs %d", len(rebuilt), len(pub))
	}
	for i := range pub {
		if pub[i] != rebuilt[i] {
			t.Fatalf("rebuilt public key does not match original at byte %d", i)
		}
	}
}

func TestP256BuildPublicKeyBadCoordinateLength(t *testing.T) {
	if _, err := P256BuildPublicKey([]byte{1, 2, 3}, make([]byte, 32)); err == nil {
		t.Error("expected error for short X coordinate, got nil")
	}
}

func TestP256BuildPublicKeyNotOnCurve(t *testing.T) {
	x := make([]byte, 32)
	y := make([]byte, 32)
	for i := range x {
		x[i] = 0xFF
		y[i] = 0xFF
	}
	if _, err := P256BuildPublicKey(x, y); err == nil {
		t.Error("expected error for point not on curve, got nil")
	}
}

func TestP256ValidatePublicKey(t *testing.T) {
	kp, err := P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if err := P256ValidatePublicKey(kp.PublicKey()); err != nil {
		t.Errorf("valid public key rejected: %v", err)
	}
	if err := P256ValidatePublicKey([]byte{0x00}) ; err == nil {
		t.Error("expected error for malformed public key, got nil")
	}
}
