package crypto

// ComputeThumbprint derives the authentication thumbprint a peer must
// present during DeviceAuthRequest/UserDeviceAuthRequest: SHA-256 over
// the local nonce followed by the remote nonce, in that order.
func ComputeThumbprint(localNonce, remoteNonce []byte) []byte {
	return SHA256Slice(append(append([]byte{}, localNonce...), remoteNonce...))
}

// VerifyThumbprint reports whether candidate matches the thumbprint
// computed over (localNonce, remoteNonce).
func VerifyThumbprint(candidate, localNonce, remoteNonce []byte) bool {
	return HMACEqual(candidate, ComputeThumbprint(localNonce, remoteNonce))
}
