package crypto

import "errors"

var (
	// ErrCryptoIntegrity is returned when HMAC verification fails on an
	// incoming encrypted frame.
	ErrCryptoIntegrity = errors.New("crypto: integrity check failed")

	// ErrShortCiphertext is returned when a ciphertext region is smaller
	// than one AES block or not a multiple of the block size.
	ErrShortCiphertext = errors.New("crypto: ciphertext too short or misaligned")

	// ErrInvalidPadding is returned when PKCS#7 padding fails to validate
	// after decryption.
	ErrInvalidPadding = errors.New("crypto: invalid padding")
)
