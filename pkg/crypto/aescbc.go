package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// AESBlockSizeBytes is the AES block size, and also the IV length for CBC mode.
const AESBlockSizeBytes = aes.BlockSize

// AESCBCEncrypt encrypts plaintext under AES-CBC with PKCS#7 padding,
// using the supplied 16-byte IV. Returns the ciphertext, which is always
// a multiple of the block size.
func AESCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != AESBlockSizeBytes {
		return nil, ErrShortCiphertext
	}

	padded := pkcs7Pad(plaintext, AESBlockSizeBytes)
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// AESCBCDecrypt decrypts and un-pads an AES-CBC ciphertext produced by
// AESCBCEncrypt.
func AESCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != AESBlockSizeBytes {
		return nil, ErrShortCiphertext
	}
	if len(ciphertext) == 0 || len(ciphertext)%AESBlockSizeBytes != 0 {
		return nil, ErrShortCiphertext
	}

	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, AESBlockSizeBytes)
}

// DeriveIV derives a 16-byte CBC initialization vector from the frame's
// sequence number. The sequence number occupies the low 4 bytes; the
// remainder is zero. Uniqueness across frames in a session depends on
// the caller never reusing a sequence number under the same key, which
// the session's outbound sequence allocator guarantees.
func DeriveIV(sequenceNumber uint32) []byte {
	iv := make([]byte, AESBlockSizeBytes)
	binary.BigEndian.PutUint32(iv[AESBlockSizeBytes-4:], sequenceNumber)
	return iv
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-padLen], nil
}
