package security

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
)

// SymmetricKeySize is the size of Ks, the per-party AES-128 key.
const SymmetricKeySize = 16

// RandomBytes reads n bytes from r, or from crypto/rand when r is nil.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// RSAEncryptBase64 encrypts plaintext with RSA PKCS#1 v1.5 and returns the
// base64 ciphertext.
func RSAEncryptBase64(r io.Reader, plaintext []byte, pub *rsa.PublicKey) (string, error) {
	if pub == nil || pub.N == nil {
		return "", keyError("rsa encrypt", ErrInvalidPublicKey)
	}
	if r == nil {
		r = rand.Reader
	}
	encrypted, err := rsa.EncryptPKCS1v15(r, pub, plaintext)
	if err != nil {
		return "", keyError("rsa encrypt", err)
	}
	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// AESEncryptBase64 encrypts data with AES in ECB mode and PKCS#7 padding and
// returns the base64 ciphertext. The output is deterministic for a given
// (data, key) pair.
func AESEncryptBase64(data, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", keyError("aes encrypt", fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, len(key)))
	}

	bs := block.BlockSize()
	padded := pkcs7Pad(data, bs)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += bs {
		block.Encrypt(out[i:i+bs], padded[i:i+bs])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// SHA1Base64 returns the base64 SHA-1 digest of data.
func SHA1Base64(data []byte) string {
	sum := sha1.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)
	for i := 0; i < n; i++ {
		padded = append(padded, byte(n))
	}
	return padded
}
