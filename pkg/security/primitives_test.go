package security

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBytes(t *testing.T) {
	b, err := RandomBytes(nil, SymmetricKeySize)
	require.NoError(t, err)
	assert.Len(t, b, 16)

	fixed, err := RandomBytes(bytes.NewReader([]byte("0123456789abcdef")), 16)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), fixed)

	_, err = RandomBytes(bytes.NewReader([]byte("short")), 16)
	assert.Error(t, err)
}

func TestAESEncryptBase64_KnownAnswer(t *testing.T) {
	// FIPS-197 appendix C.1
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	plaintext, _ := hex.DecodeString("00112233445566778899aabbccddeeff")

	out, err := AESEncryptBase64(plaintext, key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	require.Len(t, raw, 32, "a full block of input gets a full block of padding")
	assert.Equal(t, "69c4e0d86a7b0430d8cdb78070b4c55a", hex.EncodeToString(raw[:16]))
}

func TestAESEncryptBase64_Deterministic(t *testing.T) {
	key := []byte("0123456789abcdef")
	data := []byte("testes1234")

	first, err := AESEncryptBase64(data, key)
	require.NoError(t, err)
	second, err := AESEncryptBase64(data, key)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAESEncryptBase64_Padding(t *testing.T) {
	key := []byte("0123456789abcdef")

	out, err := AESEncryptBase64([]byte("abc"), key)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	require.Len(t, raw, aes.BlockSize)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	plain := make([]byte, aes.BlockSize)
	block.Decrypt(plain, raw)
	assert.Equal(t, []byte("abc"), plain[:3])
	for _, b := range plain[3:] {
		assert.Equal(t, byte(13), b)
	}
}

func TestAESEncryptBase64_InvalidKey(t *testing.T) {
	_, err := AESEncryptBase64([]byte("data"), []byte("short"))
	require.Error(t, err)

	var keyErr *KeyError
	assert.True(t, errors.As(err, &keyErr))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestSHA1Base64(t *testing.T) {
	assert.Equal(t, "qZk+NkcGgWq6PiVxeFDCbJzQ2J0=", SHA1Base64([]byte("abc")))
}

func TestRSAEncryptBase64(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := []byte("0123456789abcdef")
	out, err := RSAEncryptBase64(nil, ks, &privateKey.PublicKey)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	assert.Len(t, raw, 256)

	decrypted, err := rsa.DecryptPKCS1v15(rand.Reader, privateKey, raw)
	require.NoError(t, err)
	assert.Equal(t, ks, decrypted)
}

func TestRSAEncryptBase64_Errors(t *testing.T) {
	_, err := RSAEncryptBase64(nil, []byte("x"), nil)
	var keyErr *KeyError
	require.True(t, errors.As(err, &keyErr))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// PKCS#1 v1.5 leaves k-11 bytes of room
	_, err = RSAEncryptBase64(nil, make([]byte, 300), &privateKey.PublicKey)
	require.Error(t, err)
	assert.True(t, errors.As(err, &keyErr))
}
