package security

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"io"
	"time"
)

// CreatedLayout formats the UsernameToken creation time: UTC with a single
// (truncated) fractional digit and a literal Z.
const CreatedLayout = "2006-01-02T15:04:05.0Z"

// UsernameToken carries the values of one wss:UsernameToken.
type UsernameToken struct {
	Username string
	// Nonce is Ks encrypted with the server public key.
	Nonce string
	// Digest is AES(SHA1(Ks ++ Created ++ password), Ks).
	Digest string
	// Password is AES(password, Ks).
	Password string
	Created  string
}

// TokenGenerator produces UsernameTokens for the tax authority
// authentication profile. It holds only read-only state and is safe for
// concurrent use when its random source is.
type TokenGenerator struct {
	publicKey *rsa.PublicKey
	random    io.Reader
	now       func() time.Time
}

// TokenOption configures a TokenGenerator
type TokenOption func(*TokenGenerator)

// WithRandom sets the source for Ks and RSA padding.
func WithRandom(r io.Reader) TokenOption {
	return func(g *TokenGenerator) {
		g.random = r
	}
}

// WithClock sets the clock used for the Created timestamp.
func WithClock(now func() time.Time) TokenOption {
	return func(g *TokenGenerator) {
		g.now = now
	}
}

// NewTokenGenerator creates a generator bound to the server public key.
func NewTokenGenerator(publicKey *rsa.PublicKey, opts ...TokenOption) (*TokenGenerator, error) {
	if publicKey == nil {
		return nil, keyError("new token generator", ErrInvalidPublicKey)
	}
	g := &TokenGenerator{
		publicKey: publicKey,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate builds the token for one party. A fresh Ks is drawn on every
// call and wiped before returning.
func (g *TokenGenerator) Generate(username, password string) (*UsernameToken, error) {
	if password == "" {
		return nil, keyError("generate token for "+username, ErrMissingPassword)
	}

	ks, err := RandomBytes(g.random, SymmetricKeySize)
	if err != nil {
		return nil, err
	}
	defer clear(ks)

	nonce, err := RSAEncryptBase64(g.random, ks, g.publicKey)
	if err != nil {
		return nil, err
	}

	created := FormatCreated(g.now())

	encryptedPassword, err := AESEncryptBase64([]byte(password), ks)
	if err != nil {
		return nil, err
	}

	digest, err := PasswordDigest(ks, created, password)
	if err != nil {
		return nil, err
	}

	return &UsernameToken{
		Username: username,
		Nonce:    nonce,
		Digest:   digest,
		Password: encryptedPassword,
		Created:  created,
	}, nil
}

// PasswordDigest computes AES(SHA1(ks ++ created ++ password), ks). The AES
// input is the raw 20-byte hash, not its base64 text.
func PasswordDigest(ks []byte, created, password string) (string, error) {
	buf := make([]byte, 0, len(ks)+len(created)+len(password))
	buf = append(buf, ks...)
	buf = append(buf, created...)
	buf = append(buf, password...)
	defer clear(buf)

	hash, err := base64.StdEncoding.DecodeString(SHA1Base64(buf))
	if err != nil {
		return "", fmt.Errorf("decoding digest: %w", err)
	}
	return AESEncryptBase64(hash, ks)
}

// FormatCreated formats t in UTC with CreatedLayout.
func FormatCreated(t time.Time) string {
	return t.UTC().Format(CreatedLayout)
}
