package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ParsePublicKey parses the tax authority's RSA public key from PEM. PKIX
// ("PUBLIC KEY"), PKCS#1 ("RSA PUBLIC KEY") and certificate blocks are accepted.
func ParsePublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, keyError("parse public key", fmt.Errorf("%w: no PEM block found", ErrInvalidPublicKey))
	}

	var pub any
	var err error
	switch block.Type {
	case "PUBLIC KEY":
		pub, err = x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		pub, err = x509.ParsePKCS1PublicKey(block.Bytes)
	case "CERTIFICATE":
		var cert *x509.Certificate
		cert, err = x509.ParseCertificate(block.Bytes)
		if err == nil {
			pub = cert.PublicKey
		}
	default:
		return nil, keyError("parse public key", fmt.Errorf("%w: unsupported PEM type %q", ErrInvalidPublicKey, block.Type))
	}
	if err != nil {
		return nil, keyError("parse public key", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, keyError("parse public key", fmt.Errorf("%w: not an RSA key", ErrInvalidPublicKey))
	}
	return rsaPub, nil
}
