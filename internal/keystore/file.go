// Package keystore loads the key material of the dpiva client from disk:
// the tax authority public key, the portal credentials and the mutual TLS
// client certificate of each target.
package keystore

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-dpiva/pkg/security"
)

// Common errors
var (
	ErrNoCredentials = errors.New("credentials file has no clients")
	ErrNoCACerts     = errors.New("no CA certificates found")
)

// LoadPublicKey reads the server RSA public key from a PEM file holding a
// public key or a certificate.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key file: %w", err)
	}
	return security.ParsePublicKey(data)
}

// LoadCredentials reads a credential map. The file is YAML or JSON:
//
//	clients:
//	  "599999993/1": {username: "599999993/1", password: "..."}
//	toc: {username: "123456789", password: "..."}
func LoadCredentials(path string) (*security.CredentialMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds security.CredentialMap
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	if len(creds.Clients) == 0 {
		return nil, ErrNoCredentials
	}
	for id, c := range creds.Clients {
		if c.Username == "" {
			c.Username = id
			creds.Clients[id] = c
		}
	}
	return &creds, nil
}

// LoadKeyPair reads a PEM certificate chain and its private key.
func LoadKeyPair(certFile, keyFile string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading certificate file: %w", err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading key file: %w", err)
	}
	if _, err := parsePrivateKey(keyPEM); err != nil {
		return tls.Certificate{}, fmt.Errorf("parsing private key: %w", err)
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

// LoadPKCS12 reads a PKCS#12 (.pfx/.p12) client certificate bundle.
func LoadPKCS12(pfxFile, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(pfxFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading pfx file: %w", err)
	}
	return ParsePKCS12(data, password)
}

// ParsePKCS12 converts a PKCS#12 bundle to a TLS certificate.
func ParsePKCS12(data []byte, password string) (tls.Certificate, error) {
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decoding pfx: %w", err)
	}

	var certPEM, keyPEM []byte
	for _, b := range blocks {
		switch {
		case b.Type == "CERTIFICATE":
			certPEM = append(certPEM, pem.EncodeToMemory(b)...)
		case strings.HasSuffix(b.Type, "PRIVATE KEY"):
			keyPEM = append(keyPEM, pem.EncodeToMemory(b)...)
		}
	}
	if certPEM == nil || keyPEM == nil {
		return tls.Certificate{}, fmt.Errorf("pfx must contain a certificate and a private key")
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

// LoadCertPool reads a PEM bundle of CA certificates.
func LoadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCACerts)
	}
	return pool, nil
}

func parsePrivateKey(pemData []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("key is not a signer")
		}
		return signer, nil
	default:
		return nil, fmt.Errorf("unsupported key type: %s", block.Type)
	}
}

// KeyAlgorithm names the algorithm of a certificate public key for logs.
func KeyAlgorithm(cert *x509.Certificate) string {
	switch k := cert.PublicKey.(type) {
	case *ecdsa.PublicKey:
		return fmt.Sprintf("EC-%d", k.Curve.Params().BitSize)
	case *rsa.PublicKey:
		return fmt.Sprintf("RSA-%d", k.N.BitLen())
	default:
		return "Unknown"
	}
}
