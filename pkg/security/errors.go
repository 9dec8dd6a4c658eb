package security

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPublicKey is returned when a public key is missing or not RSA
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidKeySize is returned when a symmetric key has an invalid size
	ErrInvalidKeySize = errors.New("invalid key size")
	// ErrClientNotFound is returned when the credential map has no entry for a client
	ErrClientNotFound = errors.New("client not found")
	// ErrMissingPassword is returned for a credential without password
	ErrMissingPassword = errors.New("missing password")
)

// KeyError reports missing or invalid key material: the server public key,
// a symmetric key or a party's credentials.
type KeyError struct {
	Op  string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key error: %s: %v", e.Op, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

func keyError(op string, err error) error {
	return &KeyError{Op: op, Err: err}
}
