package security

import (
	"fmt"
	"strings"
)

// Credential is a portal username and password pair.
type Credential struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CredentialMap holds the credentials of every client that may file, keyed
// by client identifier, plus the optional certified accountant (TOC).
//
// A CredentialMap is read-only once loaded and may be shared between
// concurrent submissions.
type CredentialMap struct {
	Clients map[string]Credential `yaml:"clients" json:"clients"`
	TOC     *Credential           `yaml:"toc,omitempty" json:"toc,omitempty"`
}

// Lookup returns the credential of clientID.
func (m *CredentialMap) Lookup(clientID string) (Credential, error) {
	if m == nil {
		return Credential{}, keyError("lookup "+clientID, ErrClientNotFound)
	}
	cred, ok := m.Clients[clientID]
	if !ok {
		cred, ok = m.Clients[strings.TrimSpace(clientID)]
	}
	if !ok {
		return Credential{}, keyError("lookup "+clientID, ErrClientNotFound)
	}
	if cred.Password == "" {
		return Credential{}, keyError("lookup "+clientID, ErrMissingPassword)
	}
	return cred, nil
}

// Accountant returns the accountant credential, or nil when the filer submits alone.
func (m *CredentialMap) Accountant() (*Credential, error) {
	if m == nil || m.TOC == nil {
		return nil, nil
	}
	if m.TOC.Password == "" {
		return nil, keyError("lookup toc", ErrMissingPassword)
	}
	return m.TOC, nil
}

// HasAccountant reports whether an accountant credential is configured.
func (m *CredentialMap) HasAccountant() bool {
	return m != nil && m.TOC != nil
}

// ResolveClient finds the client identifier for a taxpayer NIF. A client
// key equal to the NIF wins over a "NIF/subuser" key.
func (m *CredentialMap) ResolveClient(nif string) (string, error) {
	if m == nil || nif == "" {
		return "", keyError("resolve "+nif, ErrClientNotFound)
	}
	if _, ok := m.Clients[nif]; ok {
		return nif, nil
	}
	var match string
	for id := range m.Clients {
		if strings.HasPrefix(id, nif+"/") && (match == "" || id < match) {
			match = id
		}
	}
	if match == "" {
		return "", keyError("resolve "+nif, fmt.Errorf("%w: no credentials for NIF %s", ErrClientNotFound, nif))
	}
	return match, nil
}
