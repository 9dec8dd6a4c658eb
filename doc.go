// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package godpiva submits Portuguese periodic VAT declarations (Declaração
Periódica de IVA) to the tax authority SOAP web service.

# Overview

go-dpiva builds the authenticated SOAP envelope the service expects,
posts it over HTTPS with an optional client certificate and classifies the
response as an accepted submission, a validation failure or a malformed
reply.

Authentication follows the tax authority's WS-Security UsernameToken
profile. For every party a fresh 128-bit AES key is generated and sent
RSA-encrypted under the service public key as the Nonce; the password and
its SHA-1 digest travel AES-encrypted under that key.

# Package Structure

	github.com/sirosfoundation/go-dpiva/pkg/security    - UsernameToken generation, key and credential types
	github.com/sirosfoundation/go-dpiva/pkg/declaration - Declaration loading and payload encoding
	github.com/sirosfoundation/go-dpiva/pkg/message     - Envelope builder and response classifier
	github.com/sirosfoundation/go-dpiva/pkg/transport   - HTTPS transport with mutual TLS
	github.com/sirosfoundation/go-dpiva/pkg/submission  - Submission pipeline and results
	github.com/sirosfoundation/go-dpiva/pkg/compression - GZIP and zip helpers

The dpiva command in cmd/dpiva wires these together with a YAML
configuration and an optional MongoDB result store.

# Quick Start

	import (
	    "github.com/sirosfoundation/go-dpiva/pkg/declaration"
	    "github.com/sirosfoundation/go-dpiva/pkg/submission"
	    "github.com/sirosfoundation/go-dpiva/pkg/transport"
	)

	decl, err := declaration.Load("2024-01M.xml")

	client, _ := transport.NewHTTPSClient(httpsConfig)
	sub, _ := submission.New(submission.Config{
	    Credentials: creds,
	    PublicKey:   serverKey,
	    Sender:      client,
	})

	result := sub.Submit(ctx, transport.TargetTest, "599999993/1", decl)
	if result.Failed() {
	    fmt.Println(result.ErrorList)
	}

# Envelopes

With a certified accountant (TOC) credential configured the envelope
carries two Security headers, one per actor. Otherwise only the filer
header is sent and the request accepts alerts.

# License

BSD-2-Clause License
*/
package godpiva
