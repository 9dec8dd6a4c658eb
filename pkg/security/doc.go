// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package security implements the WS-Security UsernameToken profile used by
the tax authority declaration web services.

The profile is not the OASIS PasswordDigest. The client invents a 16-byte
AES key (Ks) per party and per request, and sends it RSA-encrypted under the
authority's public key as the token nonce:

	Nonce    = base64(RSA-PKCS1v15(Ks, serverKey))
	Created  = UTC time as 2006-01-02T15:04:05.0Z
	Password = base64(AES-128-ECB(password, Ks))
	Digest   = base64(AES-128-ECB(SHA1(Ks ++ Created ++ password), Ks))

# Generating tokens

	pub, err := security.ParsePublicKey(pemData)
	gen, err := security.NewTokenGenerator(pub)
	token, err := gen.Generate("599999993/0037", password)

Ks never leaves Generate and is wiped before it returns.

# Credentials

[CredentialMap] maps client identifiers to portal credentials and holds the
optional certified accountant (TOC) credential. Missing or invalid key
material is reported as a [KeyError].
*/
package security
