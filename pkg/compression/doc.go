// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package compression provides the archive and content encodings of the
declaration web service.

# Declaration archives

Declarations travel inside a zip archive with a single DEFLATE entry:

	archive, err := compression.ZipSingle("data.txt", declaration, compression.DefaultZipLevel)

Uploaded bundles of declarations are read back with [Unzip].

# Response bodies

Responses may be gzip content-encoded:

	body, err := compression.NewCompressor().DecodeBody(resp.Header.Get("Content-Encoding"), raw)
*/
package compression
