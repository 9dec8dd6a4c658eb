// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package declaration reads periodic VAT (DPIVA) declaration documents and
encodes them for the submission request.

# Encoding

The service expects the document as the single entry data.txt of a zip
archive (DEFLATE, level 6), base64 encoded and then base64 encoded again:

	encoded, err := declaration.Encode(doc)

A failure while building the archive is an [EncodingError].

# Loading

[Load] accepts .xml files and reads the taxpayer NIF, year and period from
dpiva/rosto/inicio. [LoadBundle] does the same for every entry of an
uploaded zip bundle, in memory.
*/
package declaration
