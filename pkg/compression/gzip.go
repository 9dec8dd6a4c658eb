// Package compression implements the archive and content encodings used on
// the wire: the zip container around declarations and gzip response bodies.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// EncodingGzip is the Content-Encoding token for gzip bodies
const EncodingGzip = "gzip"

// Compressor handles gzip content encoding of HTTP bodies
type Compressor struct {
	compressionLevel int
	maxSize          int64
}

// DefaultMaxDecompressedSize bounds a decompressed response body.
const DefaultMaxDecompressedSize = 32 << 20

// NewCompressor creates a new compressor with default compression level
func NewCompressor() *Compressor {
	return &Compressor{
		compressionLevel: gzip.DefaultCompression,
		maxSize:          DefaultMaxDecompressedSize,
	}
}

// Compress compresses data using GZIP
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, c.compressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses GZIP data
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, c.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed data: %w", err)
	}
	if n > c.maxSize {
		return nil, fmt.Errorf("decompressed data exceeds %d bytes", c.maxSize)
	}

	return buf.Bytes(), nil
}

// DecodeBody undoes the Content-Encoding of a response body. Identity and
// empty encodings return the body unchanged.
func (c *Compressor) DecodeBody(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, nil
	case EncodingGzip, "x-gzip":
		return c.Decompress(body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}
}
